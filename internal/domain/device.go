package domain

// AuthorizationStatus mirrors the push permission states an installation can be in.
type AuthorizationStatus string

const (
	AuthorizationNotDetermined AuthorizationStatus = "not_determined"
	AuthorizationDenied        AuthorizationStatus = "denied"
	AuthorizationAuthorized    AuthorizationStatus = "authorized"
	AuthorizationProvisional   AuthorizationStatus = "provisional"
)

// Enabled reports whether notifications may be delivered.
func (s AuthorizationStatus) Enabled() bool {
	return s == AuthorizationAuthorized || s == AuthorizationProvisional
}

// DeviceToken is the installation's registration with the push service.
type DeviceToken struct {
	Token       string `json:"token"`
	EndpointARN string `json:"endpoint_arn,omitempty"`
}

// ParseAuthorizationStatus maps a configured value to a status. Unknown values
// are not determined, which disables delivery.
func ParseAuthorizationStatus(s string) AuthorizationStatus {
	switch st := AuthorizationStatus(s); st {
	case AuthorizationDenied, AuthorizationAuthorized, AuthorizationProvisional:
		return st
	}
	return AuthorizationNotDetermined
}
