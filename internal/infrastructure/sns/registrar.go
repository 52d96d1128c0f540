package sns

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type endpointAPI interface {
	CreatePlatformEndpoint(ctx context.Context, params *sns.CreatePlatformEndpointInput, optFns ...func(*sns.Options)) (*sns.CreatePlatformEndpointOutput, error)
	SetEndpointAttributes(ctx context.Context, params *sns.SetEndpointAttributesInput, optFns ...func(*sns.Options)) (*sns.SetEndpointAttributesOutput, error)
}

// Registrar binds a device token to a platform endpoint of an SNS platform
// application so backends can publish to the installation.
type Registrar struct {
	client         endpointAPI
	applicationARN string
}

func NewRegistrar(client endpointAPI, applicationARN string) *Registrar {
	return &Registrar{client: client, applicationARN: applicationARN}
}

// Register returns the endpoint ARN for token. An existing endpoint is
// re-enabled and pointed at token; a deleted one is recreated.
func (r *Registrar) Register(ctx context.Context, token, existingARN string) (string, error) {
	if existingARN != "" {
		_, err := r.client.SetEndpointAttributes(ctx, &sns.SetEndpointAttributesInput{
			EndpointArn: aws.String(existingARN),
			Attributes: map[string]string{
				"Token":   token,
				"Enabled": "true",
			},
		})
		if err == nil {
			return existingARN, nil
		}
		var nf *types.NotFoundException
		if !errors.As(err, &nf) {
			return "", fmt.Errorf("update platform endpoint: %w", err)
		}
	}

	out, err := r.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(r.applicationARN),
		Token:                  aws.String(token),
	})
	if err != nil {
		return "", fmt.Errorf("create platform endpoint: %w", err)
	}
	return aws.ToString(out.EndpointArn), nil
}
