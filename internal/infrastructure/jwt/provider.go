package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-push-inbox/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ScopeDeliver allows posting messages to an agent.
	ScopeDeliver = "deliver"

	issuer = "go-push-inbox"
)

var (
	ErrNoSigningKey      = errors.New("no private key configured")
	ErrNoVerificationKey = errors.New("no public key configured")
)

// Claims holds the delivery token payload.
type Claims struct {
	Sender string `json:"sender"`
	Scope  string `json:"scope"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 delivery tokens. Either key may be absent:
// senders only need the private key, agents only the public one.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
	now        func() time.Time
}

// NewProvider loads the keys named in cfg. It returns (nil, nil) when neither
// path is set.
func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTPrivateKeyPath == "" && cfg.JWTPublicKeyPath == "" {
		return nil, nil
	}
	p := &Provider{expiry: cfg.JWTExpiry, now: time.Now}

	if cfg.JWTPrivateKeyPath != "" {
		privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		if p.privateKey, err = jwt.ParseRSAPrivateKeyFromPEM(privBytes); err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
	}

	if cfg.JWTPublicKeyPath != "" {
		pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read public key: %w", err)
		}
		if p.publicKey, err = jwt.ParseRSAPublicKeyFromPEM(pubBytes); err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
	} else if p.privateKey != nil {
		p.publicKey = &p.privateKey.PublicKey
	}

	return p, nil
}

func (p *Provider) Sign(sender, scope string) (string, error) {
	if p.privateKey == nil {
		return "", ErrNoSigningKey
	}
	now := p.now()
	claims := Claims{
		Sender: sender,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	if p.publicKey == nil {
		return nil, ErrNoVerificationKey
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
