package oauth

import (
	"fmt"
	"strings"
	"time"

	"vertexchat-go/internal/constants"

	"golang.org/x/oauth2"
)

// ServiceAccount is the long-lived identity tokens are issued for.
type ServiceAccount struct {
	ClientEmail  string `json:"client_email" yaml:"client_email"`
	PrivateKey   string `json:"private_key" yaml:"private_key"`
	PrivateKeyID string `json:"private_key_id,omitempty" yaml:"private_key_id,omitempty"`
	TokenURI     string `json:"token_uri,omitempty" yaml:"token_uri,omitempty"`
}

// Validate checks the fields needed to sign an assertion.
func (sa ServiceAccount) Validate() error {
	if strings.TrimSpace(sa.ClientEmail) == "" {
		return fmt.Errorf("service account client_email is empty")
	}
	if strings.TrimSpace(sa.PrivateKey) == "" {
		return fmt.Errorf("service account private_key is empty")
	}
	return nil
}

// Audience returns the token endpoint the assertion is addressed to.
func (sa ServiceAccount) Audience() string {
	if uri := strings.TrimSpace(sa.TokenURI); uri != "" {
		return uri
	}
	return constants.DefaultTokenURI
}

// TokenAssertion is the claim set exchanged for an access token.
type TokenAssertion struct {
	Account    ServiceAccount
	Scope      string
	IssuedAt   time.Time
	Expiration time.Time
}

// NewTokenAssertion builds an assertion valid for constants.AssertionLifetime from now.
func NewTokenAssertion(sa ServiceAccount, scope string, now time.Time) TokenAssertion {
	if strings.TrimSpace(scope) == "" {
		scope = constants.CloudPlatformScope
	}
	return TokenAssertion{
		Account:    sa,
		Scope:      scope,
		IssuedAt:   now,
		Expiration: now.Add(constants.AssertionLifetime),
	}
}

// Validate enforces expiration strictly after issuedAt.
func (a TokenAssertion) Validate() error {
	if err := a.Account.Validate(); err != nil {
		return err
	}
	if !a.Expiration.After(a.IssuedAt) {
		return fmt.Errorf("assertion expiration %s is not after issued_at %s",
			a.Expiration.Format(time.RFC3339), a.IssuedAt.Format(time.RFC3339))
	}
	return nil
}

// AccessToken is a short-lived bearer token.
type AccessToken struct {
	Value      string
	TokenType  string
	ValidUntil time.Time
}

// Valid reports whether the token can still be presented at now.
func (t AccessToken) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.ValidUntil)
}

// OAuth2 converts the token for use with golang.org/x/oauth2 transports.
func (t AccessToken) OAuth2() *oauth2.Token {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{AccessToken: t.Value, TokenType: tokenType, Expiry: t.ValidUntil}
}

// TokenResponse represents the token endpoint's JSON body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}
