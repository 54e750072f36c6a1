package oauth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Sign renders the assertion as an RS256 JWT addressed to audience.
func (a TokenAssertion) Sign(audience string) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(a.Account.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}
	claims := jwt.MapClaims{
		"iss":   a.Account.ClientEmail,
		"scope": a.Scope,
		"aud":   audience,
		"iat":   a.IssuedAt.Unix(),
		"exp":   a.Expiration.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if a.Account.PrivateKeyID != "" {
		token.Header["kid"] = a.Account.PrivateKeyID
	}
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}
