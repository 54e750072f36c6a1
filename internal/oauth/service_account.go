package oauth

import (
	"fmt"
	"os"

	"vertexchat-go/internal/constants"

	"golang.org/x/oauth2/google"
)

// ServiceAccountFromJSON parses a Google service-account key file.
func ServiceAccountFromJSON(data []byte) (ServiceAccount, error) {
	cfg, err := google.JWTConfigFromJSON(data, constants.CloudPlatformScope)
	if err != nil {
		return ServiceAccount{}, fmt.Errorf("parse service account key: %w", err)
	}
	sa := ServiceAccount{
		ClientEmail:  cfg.Email,
		PrivateKey:   string(cfg.PrivateKey),
		PrivateKeyID: cfg.PrivateKeyID,
		TokenURI:     cfg.TokenURL,
	}
	if err := sa.Validate(); err != nil {
		return ServiceAccount{}, err
	}
	return sa, nil
}

// LoadServiceAccountFile reads and parses a service-account key file from disk.
func LoadServiceAccountFile(path string) (ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ServiceAccount{}, fmt.Errorf("read service account key %s: %w", path, err)
	}
	return ServiceAccountFromJSON(data)
}
