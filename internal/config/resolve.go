package config

import (
	"fmt"
	"strings"
	"time"

	"vertexchat-go/internal/constants"
	"vertexchat-go/internal/content"
	"vertexchat-go/internal/monitoring/tracing"
	"vertexchat-go/internal/oauth"
)

// Timeout is the request-level bound on one generation call. A
// non-positive TimeoutSec means the platform default.
func (p PlatformConfig) Timeout() time.Duration {
	if p.TimeoutSec <= 0 {
		return constants.PlatformRequestTimeout
	}
	return time.Duration(p.TimeoutSec) * time.Second
}

// TracerOptions maps the tracing section onto exporter options.
func (t TracingConfig) TracerOptions() tracing.Options {
	return tracing.Options{
		Endpoint:     t.Endpoint,
		Insecure:     t.Insecure,
		ServiceName:  t.ServiceName,
		Version:      constants.Version,
		SampleRatio:  t.SampleRatio,
		BatchTimeout: time.Duration(t.BatchTimeoutSec) * time.Second,
	}
}

// Resolve produces the service account, preferring a key file when one is
// configured. Inline fields fill gaps the file leaves.
func (s ServiceAccountConfig) Resolve() (oauth.ServiceAccount, error) {
	sa := oauth.ServiceAccount{
		ClientEmail:  s.ClientEmail,
		PrivateKey:   s.PrivateKey,
		PrivateKeyID: s.PrivateKeyID,
		TokenURI:     s.TokenURI,
	}
	if s.CredentialsFile != "" {
		fromFile, err := oauth.LoadServiceAccountFile(s.CredentialsFile)
		if err != nil {
			return oauth.ServiceAccount{}, err
		}
		sa.ClientEmail = firstNonEmpty(fromFile.ClientEmail, sa.ClientEmail)
		sa.PrivateKey = firstNonEmpty(fromFile.PrivateKey, sa.PrivateKey)
		sa.PrivateKeyID = firstNonEmpty(fromFile.PrivateKeyID, sa.PrivateKeyID)
		sa.TokenURI = firstNonEmpty(fromFile.TokenURI, sa.TokenURI)
	}
	if err := sa.Validate(); err != nil {
		return oauth.ServiceAccount{}, err
	}
	return sa, nil
}

// Policy builds the safety policy from the base threshold and any
// per-category overrides.
func (s SafetyConfig) Policy() (content.SafetyPolicy, error) {
	threshold := content.BlockOnlyHigh
	if strings.TrimSpace(s.Threshold) != "" {
		t, err := content.ParseSafetyThreshold(s.Threshold)
		if err != nil {
			return content.SafetyPolicy{}, err
		}
		threshold = t
	}
	policy := content.NewSafetyPolicy(threshold)
	for name, raw := range s.Categories {
		category, ok := lookupCategory(name)
		if !ok {
			return content.SafetyPolicy{}, fmt.Errorf("unknown harm category %q", name)
		}
		t, err := content.ParseSafetyThreshold(raw)
		if err != nil {
			return content.SafetyPolicy{}, err
		}
		policy = policy.With(category, t)
	}
	return policy, nil
}

func lookupCategory(name string) (content.HarmCategory, bool) {
	norm := strings.ToUpper(strings.TrimSpace(name))
	if !strings.HasPrefix(norm, "HARM_CATEGORY_") {
		norm = "HARM_CATEGORY_" + norm
	}
	for _, c := range content.HarmCategories {
		if string(c) == norm {
			return c, true
		}
	}
	return "", false
}
