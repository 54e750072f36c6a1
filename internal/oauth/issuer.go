package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vertexchat-go/internal/constants"
	apperrors "vertexchat-go/internal/errors"
	"vertexchat-go/internal/monitoring/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// JWTBearerGrantType is the OAuth2 grant used to exchange a signed assertion.
const JWTBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

const opIssue = "oauth.issue"

// IssuerOption customizes Issuer creation.
type IssuerOption func(*Issuer)

// Issuer exchanges service-account assertions for access tokens.
type Issuer struct {
	httpClient *http.Client
	tokenURL   string
	now        func() time.Time
}

// NewIssuer creates an issuer that posts to the assertion's own token URI
// unless WithTokenURL overrides it.
func NewIssuer(opts ...IssuerOption) *Issuer {
	i := &Issuer{
		httpClient: &http.Client{Timeout: constants.TokenRequestTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// WithHTTPClient overrides the HTTP client used for the exchange.
func WithHTTPClient(client *http.Client) IssuerOption {
	return func(i *Issuer) {
		if client != nil {
			i.httpClient = client
		}
	}
}

// WithTokenURL overrides the token endpoint.
func WithTokenURL(tokenURL string) IssuerOption {
	return func(i *Issuer) {
		if tokenURL != "" {
			i.tokenURL = tokenURL
		}
	}
}

// WithNowFunc overrides the clock used for expiry calculations (testing).
func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// Issue performs exactly one token exchange. It never retries.
func (i *Issuer) Issue(ctx context.Context, assertion TokenAssertion) (AccessToken, error) {
	endpoint := i.tokenURL
	if endpoint == "" {
		endpoint = assertion.Account.Audience()
	}

	ctx, span := tracing.StartSpan(ctx, "oauth", "Issuer.Issue")
	defer span.End()
	span.SetAttributes(
		attribute.String("oauth.client_email", assertion.Account.ClientEmail),
		attribute.String("oauth.scope", assertion.Scope),
	)

	tok, err := i.exchange(ctx, endpoint, assertion)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return AccessToken{}, err
	}
	span.SetStatus(codes.Ok, "")
	return tok, nil
}

func (i *Issuer) exchange(ctx context.Context, endpoint string, assertion TokenAssertion) (AccessToken, error) {
	signed, err := assertion.Sign(endpoint)
	if err != nil {
		return AccessToken{}, apperrors.Wrap(apperrors.KindAuthentication, opIssue, err)
	}

	data := url.Values{
		"grant_type": {JWTBearerGrantType},
		"assertion":  {signed},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return AccessToken{}, apperrors.Wrap(apperrors.KindTransport, opIssue, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return AccessToken{}, apperrors.FromNetwork(opIssue, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return AccessToken{}, apperrors.FromNetwork(opIssue, err)
	}

	if resp.StatusCode != http.StatusOK {
		mapped := apperrors.FromHTTPStatus(opIssue, resp.StatusCode, body)
		// The token endpoint answers 400 invalid_grant for bad signatures,
		// clock skew and revoked accounts alike.
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			mapped.Kind = apperrors.KindAuthentication
		}
		log.WithFields(log.Fields{
			"status":       resp.StatusCode,
			"client_email": assertion.Account.ClientEmail,
		}).Warn("token exchange rejected")
		return AccessToken{}, mapped
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return AccessToken{}, apperrors.Wrap(apperrors.KindProtocol, opIssue, fmt.Errorf("decode token response: %w", err))
	}
	if tokenResp.AccessToken == "" {
		return AccessToken{}, apperrors.New(apperrors.KindProtocol, opIssue, "token response has no access_token")
	}

	now := i.now()
	validUntil := assertion.Expiration
	if tokenResp.ExpiresIn > 0 {
		validUntil = now.Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}
	tokenType := tokenResp.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	log.WithFields(log.Fields{
		"client_email": assertion.Account.ClientEmail,
		"valid_until":  validUntil.Format(time.RFC3339),
	}).Info("access token issued")
	return AccessToken{Value: tokenResp.AccessToken, TokenType: tokenType, ValidUntil: validUntil}, nil
}
