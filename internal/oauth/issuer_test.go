package oauth

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "vertexchat-go/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTokenServer struct {
	server *httptest.Server
	calls  atomic.Int32
	claims jwt.MapClaims
	kid    any
}

func newTestTokenServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *testTokenServer {
	t.Helper()
	s := &testTokenServer{}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(s.server.Close)
	return s
}

func TestIssuerExchangesSignedAssertion(t *testing.T) {
	key, _ := testPrivateKey(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var s *testTokenServer
	s = newTestTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, JWTBearerGrantType, r.Form.Get("grant_type"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		parsed, err := jwt.Parse(r.Form.Get("assertion"), func(tok *jwt.Token) (any, error) {
			return &key.PublicKey, nil
		}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithoutClaimsValidation())
		require.NoError(t, err)
		s.claims = parsed.Claims.(jwt.MapClaims)
		s.kid = parsed.Header["kid"]

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "ya29.token", ExpiresIn: 3599, TokenType: "Bearer"})
	})

	issuer := NewIssuer(WithTokenURL(s.server.URL), WithNowFunc(func() time.Time { return now }))
	assertion := NewTokenAssertion(testAccount(t), "", now)

	tok, err := issuer.Issue(context.Background(), assertion)
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", tok.Value)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, now.Add(3599*time.Second), tok.ValidUntil)
	assert.Equal(t, int32(1), s.calls.Load())

	assert.Equal(t, "chat@project.iam.gserviceaccount.com", s.claims["iss"])
	assert.Equal(t, "https://www.googleapis.com/auth/cloud-platform", s.claims["scope"])
	assert.Equal(t, s.server.URL, s.claims["aud"])
	assert.EqualValues(t, now.Unix(), s.claims["iat"])
	assert.EqualValues(t, now.Add(time.Hour).Unix(), s.claims["exp"])
	assert.Equal(t, "key-1", s.kid)
}

func TestIssuerRejectedGrantIsAuthenticationError(t *testing.T) {
	s := newTestTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid JWT Signature."}`))
	})

	issuer := NewIssuer(WithTokenURL(s.server.URL))
	_, err := issuer.Issue(context.Background(), NewTokenAssertion(testAccount(t), "", time.Now()))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrAuthentication))
	assert.Contains(t, err.Error(), "Invalid JWT Signature.")
	assert.Equal(t, int32(1), s.calls.Load(), "issuer must not retry")
}

func TestIssuerServerErrorIsTransportError(t *testing.T) {
	s := newTestTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := NewIssuer(WithTokenURL(s.server.URL)).Issue(context.Background(), NewTokenAssertion(testAccount(t), "", time.Now()))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrTransport))
	assert.Equal(t, int32(1), s.calls.Load())
}

func TestIssuerMalformedBodyIsProtocolError(t *testing.T) {
	s := newTestTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":`))
	})
	_, err := NewIssuer(WithTokenURL(s.server.URL)).Issue(context.Background(), NewTokenAssertion(testAccount(t), "", time.Now()))
	assert.True(t, stderrors.Is(err, apperrors.ErrProtocol))

	empty := newTestTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"expires_in":3600}`))
	})
	_, err = NewIssuer(WithTokenURL(empty.server.URL)).Issue(context.Background(), NewTokenAssertion(testAccount(t), "", time.Now()))
	assert.True(t, stderrors.Is(err, apperrors.ErrProtocol))
}

func TestIssuerUnreachableEndpointIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := NewIssuer(WithTokenURL(endpoint)).Issue(context.Background(), NewTokenAssertion(testAccount(t), "", time.Now()))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrTransport))
}

func TestIssuerDeadlineIsTimeoutError(t *testing.T) {
	release := make(chan struct{})
	s := newTestTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewIssuer(WithTokenURL(s.server.URL)).Issue(ctx, NewTokenAssertion(testAccount(t), "", time.Now()))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrTimeout))
}

func TestIssuerBadPrivateKeyIsAuthenticationError(t *testing.T) {
	s := newTestTokenServer(t, func(w http.ResponseWriter, r *http.Request) {})
	sa := ServiceAccount{ClientEmail: "x@y", PrivateKey: "not a pem"}
	_, err := NewIssuer(WithTokenURL(s.server.URL)).Issue(context.Background(), NewTokenAssertion(sa, "", time.Now()))
	assert.True(t, stderrors.Is(err, apperrors.ErrAuthentication))
	assert.Equal(t, int32(0), s.calls.Load())
}
