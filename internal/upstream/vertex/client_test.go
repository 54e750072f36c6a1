package vertex

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vertexchat-go/internal/config"
	"vertexchat-go/internal/content"
	apperrors "vertexchat-go/internal/errors"
	"vertexchat-go/internal/oauth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type staticTokens struct {
	tok   oauth.AccessToken
	err   error
	calls int
}

func (s *staticTokens) Token(ctx context.Context) (oauth.AccessToken, error) {
	s.calls++
	return s.tok, s.err
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testPlatform(endpoint string) config.PlatformConfig {
	return config.PlatformConfig{
		ProjectID: "demo",
		Region:    "us-central1",
		Model:     "publishers/google/models/gemini-experimental",
		Endpoint:  endpoint,
	}
}

func helloRequest() GenerationRequest {
	return Build("publishers/google/models/gemini-experimental",
		content.History{content.UserTurn("Hello")}, content.DefaultSafetyPolicy())
}

func TestClientSendSuccess(t *testing.T) {
	var gotPath, gotAuth, gotProject string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotProject = r.Header.Get("X-Goog-User-Project")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi there"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	tokens := &staticTokens{tok: oauth.AccessToken{Value: "ya29.token"}}
	client := New(testPlatform(srv.URL), tokens)

	resp, err := client.Send(context.Background(), helloRequest())
	require.NoError(t, err)

	assert.Equal(t, "/v1/projects/demo/locations/us-central1/publishers/google/models/gemini-experimental:generateContent", gotPath)
	assert.Equal(t, "Bearer ya29.token", gotAuth)
	assert.Equal(t, "demo", gotProject)
	assert.Equal(t, "Hello", gjson.GetBytes(gotBody, "contents.0.parts.0.text").String())
	assert.Equal(t, content.ModelTurn("Hi there"), resp.Content)
	assert.Equal(t, content.FinishReasonStop, resp.FinishReason)
	assert.Equal(t, 1, tokens.calls)
}

func TestClientAppliesGenerationConfigAndOverrides(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"ok"}]},"finishReason":"MAX_TOKENS"}]}`))
	}))
	defer srv.Close()

	cfg := testPlatform(srv.URL)
	maxTokens := 64
	cfg.Generation.MaxOutputTokens = &maxTokens
	cfg.PayloadOverrides = map[string]any{"labels.env": "test"}

	resp, err := New(cfg, &staticTokens{tok: oauth.AccessToken{Value: "t"}}).Send(context.Background(), helloRequest())
	require.NoError(t, err)
	assert.Equal(t, content.FinishReasonMaxTokens, resp.FinishReason)
	assert.Equal(t, int64(64), gjson.GetBytes(gotBody, "generationConfig.maxOutputTokens").Int())
	assert.Equal(t, "test", gjson.GetBytes(gotBody, "labels.env").String())
}

func TestClientSendStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"error":{"code":401,"message":"Request had invalid authentication credentials."}}`, apperrors.ErrAuthentication},
		{http.StatusForbidden, `{"error":{"message":"Permission denied"}}`, apperrors.ErrAuthentication},
		{http.StatusBadRequest, `{"error":{"message":"bad field"}}`, apperrors.ErrProtocol},
		{http.StatusNotFound, ``, apperrors.ErrProtocol},
		{http.StatusTooManyRequests, `{"error":{"message":"quota"}}`, apperrors.ErrTransport},
		{http.StatusServiceUnavailable, `unavailable`, apperrors.ErrTransport},
		{http.StatusGatewayTimeout, ``, apperrors.ErrTimeout},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			calls := 0
			cli := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				calls++
				return &http.Response{
					StatusCode: tc.status,
					Body:       io.NopCloser(bytes.NewBufferString(tc.body)),
					Header:     make(http.Header),
				}, nil
			})}
			client := New(testPlatform("https://stub"), &staticTokens{tok: oauth.AccessToken{Value: "t"}}, WithHTTPClient(cli))

			_, err := client.Send(context.Background(), helloRequest())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 1, calls, "no retries")

			var appErr *apperrors.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tc.status, appErr.StatusCode)
		})
	}
}

func TestClientUnauthorizedMessage(t *testing.T) {
	cli := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       io.NopCloser(strings.NewReader(`{"error":{"message":"token expired"}}`)),
			Header:     make(http.Header),
		}, nil
	})}
	client := New(testPlatform("https://stub"), &staticTokens{tok: oauth.AccessToken{Value: "stale"}}, WithHTTPClient(cli))

	_, err := client.Send(context.Background(), helloRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestClientMalformedBodyIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": [`))
	}))
	defer srv.Close()

	_, err := New(testPlatform(srv.URL), &staticTokens{tok: oauth.AccessToken{Value: "t"}}).
		Send(context.Background(), helloRequest())
	assert.ErrorIs(t, err, apperrors.ErrProtocol)
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	client := New(testPlatform(srv.URL), &staticTokens{tok: oauth.AccessToken{Value: "t"}},
		WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.Send(context.Background(), helloRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClientDefaultTimeoutIsPlatformTimeout(t *testing.T) {
	client := New(testPlatform(""), &staticTokens{})
	assert.Equal(t, 300*time.Second, client.timeout)

	cfg := testPlatform("")
	cfg.TimeoutSec = 20
	assert.Equal(t, 20*time.Second, New(cfg, &staticTokens{}).timeout)
}

func TestClientConnectionRefusedIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	_, err := New(testPlatform(endpoint), &staticTokens{tok: oauth.AccessToken{Value: "t"}}).
		Send(context.Background(), helloRequest())
	assert.ErrorIs(t, err, apperrors.ErrTransport)
}

func TestClientTokenFailureSkipsCall(t *testing.T) {
	calls := 0
	cli := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("unexpected call")
	})}
	denied := apperrors.New(apperrors.KindAuthentication, "oauth.Issue", "invalid_grant")
	client := New(testPlatform("https://stub"), &staticTokens{err: denied}, WithHTTPClient(cli))

	_, err := client.Send(context.Background(), helloRequest())
	assert.Same(t, denied, err)
	assert.Equal(t, 0, calls)
}

func TestClientTokenWaitTimesOut(t *testing.T) {
	client := New(testPlatform("https://stub"), &staticTokens{err: context.DeadlineExceeded})
	_, err := client.Send(context.Background(), helloRequest())
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
}

func TestClientRequestHeaders(t *testing.T) {
	var got http.Header
	cli := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		got = req.Header.Clone()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"candidates":[{"content":{"parts":[{"text":"x"}]},"finishReason":"STOP"}]}`)),
			Header:     make(http.Header),
		}, nil
	})}
	_, err := New(testPlatform("https://stub"), &staticTokens{tok: oauth.AccessToken{Value: "abc"}}, WithHTTPClient(cli)).
		Send(context.Background(), helloRequest())
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "Bearer abc", got.Get("Authorization"))
	assert.True(t, strings.HasPrefix(got.Get("User-Agent"), "vertexchat-go/"))
	assert.True(t, strings.HasPrefix(got.Get("X-Goog-Api-Client"), "gl-go/"))
}
