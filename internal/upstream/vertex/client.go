package vertex

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"vertexchat-go/internal/config"
	"vertexchat-go/internal/constants"
	apperrors "vertexchat-go/internal/errors"
	"vertexchat-go/internal/monitoring"
	"vertexchat-go/internal/monitoring/tracing"
	"vertexchat-go/internal/oauth"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	opSend = "vertex.Send"
	// maxResponseBytes bounds how much of a reply body is read.
	maxResponseBytes = 32 << 20
)

// TokenProvider supplies the bearer token for each call.
type TokenProvider interface {
	Token(ctx context.Context) (oauth.AccessToken, error)
}

// Client sends generation requests to the platform. It performs exactly
// one HTTP call per Send and never retries.
type Client struct {
	cfg        config.PlatformConfig
	cli        *http.Client
	tokens     TokenProvider
	timeout    time.Duration
	generation *GenerationConfig
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport, mainly for tests.
func WithHTTPClient(cli *http.Client) Option {
	return func(c *Client) {
		if cli != nil {
			c.cli = cli
		}
	}
}

// WithTimeout overrides the request-level timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

// New builds a client for the configured project, region and model.
func New(cfg config.PlatformConfig, tokens TokenProvider, opts ...Option) *Client {
	tr := &http.Transport{
		Proxy: getProxyFunc(cfg.ProxyURL),
		DialContext: (&net.Dialer{
			Timeout:   durationOrDefault(cfg.DialTimeoutSec, constants.DefaultDialTimeout),
			KeepAlive: constants.DefaultKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   durationOrDefault(cfg.TLSHandshakeTimeoutSec, constants.DefaultTLSHandshakeTimeout),
		ResponseHeaderTimeout: durationOrDefault(cfg.ResponseHeaderTimeoutSec, 0),
		ExpectContinueTimeout: constants.DefaultExpectContinueTimeout,
		MaxIdleConns:          constants.BaseMaxIdleConns,
		MaxIdleConnsPerHost:   constants.BaseMaxIdleConnsPerHost,
		IdleConnTimeout:       constants.BaseIdleConnTimeout,
	}
	c := &Client{
		cfg:        cfg,
		cli:        &http.Client{Transport: tr, Timeout: 0},
		tokens:     tokens,
		timeout:    cfg.Timeout(),
		generation: generationFromConfig(cfg.Generation),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getProxyFunc returns appropriate proxy function based on configuration
func getProxyFunc(proxyURL string) func(*http.Request) (*url.URL, error) {
	if proxyURL != "" {
		if parsedURL, err := url.Parse(proxyURL); err == nil {
			return http.ProxyURL(parsedURL)
		}
	}
	return http.ProxyFromEnvironment
}

func generationFromConfig(g config.GenerationConfig) *GenerationConfig {
	if g.Temperature == nil && g.TopP == nil && g.TopK == nil && g.MaxOutputTokens == nil && len(g.StopSequences) == 0 {
		return nil
	}
	return &GenerationConfig{
		Temperature:     g.Temperature,
		TopP:            g.TopP,
		TopK:            g.TopK,
		MaxOutputTokens: g.MaxOutputTokens,
		StopSequences:   g.StopSequences,
	}
}

// Send transmits req and decodes the first candidate. The whole call,
// token lookup included, is bounded by the client timeout; exceeding it
// yields a TimeoutError.
func (c *Client) Send(ctx context.Context, req GenerationRequest) (GenerationResponse, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := tracing.StartSpan(ctx, "upstream/vertex", "Vertex.GenerateContent",
		trace.WithAttributes(
			attribute.String("http.method", http.MethodPost),
			attribute.String("upstream.model", model),
			attribute.Int("upstream.contents", len(req.Contents)),
		))
	defer span.End()

	resp, status, err := c.send(ctx, model, req)
	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		kind := apperrors.KindOf(err)
		monitoring.RecordUpstreamError(string(kind))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithFields(log.Fields{
			"model":  model,
			"status": status,
			"kind":   kind,
		}).WithError(err).Warn("generateContent failed")
		return GenerationResponse{}, err
	}

	monitoring.RecordFinishReason(string(resp.FinishReason))
	span.SetAttributes(attribute.String("upstream.finish_reason", string(resp.FinishReason)))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

func (c *Client) send(ctx context.Context, model string, req GenerationRequest) (GenerationResponse, int, error) {
	endpoint, err := GenerateContentURL(c.cfg.Endpoint, c.cfg.ProjectID, c.cfg.Region, model)
	if err != nil {
		return GenerationResponse{}, 0, apperrors.Wrap(apperrors.KindProtocol, opSend, err)
	}

	if req.Generation == nil {
		req.Generation = c.generation
	}
	body, err := Encode(req)
	if err != nil {
		return GenerationResponse{}, 0, apperrors.Wrap(apperrors.KindProtocol, opSend, fmt.Errorf("encode request: %w", err))
	}
	body = applyPayloadOverrides(body, c.cfg.PayloadOverrides)

	tok, err := c.tokens.Token(ctx)
	if err != nil {
		if apperrors.KindOf(err) == "" {
			return GenerationResponse{}, 0, apperrors.FromNetwork(opSend, err)
		}
		return GenerationResponse{}, 0, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return GenerationResponse{}, 0, apperrors.Wrap(apperrors.KindTransport, opSend, fmt.Errorf("create request: %w", err))
	}
	c.applyDefaultHeaders(httpReq, tok.Value)

	start := time.Now()
	resp, err := c.cli.Do(httpReq)
	if err != nil {
		monitoring.RecordUpstream(model, time.Since(start), 0, true)
		return GenerationResponse{}, 0, apperrors.FromNetwork(opSend, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	monitoring.RecordUpstream(model, time.Since(start), resp.StatusCode, err != nil)
	if err != nil {
		return GenerationResponse{}, resp.StatusCode, apperrors.FromNetwork(opSend, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return GenerationResponse{}, resp.StatusCode, apperrors.FromHTTPStatus(opSend, resp.StatusCode, data)
	}

	out, err := Decode(data)
	if err != nil {
		return GenerationResponse{}, resp.StatusCode, err
	}
	log.WithFields(log.Fields{
		"model":         model,
		"finish_reason": out.FinishReason,
		"duration_ms":   time.Since(start).Milliseconds(),
	}).Debug("generateContent completed")
	return out, resp.StatusCode, nil
}
