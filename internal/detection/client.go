package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultTimeout = 120 * time.Second

	// maxResponseBytes bounds how much of a reply we are willing to buffer.
	maxResponseBytes = 4 << 20
)

type Config struct {
	Timeout              time.Duration
	RequireSuccessStatus bool
	// HTTPClient is optional; tests inject httptest clients here.
	HTTPClient *http.Client
}

// Client talks to a voice detection endpoint. It holds no per-request
// state and is safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		// The deadline comes from the request context, not the client.
		hc = &http.Client{}
	}
	return &Client{
		cfg:  cfg,
		http: hc,
		log:  log,
	}
}

// Analyze posts req and decodes the verdict. A failed attempt always
// returns a *Error.
func (c *Client) Analyze(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(req.Body())
	if err != nil {
		return Result{}, newError(KindValidation, MsgMalformed, fmt.Errorf("encode request: %w", err))
	}

	tctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(tctx, http.MethodPost, req.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, newError(KindValidation, MsgBadEndpoint, fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.APIKey != "" {
		httpReq.Header.Set("x-api-key", req.APIKey)
	}

	c.log.Debug().
		Str("endpoint", req.Endpoint).
		Str("language", req.Language).
		Str("format", req.AudioFormat).
		Int("payload_chars", len(req.AudioBase64)).
		Bool("api_key", req.APIKey != "").
		Msg("posting analysis request")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{}, c.classifyTransport(ctx, tctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, c.classifyTransport(ctx, tctx, err)
	}

	parsed, decodeErr := decodeResponse(data)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := MsgServer
		if decodeErr == nil && parsed.errorText() != "" {
			msg = parsed.errorText()
		}
		return Result{}, &Error{Kind: KindServer, Message: msg, StatusCode: resp.StatusCode}
	}

	if decodeErr != nil {
		return Result{}, &Error{
			Kind:       KindMalformed,
			Message:    MsgMalformed,
			StatusCode: resp.StatusCode,
			Err:        decodeErr,
		}
	}

	if c.cfg.RequireSuccessStatus && parsed.Status != "" && parsed.Status != StatusSuccess {
		msg := parsed.errorText()
		if msg == "" {
			msg = "Analysis failed: " + parsed.Status
		}
		return Result{}, &Error{Kind: KindSoftFailure, Message: msg, StatusCode: resp.StatusCode}
	}

	return parsed.Result, nil
}

// decodeResponse requires the body to be a JSON object; a bare null
// would otherwise decode into an empty verdict.
func decodeResponse(data []byte) (*response, error) {
	var parsed *response
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed == nil {
		return nil, errors.New("decode response: body is not a JSON object")
	}
	return parsed, nil
}

// classifyTransport tells our own deadline apart from a caller
// cancellation and from plain network failures.
func (c *Client) classifyTransport(parent, tctx context.Context, err error) error {
	if parent.Err() != nil {
		return newError(KindCanceled, MsgCanceled, err)
	}
	if errors.Is(tctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, MsgTimeout, err)
	}
	return newError(KindTransport, MsgTransport, err)
}

// HealthStatus is what the service's /health route reports.
type HealthStatus struct {
	URL        string `json:"url"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
}

// HealthURL maps an analysis endpoint to the service's health route.
func HealthURL(endpoint string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("parse endpoint: %q is not an absolute URL", endpoint)
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/health"}).String(), nil
}

// Health probes the service behind endpoint.
func (c *Client) Health(ctx context.Context, endpoint string) (HealthStatus, error) {
	target, err := HealthURL(endpoint)
	if err != nil {
		return HealthStatus{}, newError(KindValidation, MsgBadEndpoint, err)
	}
	hs := HealthStatus{URL: target}

	tctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(tctx, http.MethodGet, target, nil)
	if err != nil {
		return hs, newError(KindValidation, MsgBadEndpoint, err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return hs, c.classifyTransport(ctx, tctx, err)
	}
	defer resp.Body.Close()
	hs.StatusCode = resp.StatusCode

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return hs, c.classifyTransport(ctx, tctx, err)
	}
	parsed, decodeErr := decodeResponse(data)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := MsgServer
		if decodeErr == nil && parsed.errorText() != "" {
			msg = parsed.errorText()
		}
		return hs, &Error{Kind: KindServer, Message: msg, StatusCode: resp.StatusCode}
	}
	if decodeErr != nil {
		return hs, &Error{Kind: KindMalformed, Message: MsgMalformed, StatusCode: resp.StatusCode, Err: decodeErr}
	}
	hs.Status = parsed.Status
	return hs, nil
}
