package executor

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/studiowebux/restforge/internal/curl"
	"github.com/studiowebux/restforge/internal/request"
	"github.com/studiowebux/restforge/internal/types"
)

// DefaultTimeout bounds a single request when no timeout is configured
const DefaultTimeout = 30 * time.Second

// Options carries the per-request transport settings taken from a RequestConfig
type Options struct {
	SSLVerify       bool
	FollowRedirects bool
	Timeout         time.Duration
}

// Transport sends a prepared request. Implementations decide how the bytes
// reach the network; NetTransport uses net/http.
type Transport interface {
	Do(ctx context.Context, req *http.Request, opts Options) (*http.Response, error)
}

// TransportFunc adapts a function to Transport
type TransportFunc func(ctx context.Context, req *http.Request, opts Options) (*http.Response, error)

// Do calls f
func (f TransportFunc) Do(ctx context.Context, req *http.Request, opts Options) (*http.Response, error) {
	return f(ctx, req, opts)
}

// NetTransport is the default Transport
type NetTransport struct{}

// Do builds a client for opts and sends req with it
func (NetTransport) Do(ctx context.Context, req *http.Request, opts Options) (*http.Response, error) {
	client := buildHTTPClient(opts)
	return client.Do(req.WithContext(ctx))
}

// buildHTTPClient creates an HTTP client honoring TLS verification and redirect settings
func buildHTTPClient(opts Options) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !opts.SSLVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
	if !opts.FollowRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}

// Option configures an Executor
type Option func(*Executor)

// WithTransport replaces the default NetTransport
func WithTransport(t Transport) Option {
	return func(e *Executor) {
		if t != nil {
			e.transport = t
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// Executor turns RequestConfigs into HTTP calls
type Executor struct {
	transport Transport
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates an Executor
func New(opts ...Option) *Executor {
	e := &Executor{
		transport: NetTransport{},
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute sends req after substituting vars. It never returns an error:
// failures are reported as status 0 with the error message as the body.
func (e *Executor) Execute(ctx context.Context, req *types.RequestConfig, vars []types.KeyValuePair) *types.ResponseData {
	startTime := time.Now()

	if req == nil {
		return failure(errors.New("no request to execute"), startTime)
	}

	httpReq, err := BuildHTTPRequest(ctx, req, vars)
	if err != nil {
		e.logger.Debug("request build failed", "id", req.ID, "error", err)
		return failure(err, startTime)
	}

	resp, err := e.transport.Do(ctx, httpReq, Options{
		SSLVerify:       req.SSLVerify,
		FollowRedirects: req.FollowRedirects,
		Timeout:         e.timeout,
	})
	if err != nil {
		e.logger.Debug("request failed", "method", httpReq.Method, "url", httpReq.URL.String(), "error", err)
		return failure(err, startTime)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(fmt.Errorf("failed to read response body: %w", err), startTime)
	}

	headers := make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		headers[key] = strings.Join(values, ", ")
	}

	result := &types.ResponseData{
		Status:     resp.StatusCode,
		StatusText: statusText(resp.StatusCode),
		Headers:    headers,
		Body:       string(bodyBytes),
		Time:       elapsedMillis(startTime),
		Size:       int64(len(bodyBytes)),
	}

	e.logger.Debug("request completed",
		"method", httpReq.Method,
		"url", httpReq.URL.String(),
		"status", result.Status,
		"time", request.FormatTime(result.Time),
		"size", request.FormatBytes(result.Size),
	)

	return result
}

// BuildHTTPRequest prepares the wire request for req: variables substituted,
// query params and auth applied, body encoded according to its body type.
func BuildHTTPRequest(ctx context.Context, req *types.RequestConfig, vars []types.KeyValuePair) (*http.Request, error) {
	target := request.ReplaceVariables(req.URL, vars)

	var query []string
	for _, p := range req.QueryParams {
		if p.Enabled && p.Key != "" {
			value := request.ReplaceVariables(p.Value, vars)
			query = append(query, url.QueryEscape(p.Key)+"="+url.QueryEscape(value))
		}
	}
	if len(query) > 0 {
		target = appendQuery(target, strings.Join(query, "&"))
	}

	header := make(http.Header)
	for _, h := range req.Headers {
		if h.Enabled && h.Key != "" {
			header.Set(h.Key, request.ReplaceVariables(h.Value, vars))
		}
	}

	target = applyAuth(header, target, req.Auth, vars)

	body, err := buildBody(header, req, vars)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.EffectiveMethod(), target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header = header

	return httpReq, nil
}

// applyAuth sets the credentials for auth and returns the possibly extended URL
func applyAuth(header http.Header, target string, auth types.AuthConfig, vars []types.KeyValuePair) string {
	switch {
	case auth.Type == types.AuthBearer && auth.Token != "":
		header.Set("Authorization", "Bearer "+request.ReplaceVariables(auth.Token, vars))

	case auth.Type == types.AuthBasic && auth.Username != "" && auth.Password != "":
		credentials := request.ReplaceVariables(auth.Username, vars) + ":" + request.ReplaceVariables(auth.Password, vars)
		header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(credentials)))

	case auth.Type == types.AuthAPIKey && auth.APIKey != "" && auth.APIKeyName != "":
		key := request.ReplaceVariables(auth.APIKey, vars)
		switch auth.APIKeyLocation {
		case types.APIKeyInHeader:
			header.Set(auth.APIKeyName, key)
		case types.APIKeyInQuery:
			target = appendQuery(target, auth.APIKeyName+"="+curl.EncodeURIComponent(key))
		}
	}
	return target
}

// buildBody encodes the request body. GET and HEAD never carry one.
func buildBody(header http.Header, req *types.RequestConfig, vars []types.KeyValuePair) (io.Reader, error) {
	if req.Method == types.MethodGet || req.Method == types.MethodHead || req.BodyType == types.BodyNone {
		return nil, nil
	}

	switch req.BodyType {
	case types.BodyJSON:
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", "application/json")
		}
		return strings.NewReader(request.ReplaceVariables(req.Body, vars)), nil

	case types.BodyFormData:
		if req.FormData == nil {
			return nil, nil
		}
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for _, f := range req.FormData {
			if !f.Enabled || f.Key == "" {
				continue
			}
			if err := writer.WriteField(f.Key, request.ReplaceVariables(f.Value, vars)); err != nil {
				return nil, fmt.Errorf("failed to write form field %s: %w", f.Key, err)
			}
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("failed to finish multipart body: %w", err)
		}
		header.Set("Content-Type", writer.FormDataContentType())
		return &buf, nil

	case types.BodyFormURLEncoded:
		if req.FormData == nil {
			return nil, nil
		}
		var fields []string
		for _, f := range req.FormData {
			if f.Enabled && f.Key != "" {
				fields = append(fields, url.QueryEscape(f.Key)+"="+url.QueryEscape(request.ReplaceVariables(f.Value, vars)))
			}
		}
		header.Set("Content-Type", "application/x-www-form-urlencoded")
		return strings.NewReader(strings.Join(fields, "&")), nil

	case types.BodyRaw, types.BodyXML:
		if req.BodyType == types.BodyXML && header.Get("Content-Type") == "" {
			header.Set("Content-Type", "application/xml")
		}
		return strings.NewReader(request.ReplaceVariables(req.Body, vars)), nil
	}

	return nil, nil
}

func appendQuery(target, query string) string {
	if strings.Contains(target, "?") {
		return target + "&" + query
	}
	return target + "?" + query
}

func statusText(status int) string {
	if status >= 200 && status < 300 {
		return "OK"
	}
	return "Error"
}

func failure(err error, startTime time.Time) *types.ResponseData {
	return &types.ResponseData{
		Status:     0,
		StatusText: "Error",
		Headers:    map[string]string{},
		Body:       err.Error(),
		Time:       elapsedMillis(startTime),
		Size:       0,
	}
}

func elapsedMillis(startTime time.Time) float64 {
	return float64(time.Since(startTime).Microseconds()) / 1000
}
