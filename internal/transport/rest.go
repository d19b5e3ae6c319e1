package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fluxo-app/fluxo-go/internal/types"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
)

const (
	requestIDHeader = "X-Request-ID"
	contentType     = "application/json"
)

// RESTTransport handles JSON communication with the backend
type RESTTransport struct {
	baseURL     string
	httpClient  *http.Client
	retryClient *retryablehttp.Client
	breaker     *gobreaker.CircuitBreaker
	headers     map[string]string
	logger      types.Logger
	hooks       *types.Hooks
}

// Options for REST transport
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Headers     map[string]string
	RetryConfig *types.RetryConfig
	Breaker     *gobreaker.CircuitBreaker
	Logger      types.Logger
	Hooks       *types.Hooks
}

// NewRESTTransport creates a new REST transport
func NewRESTTransport(opts *Options) *RESTTransport {
	if opts == nil {
		opts = &Options{}
	}

	if opts.BaseURL == "" {
		opts.BaseURL = types.DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: types.DefaultTimeout,
		}
	}

	// Retries are opt-in: a failed load is surfaced, not replayed
	var retryClient *retryablehttp.Client
	if opts.RetryConfig != nil && opts.RetryConfig.MaxRetries > 0 {
		retryClient = retryablehttp.NewClient()
		retryClient.HTTPClient = opts.HTTPClient
		retryClient.RetryMax = opts.RetryConfig.MaxRetries
		retryClient.RetryWaitMin = opts.RetryConfig.RetryWait
		retryClient.RetryWaitMax = opts.RetryConfig.MaxWait
		retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
		retryClient.Logger = nil

		if opts.Logger != nil {
			retryClient.Logger = &retryLogger{logger: opts.Logger}
		}
	}

	headers := map[string]string{
		"Accept":     contentType,
		"User-Agent": types.UserAgent,
	}

	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &RESTTransport{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		httpClient:  opts.HTTPClient,
		retryClient: retryClient,
		breaker:     opts.Breaker,
		headers:     headers,
		logger:      opts.Logger,
		hooks:       opts.Hooks,
	}
}

// Do executes a REST call and decodes a successful JSON body into result
func (t *RESTTransport) Do(ctx context.Context, req *types.Request, result interface{}) error {
	httpReq, err := t.newRequest(ctx, req)
	if err != nil {
		return err
	}

	if t.hooks != nil && t.hooks.OnRequest != nil {
		t.hooks.OnRequest(ctx, httpReq)
	}

	if t.logger != nil {
		t.logger.Debug("backend request", "method", httpReq.Method, "url", httpReq.URL.String(), "request_id", httpReq.Header.Get(requestIDHeader))
	}

	start := time.Now()
	resp, respBody, err := t.send(httpReq)
	duration := time.Since(start)

	if err != nil {
		if t.hooks != nil && t.hooks.OnError != nil {
			t.hooks.OnError(ctx, err)
		}
		return err
	}

	if t.hooks != nil && t.hooks.OnResponse != nil {
		t.hooks.OnResponse(ctx, resp, duration)
	}

	if t.logger != nil {
		t.logger.Debug("backend response", "status", resp.StatusCode, "duration", duration, "size", len(respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := t.handleHTTPError(resp.StatusCode, respBody)
		if apiErr, ok := httpErr.(*types.Error); ok {
			apiErr.RequestID = httpReq.Header.Get(requestIDHeader)
		}
		if t.hooks != nil && t.hooks.OnError != nil {
			t.hooks.OnError(ctx, httpErr)
		}
		return httpErr
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return errors.Wrap(err, "failed to parse response")
		}
	}

	return nil
}

// BaseURL returns the backend origin requests are sent to
func (t *RESTTransport) BaseURL() string {
	return t.baseURL
}

func (t *RESTTransport) newRequest(ctx context.Context, req *types.Request) (*http.Request, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := t.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set(requestIDHeader, uuid.New().String())

	return httpReq, nil
}

// send runs the request through the circuit breaker when one is configured.
// 5xx responses count as breaker failures but are still returned for mapping.
func (t *RESTTransport) send(req *http.Request) (*http.Response, []byte, error) {
	if t.breaker == nil {
		return t.roundTrip(req)
	}

	var (
		resp *http.Response
		body []byte
	)
	_, err := t.breaker.Execute(func() (interface{}, error) {
		var err error
		resp, body, err = t.roundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
		}
		return nil, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, nil, types.ErrCircuitOpen
	}
	if resp != nil {
		return resp, body, nil
	}
	return nil, nil, err
}

func (t *RESTTransport) roundTrip(req *http.Request) (*http.Response, []byte, error) {
	resp, err := t.doRequest(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, errors.Wrap(types.ErrTimeout, err.Error())
		}
		return nil, nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read response")
	}
	return resp, body, nil
}

// doRequest executes the HTTP request with retry if configured
func (t *RESTTransport) doRequest(req *http.Request) (*http.Response, error) {
	if t.retryClient != nil {
		retryReq, err := retryablehttp.FromRequest(req)
		if err != nil {
			return nil, err
		}
		return t.retryClient.Do(retryReq)
	}
	return t.httpClient.Do(req)
}

// errorBody is the backend error envelope. message is either a string
// or a list of validation messages.
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

func (b *errorBody) text() string {
	if len(b.Message) > 0 {
		var single string
		if err := json.Unmarshal(b.Message, &single); err == nil && single != "" {
			return single
		}
		var many []string
		if err := json.Unmarshal(b.Message, &many); err == nil && len(many) > 0 {
			return strings.Join(many, "; ")
		}
	}
	return b.Error
}

// handleHTTPError maps a non-2xx response to an error
func (t *RESTTransport) handleHTTPError(statusCode int, body []byte) error {
	var errResp errorBody
	_ = json.Unmarshal(body, &errResp)
	msg := errResp.text()

	switch statusCode {
	case http.StatusNotFound:
		if msg == "" {
			msg = types.ErrNotFound.Error()
		}
		return &types.Error{
			Code:       "NOT_FOUND",
			Message:    msg,
			StatusCode: statusCode,
			Err:        types.ErrNotFound,
		}
	case http.StatusTooManyRequests:
		return types.ErrRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return types.ErrTimeout
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		if msg == "" {
			msg = http.StatusText(statusCode)
		}
		return &types.Error{
			Code:       "BAD_REQUEST",
			Message:    msg,
			StatusCode: statusCode,
		}
	default:
		if statusCode >= 500 {
			baseMsg := fmt.Sprintf("server error: %d", statusCode)
			if desc := httpStatusDescription(statusCode); desc != "" {
				baseMsg = fmt.Sprintf("server error: %d (%s)", statusCode, desc)
			}
			if msg != "" {
				baseMsg = fmt.Sprintf("%s: %s", baseMsg, msg)
			}

			return &types.Error{
				Code:       "SERVER_ERROR",
				Message:    baseMsg,
				StatusCode: statusCode,
				Err:        types.ErrServerError,
			}
		}
		if msg == "" {
			msg = fmt.Sprintf("HTTP error: %d", statusCode)
		}
		return &types.Error{
			Code:       "HTTP_ERROR",
			Message:    msg,
			StatusCode: statusCode,
		}
	}
}

// httpStatusDescription returns a human-readable description for common
// server-side status codes, including proxy-specific ones.
func httpStatusDescription(statusCode int) string {
	descriptions := map[int]string{
		500: "Internal Server Error",
		501: "Not Implemented",
		502: "Bad Gateway",
		503: "Service Unavailable",
		504: "Gateway Timeout",
		520: "Web Server Error",
		521: "Web Server Is Down",
		522: "Connection Timed Out",
		523: "Origin Is Unreachable",
		524: "A Timeout Occurred",
	}
	return descriptions[statusCode]
}

// retryLogger adapts our logger to retryablehttp
type retryLogger struct {
	logger types.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
