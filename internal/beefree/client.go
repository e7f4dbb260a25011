package beefree

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ignite/bee-importer/internal/config"
	"github.com/ignite/bee-importer/internal/pkg/logger"
)

const (
	// HTMLToJSONPath is the importer endpoint, relative to the base URL.
	HTMLToJSONPath = "/conversion/html-to-json"

	defaultTimeout        = 30 * time.Second
	connectionTestTimeout = 10
	defaultRetryAfter     = 60
	maxErrorBodyChars     = 200
)

const connectionTestHTML = `<!DOCTYPE html><html><head><meta charset="UTF-8"><title>Test</title></head><body><p>Test</p></body></html>`

// HTTPDoer is the interface for executing HTTP requests.
// *http.Client satisfies it; tests substitute their own transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Beefree HTML Importer API client
type Client struct {
	baseURL    string
	apiToken   string
	timeout    time.Duration
	httpClient HTTPDoer
	log        *logger.Scoped
	now        func() time.Time
}

// NewClient creates a new Beefree API client. The token is resolved once here
// and never re-read. If doer is nil a plain http.Client is used; per-call
// timeouts are enforced through the request context.
func NewClient(cfg config.BeefreeConfig, doer HTTPDoer) (*Client, error) {
	if strings.TrimSpace(cfg.APIToken) == "" {
		return nil, ErrMissingToken
	}
	if doer == nil {
		doer = &http.Client{}
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:   cfg.APIToken,
		timeout:    timeout,
		httpClient: doer,
		log:        logger.Component("beefree"),
		now:        time.Now,
	}, nil
}

// Convert sends html to the importer and classifies the response. It never
// returns an error: every outcome, including transport faults, is a Result.
func (c *Client) Convert(ctx context.Context, html string, opts Options) Result {
	timeout := c.timeout
	if opts.TimeoutSeconds > 0 {
		timeout = time.Duration(opts.TimeoutSeconds) * time.Second
	}

	start := c.now()
	c.log.Info("starting HTML to JSON conversion", "html_bytes", len(html), "timeout", timeout)

	result := c.do(ctx, html, opts, timeout)

	elapsed := c.now().Sub(start)
	if result.Failure != nil {
		c.log.Error("conversion failed",
			"error_type", result.Failure.ErrorType,
			"error", result.Failure.Message,
			"duration_ms", elapsed.Milliseconds())
	} else {
		c.log.Info("API call completed", "duration_ms", elapsed.Milliseconds())
	}
	return result
}

func (c *Client) do(ctx context.Context, html string, opts Options, timeout time.Duration) Result {
	body, err := json.Marshal(conversionRequest{HTML: html, Options: normalizeOptions(opts)})
	if err != nil {
		return failed(TypeUnknown, fmt.Sprintf("Unexpected error: marshaling request body: %v", err), nil)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+HTMLToJSONPath, bytes.NewReader(body))
	if err != nil {
		return failed(TypeUnknown, fmt.Sprintf("Unexpected error: creating request: %v", err), nil)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return faultResult(err, timeout)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return faultResult(fmt.Errorf("reading response: %w", err), timeout)
	}

	return classify(resp.StatusCode, resp.Header, respBody)
}

// TestConnection runs one minimal conversion to validate credentials and
// connectivity.
func (c *Client) TestConnection(ctx context.Context) ConnectionStatus {
	start := c.now()
	result := c.Convert(ctx, connectionTestHTML, Options{TimeoutSeconds: connectionTestTimeout})
	if result.Failure != nil {
		return ConnectionStatus{
			Status:    "error",
			Message:   "Connection failed: " + result.Failure.Message,
			ErrorType: result.Failure.ErrorType,
		}
	}

	rt := result.Success.ResponseTimeMs
	if rt == nil {
		measured := float64(c.now().Sub(start).Milliseconds())
		rt = &measured
	}
	return ConnectionStatus{
		Status:         "connected",
		Message:        "Successfully connected to Beefree API",
		ResponseTimeMs: rt,
	}
}

func faultResult(err error, timeout time.Duration) Result {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return failed(TypeTimeout, fmt.Sprintf("API request timed out after %s", timeout), nil)
	}
	return failed(TypeUnknown, fmt.Sprintf("Unexpected error: %v", err), nil)
}

// classify maps an HTTP response onto a Result. Status ranges are checked in
// a fixed priority order.
func classify(status int, header http.Header, body []byte) Result {
	switch {
	case status >= 200 && status <= 299:
		return parseSuccess(body)
	case status == http.StatusBadRequest:
		msg, details := parseErrorBody(body)
		return failed(TypeValidation, msg, details)
	case status == http.StatusUnauthorized:
		return failed(TypeAuthentication, "Invalid or expired API token", nil)
	case status == http.StatusUnprocessableEntity:
		msg, details := parseErrorBody(body)
		return failed(TypeContent, msg, details)
	case status == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(header.Get("Retry-After"))
		return Result{Failure: &Failure{
			ErrorType:         TypeRateLimit,
			Message:           fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", retryAfter),
			RetryAfterSeconds: &retryAfter,
		}}
	case status >= 500 && status <= 599:
		return failed(TypeServer, fmt.Sprintf("Beefree API server error (%d)", status), nil)
	default:
		return failed(TypeUnknownStatus, fmt.Sprintf("Unexpected API response (%d)", status), nil)
	}
}

func parseSuccess(body []byte) Result {
	parsed, err := decodeObject(body)
	if err != nil {
		return failed(TypeUnknown, fmt.Sprintf("Unexpected error: parsing response: %v", err), nil)
	}

	s := &Success{JSON: parsed, Metadata: map[string]any{}}
	doc := parsed["json"]
	if b, ok := doc.(bool); ok && !b {
		doc = nil
	}
	switch doc := doc.(type) {
	case map[string]any:
		s.JSON = doc
	case nil:
		// No json field (or null/false): the whole body is the document.
	default:
		// Arrays and scalars cannot be adapted into a Bee document.
		return failed(TypeUnknown, "Unexpected error: response json field is not an object", nil)
	}
	if html, ok := parsed["html"].(string); ok {
		s.HTML = &html
	}
	if md, ok := parsed["metadata"].(map[string]any); ok {
		s.Metadata = md
	}
	if n, ok := parsed["response_time"].(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			s.ResponseTimeMs = &f
		}
	}
	return Result{Success: s}
}

// decodeObject parses a JSON object, keeping numbers as json.Number so large
// integers in Bee JSON survive a round trip.
func decodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("response body is not a JSON object")
	}
	return obj, nil
}

func parseErrorBody(body []byte) (string, []string) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "API returned non-JSON error response", []string{truncate(string(body), maxErrorBodyChars)}
	}
	obj, _ := v.(map[string]any)

	msg := "Unknown error"
	if m := firstPresent(obj, "error", "message"); m != nil {
		msg = stringify(m)
	}
	details := []string{}
	if d := firstPresent(obj, "details", "errors"); d != nil {
		details = toStrings(d)
	}
	return msg, details
}

func firstPresent(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func toStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{stringify(v)}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, stringify(item))
	}
	return out
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func parseRetryAfter(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return defaultRetryAfter
	}
	return n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
