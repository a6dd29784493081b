package feedback

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultTimeout bounds a single critique request.
	DefaultTimeout = 60 * time.Second

	maxResponseBytes = 1 << 20
)

// Option configures a client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	retry      RetryPolicy
	logger     hclog.Logger
}

func buildOptions(opts []Option) options {
	o := options{
		retry:  DefaultRetryPolicy,
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return o
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *options) { o.retry = p }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// ProxyClient posts drawings to the critique proxy, which holds the model
// credentials server-side.
type ProxyClient struct {
	endpoint string
	apiKey   string
	opts     options
}

var _ Critic = (*ProxyClient)(nil)

type proxyRequest struct {
	Image   string  `json:"image"`
	Context Context `json:"context"`
}

type proxyResponse struct {
	Feedback string `json:"feedback"`
	Error    string `json:"error"`
}

// NewProxyClient creates a client for the proxy at endpoint. The API key is
// sent as a bearer token when non-empty.
func NewProxyClient(endpoint, apiKey string, opts ...Option) (*ProxyClient, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, &Error{Kind: KindMissingCredentials}
	}
	o := buildOptions(opts)
	return &ProxyClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		opts:     o,
	}, nil
}

// Critique implements Critic.
func (c *ProxyClient) Critique(ctx context.Context, png []byte, fc Context) (string, error) {
	if len(png) == 0 {
		return "", &Error{Kind: KindImageEncoding, Err: fmt.Errorf("empty image")}
	}
	body, err := json.Marshal(proxyRequest{
		Image:   base64.StdEncoding.EncodeToString(png),
		Context: fc,
	})
	if err != nil {
		return "", &Error{Kind: KindImageEncoding, Err: err}
	}

	c.opts.logger.Debug("requesting critique", "endpoint", c.endpoint, "bytes", len(png))
	return c.opts.retry.Do(ctx, c.opts.logger, func(ctx context.Context) (string, error) {
		return c.post(ctx, body)
	})
}

func (c *ProxyClient) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		return "", classify(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", classify(ctx, err)
	}

	var out proxyResponse
	decodeErr := json.Unmarshal(data, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := &Error{Kind: KindHTTPStatus, Status: resp.StatusCode}
		if decodeErr == nil {
			e.Message = out.Error
		}
		return "", e
	}
	if decodeErr != nil {
		return "", &Error{Kind: KindMalformedResponse, Err: decodeErr}
	}
	if strings.TrimSpace(out.Feedback) == "" {
		return "", &Error{Kind: KindMalformedResponse, Err: fmt.Errorf("missing feedback field")}
	}
	return out.Feedback, nil
}
