package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sociallens/comment-collector/pkg/apperrors"
	"github.com/sociallens/comment-collector/pkg/config"
	"github.com/sociallens/comment-collector/pkg/logger"
	"github.com/sociallens/comment-collector/pkg/retry"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://graph.facebook.com"

// Client is a thin, rate-limited GET client for the Graph API. One request is
// in flight at a time; pagination is driven by the caller following Paging.Next.
type Client struct {
	httpClient *http.Client
	baseURL    string
	version    string
	limiter    *rate.Limiter
	logger     logger.Logger
	retryCfg   retry.Config
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

func New(opts Opts) *Client {
	return NewClient(DefaultBaseURL, opts.Config.Graph.Version, opts.Config.Graph.Timeout, opts.Logger)
}

// NewClient builds a client against an explicit base URL. Tests point this at
// an httptest server.
func NewClient(baseURL, version string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		version:    version,
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
		logger:     log.WithComponent("GraphClient"),
		retryCfg:   retry.DefaultConfig(),
	}
}

// Get issues a GET against a versioned Graph API path and decodes the JSON
// response into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.version, strings.TrimPrefix(path, "/"))
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	return c.GetURL(ctx, endpoint, out)
}

// GetURL issues a GET against an absolute URL, typically a paging.next cursor
// URL returned by a previous call.
func (c *Client) GetURL(ctx context.Context, rawURL string, out any) error {
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(apperrors.Wrap(err, "failed to build request"))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network faults and per-call timeouts are worth one more attempt.
			return fmt.Errorf("%w: %v", apperrors.ErrTransport, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: reading response body: %v", apperrors.ErrTransport, err)
		}

		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(c.statusError(resp.StatusCode, body))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(apperrors.Wrap(err, "failed to decode response"))
		}
		return nil
	}

	return retry.Do(ctx, c.logger, "GraphGet", operation, c.retryCfg)
}

// statusError converts a non-2xx Graph response into the error taxonomy.
func (c *Client) statusError(status int, body []byte) error {
	var envelope apiError
	_ = json.Unmarshal(body, &envelope)

	if status == http.StatusTooManyRequests || rateLimitCodes[envelope.Error.Code] {
		c.logger.Warn("Graph API rate limit hit",
			"status", status,
			"code", envelope.Error.Code,
			"message", envelope.Error.Message,
		)
		return fmt.Errorf("%w: %s", apperrors.ErrRateLimited, envelope.Error.Message)
	}

	msg := envelope.Error.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	return fmt.Errorf("%w: status %d: %s", apperrors.ErrTransport, status, msg)
}
