package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

var ErrRetrieval = errors.New("retrieval failed")

type Config struct {
	BaseURL      string
	ClientID     string
	Password     string
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
}

// Fetcher retrieves a JSON resource relative to the API base URL.
type Fetcher interface {
	Fetch(ctx context.Context, path string, out any) error
}

type Client struct {
	client *retryablehttp.Client
	base   *url.URL
	config Config
}

func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	rc := retryablehttp.NewClient()
	rc.Logger = &leveledLogger{logger: logger}
	if cfg.RetryMax > 0 {
		rc.RetryMax = cfg.RetryMax
	}
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}

	return &Client{
		client: rc,
		base:   base,
		config: cfg,
	}, nil
}

// Fetch GETs path relative to the base URL and decodes the JSON body into out.
func (c *Client) Fetch(ctx context.Context, path string, out any) error {
	logger := zerolog.Ctx(ctx)

	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path %s: %w", path, err)
	}
	target := c.base.ResolveReference(ref).String()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request for %s: %w", target, err)
	}
	if c.config.ClientID != "" {
		req.SetBasicAuth(c.config.ClientID, c.config.Password)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug().Str("url", target).Msg("fetching")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRetrieval, target, err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close response body")
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrRetrieval, target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s: status %d", ErrRetrieval, target, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrRetrieval, target, err)
	}
	return nil
}

// leveledLogger routes retryablehttp logging through zerolog.
type leveledLogger struct {
	logger zerolog.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Trace().Fields(keysAndValues).Msg(msg)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
