// Package pagespeed calls Google PageSpeed Insights v5 and adapts its
// Lighthouse payload into a normalize.Audit.
package pagespeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"perfscope/internal/domain"
	"perfscope/internal/normalize"
	"perfscope/internal/ports"
)

const (
	ProviderName   = "pagespeed"
	providerLabel  = "PageSpeed Insights"
	DefaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5"
)

var categories = []string{"performance", "accessibility", "best-practices", "seo"}

var _ ports.Analyzer = (*Client)(nil)

// Config holds configuration for the PageSpeed client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client performs one synchronous runPagespeed request per Analyze call.
type Client struct {
	http *resty.Client
	key  string
	log  logrus.FieldLogger
	now  func() time.Time
}

func New(cfg Config, log logrus.FieldLogger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("PAGESPEED_API_KEY environment variable is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		// Lighthouse runs routinely take 20-60s.
		timeout = 90 * time.Second
	}
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: client, key: cfg.APIKey, log: log.WithField("component", "pagespeed"), now: time.Now}, nil
}

func (c *Client) Name() string { return ProviderName }

// Analyze audits target and returns normalized results. A non-2xx response
// becomes a *domain.ProviderError; missing metrics are defaulted, not errors.
func (c *Client) Analyze(ctx context.Context, target string, strategy domain.Strategy) (*domain.Results, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	if strategy == "" {
		strategy = domain.StrategyMobile
	}

	params := url.Values{}
	params.Set("url", target)
	params.Set("strategy", string(strategy))
	params.Set("key", c.key)
	for _, cat := range categories {
		params.Add("category", cat)
	}

	c.log.WithField("url", target).WithField("strategy", strategy).Debug("PageSpeed Insights API call")

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Get("/runPagespeed")
	if err != nil {
		return nil, fmt.Errorf("pagespeed request: %w", err)
	}
	if !resp.IsSuccess() {
		perr := domain.NewProviderError(providerLabel, resp.StatusCode(), resp.Status())
		c.log.WithField("url", target).WithField("status", resp.StatusCode()).Warn("PageSpeed Insights API error")
		return nil, perr
	}

	var raw Response
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decode pagespeed response: %w", err)
	}
	audit := ToAudit(&raw, target, strategy)
	if audit.TestID == "" {
		audit.TestID = strconv.FormatInt(c.now().UnixMilli(), 10)
	}
	return normalize.Results(audit), nil
}

func validateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &domain.ValidationError{Field: "url", Message: "url must be an absolute http or https URL"}
	}
	return nil
}
