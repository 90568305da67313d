// Package webpagetest drives the WebPageTest REST API (runtest, testStatus,
// jsonResult) and adapts completed results into a normalize.Audit.
package webpagetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
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
	ProviderName   = "webpagetest"
	providerLabel  = "WebPageTest"
	DefaultBaseURL = "https://www.webpagetest.org"

	statusComplete = 200
	statusError    = 400
)

var (
	ErrNoTestData = errors.New("no test data available")

	_ ports.Analyzer = (*Client)(nil)
)

type Config struct {
	APIKey       string
	BaseURL      string
	Location     string
	Connectivity string
	Runs         int
	Timeout      time.Duration
	// PollInterval is the wait between testStatus checks inside Analyze.
	PollInterval time.Duration
}

// TestOptions are the runtest.php knobs.
type TestOptions struct {
	URL           string
	Location      string
	Runs          int
	FirstViewOnly bool
	Connectivity  string
	Video         bool
	Timeline      bool
	Lighthouse    bool
	Mobile        bool
}

type envelope[T any] struct {
	StatusCode int    `json:"statusCode"`
	StatusText string `json:"statusText"`
	Data       *T     `json:"data"`
}

type RunTestData struct {
	TestID  string `json:"testId"`
	JSONURL string `json:"jsonUrl"`
	UserURL string `json:"userUrl"`
}

type TestStatus struct {
	StatusCode int    `json:"statusCode"`
	StatusText string `json:"statusText"`
	TestID     string `json:"testId"`
	Elapsed    int    `json:"elapsed"`
}

type Client struct {
	http *resty.Client
	cfg  Config
	log  logrus.FieldLogger
}

func New(cfg Config, log logrus.FieldLogger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("WEBPAGETEST_API_KEY environment variable is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Location == "" {
		cfg.Location = "Dulles:Chrome"
	}
	if cfg.Connectivity == "" {
		cfg.Connectivity = "Cable"
	}
	if cfg.Runs < 1 {
		cfg.Runs = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: client, cfg: cfg, log: log.WithField("component", "webpagetest")}, nil
}

func (c *Client) Name() string { return ProviderName }

// RunTest submits a test and returns its id.
func (c *Client) RunTest(ctx context.Context, opts TestOptions) (*RunTestData, error) {
	if opts.Location == "" {
		opts.Location = c.cfg.Location
	}
	if opts.Connectivity == "" {
		opts.Connectivity = c.cfg.Connectivity
	}
	if opts.Runs < 1 {
		opts.Runs = c.cfg.Runs
	}
	params := url.Values{
		"k":            {c.cfg.APIKey},
		"url":          {opts.URL},
		"f":            {"json"},
		"location":     {opts.Location},
		"runs":         {strconv.Itoa(opts.Runs)},
		"fvonly":       {flag(opts.FirstViewOnly)},
		"connectivity": {opts.Connectivity},
		"video":        {flag(opts.Video)},
		"timeline":     {flag(opts.Timeline)},
		"lighthouse":   {flag(opts.Lighthouse)},
		"mobile":       {flag(opts.Mobile)},
	}
	var out envelope[RunTestData]
	if err := c.call(ctx, http.MethodPost, "/runtest.php", params, &out); err != nil {
		return nil, err
	}
	if out.StatusCode >= statusError || out.Data == nil || out.Data.TestID == "" {
		return nil, fmt.Errorf("webpagetest runtest rejected: %s", out.StatusText)
	}
	return out.Data, nil
}

// Status reports progress; StatusCode 1xx is pending, 200 complete, >=400 failed.
func (c *Client) Status(ctx context.Context, testID string) (*TestStatus, error) {
	params := url.Values{"k": {c.cfg.APIKey}, "test": {testID}, "f": {"json"}}
	var out envelope[TestStatus]
	if err := c.call(ctx, http.MethodGet, "/testStatus.php", params, &out); err != nil {
		return nil, err
	}
	st := TestStatus{StatusCode: out.StatusCode, StatusText: out.StatusText, TestID: testID}
	if out.Data != nil {
		st.Elapsed = out.Data.Elapsed
	}
	return &st, nil
}

// Results fetches a completed test and adapts it.
func (c *Client) Results(ctx context.Context, testID string, strategy domain.Strategy) (normalize.Audit, error) {
	params := url.Values{"k": {c.cfg.APIKey}, "test": {testID}, "f": {"json"}}
	var out envelope[ResultData]
	if err := c.call(ctx, http.MethodGet, "/jsonResult.php", params, &out); err != nil {
		return normalize.Audit{}, err
	}
	if out.StatusCode != statusComplete || out.Data == nil {
		return normalize.Audit{}, fmt.Errorf("test not complete or failed: %s", out.StatusText)
	}
	return ToAudit(testID, out.Data, strategy)
}

// Analyze submits a test, waits for completion and returns normalized results.
// Unlike PageSpeed this provider is asynchronous, so the wait happens here and
// is bounded by ctx.
func (c *Client) Analyze(ctx context.Context, target string, strategy domain.Strategy) (*domain.Results, error) {
	run, err := c.RunTest(ctx, TestOptions{
		URL:        target,
		Lighthouse: true,
		Mobile:     strategy == domain.StrategyMobile,
	})
	if err != nil {
		return nil, err
	}
	log := c.log.WithField("wpt_test_id", run.TestID).WithField("url", target)
	log.Debug("WebPageTest test submitted")

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()
	for {
		st, err := c.Status(ctx, run.TestID)
		if err != nil {
			return nil, err
		}
		switch {
		case st.StatusCode == statusComplete:
			audit, err := c.Results(ctx, run.TestID, strategy)
			if err != nil {
				return nil, err
			}
			return normalize.Results(audit), nil
		case st.StatusCode >= statusError:
			return nil, fmt.Errorf("test not complete or failed: %s", st.StatusText)
		}
		log.WithField("status", st.StatusText).Debug("WebPageTest test pending")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) call(ctx context.Context, method, path string, params url.Values, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Execute(method, path)
	if err != nil {
		return fmt.Errorf("webpagetest %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return domain.NewProviderError(providerLabel, resp.StatusCode(), resp.Status())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode webpagetest %s: %w", path, err)
	}
	return nil
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
