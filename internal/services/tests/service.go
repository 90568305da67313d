package tests

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"

	"perfscope/internal/domain"
	"perfscope/internal/ports"
)

const maxListLimit = 100

var schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

var _ ports.Tests = (*Service)(nil)

type Service struct {
	repo     ports.TestRepository
	provider string
	wakeups  ports.WakeupPublisher
	log      logrus.FieldLogger
	now      func() time.Time
}

// New builds the submission service. provider is recorded on every new test;
// wakeups may be nil.
func New(repo ports.TestRepository, provider string, wakeups ports.WakeupPublisher, log logrus.FieldLogger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		wakeups:  wakeups,
		log:      log.WithField("component", "tests"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates and normalizes the URL and stores a PENDING test.
func (s *Service) Submit(ctx context.Context, req ports.SubmitRequest) (*domain.Test, error) {
	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		return nil, &domain.ValidationError{Field: "url", Message: "URL is required"}
	}
	normalized, host, err := NormalizeURL(raw)
	if err != nil {
		return nil, &domain.ValidationError{Field: "url", Message: "Invalid URL format"}
	}
	strategy, err := domain.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, &domain.ValidationError{Field: "strategy", Message: "Invalid strategy"}
	}

	now := s.now()
	t := &domain.Test{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		URL:       normalized,
		Domain:    RegistrableDomain(host),
		Strategy:  strategy,
		Provider:  s.provider,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("create test: %w", err)
	}

	log := s.log.WithField("test_id", t.ID).WithField("url", t.URL)
	if t.UserID != nil {
		log = log.WithField("user_id", *t.UserID)
	}
	log.Info("Test queued")

	if s.wakeups != nil {
		if err := s.wakeups.Publish(ctx); err != nil {
			log.WithError(err).Warn("Failed to publish wakeup")
		}
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Test, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f domain.TestFilter) ([]domain.Test, error) {
	if f.Limit <= 0 || f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Message: "Invalid status"}
	}
	tests, err := s.repo.List(ctx, f)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return tests, nil
}

// NormalizeURL prefixes https:// when the input carries no scheme, then
// requires an absolute http(s) URL with a host. Scheme and host are
// lowercased and an empty path becomes "/".
func NormalizeURL(raw string) (normalized, host string, err error) {
	if !schemePrefix.MatchString(raw) {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" || strings.ContainsAny(u.Hostname(), " \t") {
		return "", "", errors.New("missing host")
	}
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), u.Hostname(), nil
}

// RegistrableDomain returns eTLD+1 for host, or host itself when it has none
// (IP addresses, localhost).
func RegistrableDomain(host string) string {
	host = strings.ToLower(host)
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}
