package profiles

import (
	"context"
	"strings"

	"perfscope/internal/domain"
	"perfscope/internal/ports"
	"perfscope/internal/services/tests"
)

var _ ports.Profiles = (*Service)(nil)

type Service struct {
	repo ports.TestRepository
}

func New(repo ports.TestRepository) *Service { return &Service{repo: repo} }

// GetLatest returns the most recently completed test for the registrable
// domain of name. name may be a bare host ("www.example.com") or a domain.
func (s *Service) GetLatest(ctx context.Context, name string) (*domain.Test, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "domain", Message: "Domain is required"}
	}
	return s.repo.LatestCompletedByDomain(ctx, tests.RegistrableDomain(name))
}
