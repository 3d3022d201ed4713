package meta

import (
	"context"
	"sync"
	"time"
)

const defaultCacheTTL = 30 * time.Minute

// Fetcher is the subset of the client the service needs.
type Fetcher interface {
	TopCommanders(ctx context.Context) ([]*CommanderRank, error)
	Format(ctx context.Context, format string) (*FormatMeta, error)
}

// Service caches meta API responses for a short TTL so repeated
// shell commands do not hammer the API.
type Service struct {
	fetcher Fetcher
	ttl     time.Duration

	mu        sync.Mutex
	top       []*CommanderRank
	topAt     time.Time
	formats   map[string]*FormatMeta
	formatsAt map[string]time.Time
	nowFunc   func() time.Time
}

// NewService creates a meta service backed by fetcher.
func NewService(fetcher Fetcher) *Service {
	return &Service{
		fetcher:   fetcher,
		ttl:       defaultCacheTTL,
		formats:   make(map[string]*FormatMeta),
		formatsAt: make(map[string]time.Time),
		nowFunc:   time.Now,
	}
}

// TopCommanders returns the cached listing, refreshing when stale.
func (s *Service) TopCommanders(ctx context.Context) ([]*CommanderRank, error) {
	s.mu.Lock()
	if s.top != nil && s.nowFunc().Sub(s.topAt) < s.ttl {
		cached := s.top
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	ranks, err := s.fetcher.TopCommanders(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.top = ranks
	s.topAt = s.nowFunc()
	s.mu.Unlock()
	return ranks, nil
}

// Format returns the cached snapshot for format, refreshing when stale.
func (s *Service) Format(ctx context.Context, format string) (*FormatMeta, error) {
	s.mu.Lock()
	if cached, ok := s.formats[format]; ok && s.nowFunc().Sub(s.formatsAt[format]) < s.ttl {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	fm, err := s.fetcher.Format(ctx, format)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.formats[format] = fm
	s.formatsAt[format] = s.nowFunc()
	s.mu.Unlock()
	return fm, nil
}
