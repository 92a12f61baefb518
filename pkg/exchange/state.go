package exchange

import (
	"context"
	"sync"

	"github.com/amirasaad/fxwidget/pkg/domain"
)

// State owns the session's resolved rates. The published RateMap is never
// mutated; a refresh swaps in a new one.
type State struct {
	resolver *Resolver

	mu      sync.RWMutex
	current *domain.Resolution
}

// NewState creates an unresolved session state.
func NewState(resolver *Resolver) *State {
	return &State{resolver: resolver}
}

// Resolve runs the full chain and publishes the result.
func (s *State) Resolve(ctx context.Context) domain.Resolution {
	res := s.resolver.Resolve(ctx)
	s.publish(res)
	return res
}

// Refresh re-fetches from the remote sources, also before the first
// Resolve.
func (s *State) Refresh(ctx context.Context) domain.Resolution {
	var prev *domain.Resolution
	if cur, ok := s.Current(); ok {
		prev = &cur
	}
	res := s.resolver.Refresh(ctx, prev)
	s.publish(res)
	return res
}

func (s *State) publish(res domain.Resolution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &res
}

// Current returns the published resolution, if any.
func (s *State) Current() (domain.Resolution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Resolution{}, false
	}
	return *s.current, true
}

// Rates returns the published rate map, or nil before the first resolution.
func (s *State) Rates() domain.RateMap {
	res, _ := s.Current()
	return res.Rates
}
