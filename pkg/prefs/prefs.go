package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/amirasaad/fxwidget/pkg/cache"
	"github.com/amirasaad/fxwidget/pkg/domain"
	"github.com/amirasaad/fxwidget/pkg/metrics"
)

const prefsKey = "prefs"

// LocalClient identifies the single user of a terminal session.
const LocalClient = ""

// Store persists UserPrefs per client. It never returns storage errors:
// unreadable preferences load as defaults and failed writes are skipped.
type Store struct {
	store   cache.Store
	prefix  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a preferences store over store.
func New(store cache.Store, prefix string, logger *slog.Logger, m *metrics.Metrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{store: store, prefix: prefix, logger: logger, metrics: m}
}

func (s *Store) key(clientID string) string {
	if clientID == LocalClient {
		return s.prefix + prefsKey
	}
	return s.prefix + prefsKey + ":" + clientID
}

// Load returns the saved preferences, filling blank fields with defaults.
func (s *Store) Load(ctx context.Context, clientID string) domain.UserPrefs {
	defaults := domain.DefaultPrefs()

	raw, err := s.store.Get(ctx, s.key(clientID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return defaults
	}
	if err != nil {
		s.metrics.ObserveStoreError("get")
		s.logger.Warn("Failed to read preferences, using defaults", "client", clientID, "error", err)
		return defaults
	}

	var p domain.UserPrefs
	if err := json.Unmarshal(raw, &p); err != nil {
		s.logger.Warn("Corrupt preferences record, using defaults", "client", clientID, "error", err)
		return defaults
	}
	if p.From == "" {
		p.From = defaults.From
	}
	if p.To == "" {
		p.To = defaults.To
	}
	return p
}

// Save overwrites the client's preferences.
func (s *Store) Save(ctx context.Context, clientID string, p domain.UserPrefs) {
	raw, err := json.Marshal(p)
	if err == nil {
		err = s.store.Set(ctx, s.key(clientID), raw)
	}
	if err != nil {
		s.metrics.ObserveStoreError("set")
		s.logger.Warn("Failed to save preferences, write skipped", "client", clientID, "error", err)
	}
}
