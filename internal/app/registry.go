package app

import (
	"context"
	"sync"
	"time"

	"github.com/perfura/storefront/internal/auth"
	"github.com/perfura/storefront/internal/catalog"
	"github.com/rs/zerolog"
)

type client struct {
	state    *State
	bridge   *Bridge
	lastSeen time.Time
}

// Registry owns the state of every connected client, keyed by session id.
// Clients idle for longer than the TTL are torn down and signed out.
type Registry struct {
	catalog   *catalog.Catalog
	submitter Submitter
	provider  auth.Provider
	idleTTL   time.Duration
	logger    zerolog.Logger
	now       func() time.Time

	mu      sync.Mutex
	clients map[string]*client
}

func NewRegistry(cat *catalog.Catalog, submitter Submitter, provider auth.Provider, idleTTL time.Duration, logger zerolog.Logger) *Registry {
	return &Registry{
		catalog:   cat,
		submitter: submitter,
		provider:  provider,
		idleTTL:   idleTTL,
		logger:    logger.With().Str("component", "registry").Logger(),
		now:       time.Now,
		clients:   make(map[string]*client),
	}
}

// Get returns the state of sid, creating it on first use. darkMode only
// seeds a new state.
func (r *Registry) Get(ctx context.Context, sid string, darkMode bool) *State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[sid]; ok {
		c.lastSeen = r.now()
		return c.state
	}

	state := NewState(sid, r.catalog, r.submitter, darkMode)
	c := &client{
		state:    state,
		bridge:   Connect(ctx, r.provider, state, r.logger),
		lastSeen: r.now(),
	}
	r.clients[sid] = c
	r.logger.Debug().Str("client", sid).Msg("client state created")
	return state
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Sweep tears down clients idle past the TTL and returns how many were removed.
func (r *Registry) Sweep(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	removed := 0
	for sid, c := range r.clients {
		if c.lastSeen.Before(cutoff) {
			r.teardownLocked(ctx, sid, c)
			removed++
		}
	}
	return removed
}

// Run sweeps idle clients every interval until ctx is done, then tears down
// the rest.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-ticker.C:
			if n := r.Sweep(ctx); n > 0 {
				r.logger.Info().Int("evicted", n).Msg("idle clients evicted")
			}
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sid, c := range r.clients {
		r.teardownLocked(context.Background(), sid, c)
	}
}

func (r *Registry) teardownLocked(ctx context.Context, sid string, c *client) {
	c.bridge.Close()
	if err := r.provider.SignOut(context.WithoutCancel(ctx), sid); err != nil {
		r.logger.Warn().Err(err).Str("client", sid).Msg("sign out on teardown failed")
	}
	delete(r.clients, sid)
}
