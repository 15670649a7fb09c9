package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry keeps one mounted shell per viewer and unmounts shells nobody looked at for a while.
type Registry struct {
	factory  func() *Shell
	ttl      time.Duration
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time

	mu     sync.Mutex
	shells map[string]*registryEntry
	closed bool
}

type registryEntry struct {
	shell    *Shell
	lastSeen time.Time
}

// NewRegistry builds a registry that creates shells with factory and evicts them after ttl
// of inactivity. A non-positive ttl disables eviction.
func NewRegistry(factory func() *Shell, ttl time.Duration, logger *slog.Logger, recorder Recorder) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Registry{
		factory:  factory,
		ttl:      ttl,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
		shells:   make(map[string]*registryEntry),
	}
}

// Get returns the shell for id, creating and mounting one on first use. init, when non-nil,
// runs on a newly created shell before it is mounted. Get returns nil after Close.
func (r *Registry) Get(id string, init func(*Shell)) *Shell {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	now := r.now()
	if entry, ok := r.shells[id]; ok {
		entry.lastSeen = now
		return entry.shell
	}
	shell := r.factory()
	if init != nil {
		init(shell)
	}
	shell.Mount()
	r.shells[id] = &registryEntry{shell: shell, lastSeen: now}
	r.recorder.SetActiveDashboards(len(r.shells))
	r.logger.Debug("dashboard mounted", slog.String("viewer", id))
	return shell
}

// Len returns the number of mounted shells.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shells)
}

// Sweep unmounts shells idle since before now minus the ttl and returns how many it removed.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	var evicted []*Shell
	for id, entry := range r.shells {
		if now.Sub(entry.lastSeen) > r.ttl {
			evicted = append(evicted, entry.shell)
			delete(r.shells, id)
		}
	}
	if len(evicted) > 0 {
		r.recorder.SetActiveDashboards(len(r.shells))
	}
	r.mu.Unlock()

	for _, shell := range evicted {
		shell.Close()
	}
	if len(evicted) > 0 {
		r.logger.Info("dashboards evicted", slog.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done, then closes the registry.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep(r.now())
		}
	}
}

// Close unmounts every shell. Later Get calls return nil.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	shells := make([]*Shell, 0, len(r.shells))
	for _, entry := range r.shells {
		shells = append(shells, entry.shell)
	}
	r.shells = make(map[string]*registryEntry)
	r.recorder.SetActiveDashboards(0)
	r.mu.Unlock()

	for _, shell := range shells {
		shell.Close()
	}
}
