package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/carlux/carlux-inventory/internal/catalog"
	"github.com/carlux/carlux-inventory/internal/debounce"
	"github.com/carlux/carlux-inventory/internal/listing"
)

const catalogFlightKey = "catalog"

// Options configures a Shell.
type Options struct {
	Logger      *slog.Logger
	Recorder    Recorder
	SearchDelay time.Duration
	Sort        listing.SortMode
}

// Shell is one mounted dashboard. It is safe for concurrent use; all state sits behind mu.
type Shell struct {
	fetcher  Fetcher
	logger   *slog.Logger
	recorder Recorder

	// ctx is the cancellation token handed to every fetch; Close cancels it.
	ctx         context.Context
	cancel      context.CancelFunc
	flight      singleflight.Group
	search      *debounce.Debouncer[string]
	settleDelay time.Duration

	mu       sync.Mutex
	phase    Phase
	loading  bool
	errMsg   string
	model    *listing.Model
	closed   bool
	inflight int
	idle     chan struct{}
}

// New constructs an idle shell. Call Mount to start the first fetch.
func New(fetcher Fetcher, opts Options) *Shell {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.SearchDelay < 0 {
		opts.SearchDelay = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Shell{
		fetcher:     fetcher,
		logger:      opts.Logger,
		recorder:    opts.Recorder,
		ctx:         ctx,
		cancel:      cancel,
		search:      debounce.New("", opts.SearchDelay),
		settleDelay: opts.SearchDelay,
		model:       listing.NewModel(),
	}
	s.model.SetSort(listing.ParseSortMode(string(opts.Sort)))
	s.search.OnCommit(func(q string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.model.SetDebouncedQuery(q)
	})
	return s
}

// Mount starts the initial fetch. Calling it more than once has no effect.
func (s *Shell) Mount() {
	s.mu.Lock()
	idle := s.phase == PhaseIdle
	s.mu.Unlock()
	if idle {
		s.startFetch("mount")
	}
}

// Retry clears the current error and runs a fresh fetch cycle. A retry issued while a fetch
// is still pending joins that fetch instead of sending a second request.
func (s *Shell) Retry() {
	s.startFetch("retry")
}

func (s *Shell) startFetch(trigger string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.errMsg = ""
	s.loading = true
	s.phase = PhaseLoading
	s.inflight++
	if s.idle == nil {
		s.idle = make(chan struct{})
	}
	s.mu.Unlock()

	// Joining happens here, before the goroutine starts, so a retry issued while a fetch is
	// pending always shares that fetch.
	results := s.flight.DoChan(catalogFlightKey, func() (any, error) {
		return s.fetch(trigger)
	})
	go func() {
		defer s.finish()
		select {
		case res := <-results:
			resp, _ := res.Val.(catalog.Response)
			s.settle(resp, res.Err)
		case <-s.ctx.Done():
		}
	}()
}

func (s *Shell) fetch(trigger string) (catalog.Response, error) {
	start := time.Now()
	resp, err := s.fetcher.Fetch(s.ctx)
	elapsed := time.Since(start)
	outcome := Outcome(err)
	s.recorder.ObserveCatalogFetch(outcome, elapsed)
	if err != nil {
		s.logger.Warn("catalog fetch failed",
			slog.String("trigger", trigger),
			slog.String("outcome", outcome),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err))
		return resp, err
	}
	s.logger.Info("catalog fetched",
		slog.String("trigger", trigger),
		slog.Int("count", len(resp.Products)),
		slog.Duration("elapsed", elapsed))
	return resp, nil
}

func (s *Shell) settle(resp catalog.Response, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Results that arrive after teardown are dropped.
	if s.closed || s.ctx.Err() != nil {
		return
	}
	defer func() {
		s.loading = false
	}()
	if err != nil {
		s.errMsg = Message(err)
		s.phase = PhaseFailure
		return
	}
	s.model.SetProducts(resp.Products, resp.Total)
	s.errMsg = ""
	s.phase = PhaseSuccess
}

func (s *Shell) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if s.inflight == 0 && s.idle != nil {
		close(s.idle)
		s.idle = nil
	}
}

// Wait blocks until no fetch is pending or ctx is done.
func (s *Shell) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	if idle == nil {
		return nil
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetSearch records the raw search text. The grid follows once the text settles.
func (s *Shell) SetSearch(q string) {
	s.mu.Lock()
	s.model.SetQuery(q)
	s.mu.Unlock()
	s.search.Set(q)
}

// SubmitSearch records the search text and applies it immediately.
func (s *Shell) SubmitSearch(q string) {
	s.SetSearch(q)
	s.search.Flush()
}

// SetSort selects the grid ordering.
func (s *Shell) SetSort(mode listing.SortMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model.SetSort(listing.ParseSortMode(string(mode)))
}

// Phase returns the current lifecycle phase.
func (s *Shell) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Close tears the shell down: the pending fetch is cancelled, the search timer is stopped and
// later results are discarded.
func (s *Shell) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.search.Stop()
}

// Closed reports whether Close was called.
func (s *Shell) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
