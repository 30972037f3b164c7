package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sadanews/sada/internal/logger"
	"github.com/sadanews/sada/internal/models"
	"github.com/sadanews/sada/internal/pipeline"
	"github.com/sadanews/sada/internal/store"
)

var (
	// ErrSyncInProgress is returned by ManualSync when any run, scheduled
	// or manual, is already in flight. The caller gets a signal, not a
	// queue.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrDestroyed is returned by operations on a destroyed scheduler.
	ErrDestroyed = errors.New("scheduler is destroyed")
)

// DefaultCadenceName identifies the cadence whose interval follows
// SyncConfig.IntervalMinutes.
const DefaultCadenceName = "priority"

// Cadence is one independent recurring execution of the pipeline. A zero
// Interval means the interval is read from the live SyncConfig instead.
type Cadence struct {
	Name       string
	Interval   time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultCadences returns the production cadence set: a config-driven
// priority cadence and a slow backup cadence that catches up after outages.
func DefaultCadences() []Cadence {
	return []Cadence{
		{Name: DefaultCadenceName, MaxRetries: 3, RetryDelay: 30 * time.Second},
		{Name: "backup", Interval: 6 * time.Hour, MaxRetries: 1, RetryDelay: time.Minute},
	}
}

// Runner executes one full ingestion run. Satisfied by pipeline.Pipeline.
type Runner interface {
	RunOnce(ctx context.Context, cfg models.SyncConfig) (pipeline.Result, error)
}

// Status is the admin-facing snapshot of the scheduler.
type Status struct {
	IsRunning bool       `json:"is_running"`
	LastSync  *time.Time `json:"last_sync,omitempty"`
	NextSync  *time.Time `json:"next_sync,omitempty"`
}

type cadenceState struct {
	mu      sync.Mutex
	nextRun time.Time
	restart chan struct{}
}

func (s *cadenceState) setNext(t time.Time) {
	s.mu.Lock()
	s.nextRun = t
	s.mu.Unlock()
}

func (s *cadenceState) next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

// Scheduler drives the pipeline on multiple independent cadences. One
// instance per process, constructed by the composition root and passed by
// reference; there is no package-level singleton.
//
// There is a single run slot shared by every cadence and by ManualSync:
// each pipeline run is a read-modify-write over the whole stored
// collection, so runs must be serialized process-wide, not just within
// one cadence. A tick or manual call that finds the slot taken is
// skipped, never queued.
type Scheduler struct {
	runner   Runner
	store    store.Store
	validate *validator.Validate
	cadences []Cadence

	cfgMu sync.RWMutex
	cfg   models.SyncConfig

	runMu    sync.Mutex
	runInUse bool

	states map[string]*cadenceState

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	destroyed sync.Once
}

func New(runner Runner, st store.Store, defaults models.SyncConfig, cadences []Cadence) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	states := make(map[string]*cadenceState, len(cadences))
	for _, c := range cadences {
		states[c.Name] = &cadenceState{restart: make(chan struct{}, 1)}
	}

	return &Scheduler{
		runner:   runner,
		store:    st,
		validate: validator.New(),
		cadences: cadences,
		cfg:      defaults,
		states:   states,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start loads the persisted config, falling back to the constructor
// defaults, and launches one timer goroutine per cadence.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.ctx.Err(); err != nil {
		return ErrDestroyed
	}

	persisted, ok, err := s.store.GetSyncConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sync config: %w", err)
	}
	if ok {
		s.cfgMu.Lock()
		s.cfg = persisted
		s.cfgMu.Unlock()
	}

	s.startOnce.Do(func() {
		for _, c := range s.cadences {
			s.wg.Add(1)
			go s.runCadence(c, s.states[c.Name])
		}
		logger.Get().Info().Int("cadences", len(s.cadences)).Msg("Scheduler started")
	})
	return nil
}

func (s *Scheduler) runCadence(c Cadence, state *cadenceState) {
	defer s.wg.Done()

	for {
		interval := s.cadenceInterval(c)
		state.setNext(time.Now().Add(interval))
		timer := time.NewTimer(interval)

		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-state.restart:
			// Config changed; re-arm with the new interval immediately
			// instead of waiting out the old one.
			timer.Stop()
			continue
		case <-timer.C:
			s.execute(c, state)
		}
	}
}

// tryBeginRun claims the process-wide run slot shared by all cadences and
// ManualSync.
func (s *Scheduler) tryBeginRun() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.runInUse {
		return false
	}
	s.runInUse = true
	return true
}

func (s *Scheduler) endRun() {
	s.runMu.Lock()
	s.runInUse = false
	s.runMu.Unlock()
}

func (s *Scheduler) runBusy() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.runInUse
}

// execute runs the pipeline under the cadence's retry policy. An overlap
// with any still-running run, whatever cadence started it, skips this tick
// with a log line.
func (s *Scheduler) execute(c Cadence, state *cadenceState) {
	log := logger.Get()

	cfg := s.Config()
	if !cfg.Enabled {
		log.Debug().Str("cadence", c.Name).Msg("Sync disabled, skipping tick")
		return
	}

	if !s.tryBeginRun() {
		log.Warn().Str("cadence", c.Name).Msg("Another run still in flight, skipping tick")
		return
	}
	defer s.endRun()

	policy := RetryPolicy{MaxAttempts: c.MaxRetries, Delay: c.RetryDelay}
	err := policy.Do(s.ctx, func(ctx context.Context) error {
		result, err := s.runner.RunOnce(ctx, s.Config())
		if err != nil {
			return err
		}
		log.Info().Str("cadence", c.Name).Int("added", result.Added).
			Int("dropped", result.Dropped).Msg("Scheduled run finished")
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("cadence", c.Name).Int("max_retries", c.MaxRetries).
			Msg("Scheduled run failed after retries, waiting for next tick")
	}
}

func (s *Scheduler) cadenceInterval(c Cadence) time.Duration {
	if c.Interval > 0 {
		return c.Interval
	}
	cfg := s.Config()
	if cfg.IntervalMinutes < 1 {
		return time.Minute
	}
	return time.Duration(cfg.IntervalMinutes) * time.Minute
}

// ManualSync runs the pipeline immediately, out of band. Any run already
// in flight, scheduled or manual, yields ErrSyncInProgress instead of
// queueing a second run.
func (s *Scheduler) ManualSync(ctx context.Context) (pipeline.Result, error) {
	if err := s.ctx.Err(); err != nil {
		return pipeline.Result{}, ErrDestroyed
	}

	if !s.tryBeginRun() {
		return pipeline.Result{}, ErrSyncInProgress
	}
	defer s.endRun()

	return s.runner.RunOnce(ctx, s.Config())
}

// UpdateConfig validates and merges the patch, persists the result, and
// restarts every cadence timer so new intervals take effect immediately. A
// persistence failure leaves the live config untouched and is returned to
// the caller.
func (s *Scheduler) UpdateConfig(ctx context.Context, patch models.SyncConfigPatch) (models.SyncConfig, error) {
	if err := s.ctx.Err(); err != nil {
		return models.SyncConfig{}, ErrDestroyed
	}

	if err := s.validate.Struct(patch); err != nil {
		return models.SyncConfig{}, fmt.Errorf("invalid config patch: %w", err)
	}

	next := models.MergeConfig(s.Config(), patch)
	if err := s.store.SetSyncConfig(ctx, next); err != nil {
		return models.SyncConfig{}, fmt.Errorf("failed to persist sync config: %w", err)
	}

	s.cfgMu.Lock()
	s.cfg = next
	s.cfgMu.Unlock()

	for _, state := range s.states {
		select {
		case state.restart <- struct{}{}:
		default:
		}
	}

	logger.Get().Info().Int("interval_minutes", next.IntervalMinutes).
		Bool("enabled", next.Enabled).Msg("Sync config updated, cadences restarted")
	return next, nil
}

// Config returns the live configuration.
func (s *Scheduler) Config() models.SyncConfig {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// Status reports whether a run is in flight, the persisted last sync time,
// and the earliest upcoming tick.
func (s *Scheduler) Status(ctx context.Context) (Status, error) {
	st := Status{IsRunning: s.runBusy()}

	for _, state := range s.states {
		if next := state.next(); !next.IsZero() {
			if st.NextSync == nil || next.Before(*st.NextSync) {
				n := next
				st.NextSync = &n
			}
		}
	}

	last, ok, err := s.store.LastSync(ctx)
	if err != nil {
		return st, fmt.Errorf("failed to read last sync: %w", err)
	}
	if ok {
		st.LastSync = &last
	}
	return st, nil
}

// Destroy cancels all timers and waits for the goroutines to exit. Safe to
// call more than once; a destroyed scheduler rejects further operations.
func (s *Scheduler) Destroy() {
	s.destroyed.Do(func() {
		s.cancel()
		s.wg.Wait()
		logger.Get().Info().Msg("Scheduler destroyed")
	})
}
