// Package scheduler runs periodic poll cycles and dynamic SKU refreshes.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MichalMitros/stock-watcher/internal/platform"
	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Watcher runs poll cycles.
type Watcher interface {
	Active() bool
	Trigger(ctx context.Context) error
	UpdateSKUs(table models.SKUTable)
}

// SKUSource provides dynamic SKU table.
type SKUSource interface {
	FetchSKUs(ctx context.Context) (models.SKUTable, error)
}

// Scheduler triggers poll cycles every refresh interval while watcher is active
// and refreshes SKU table on its own interval.
type Scheduler struct {
	watcher     Watcher
	source      SKUSource
	skuInterval time.Duration
	logger      *zerolog.Logger

	mu        sync.Mutex
	ctx       context.Context
	c         *cron.Cron
	pollEntry cron.EntryID
	interval  time.Duration
}

// NewScheduler returns new Scheduler. Source may be nil to disable SKU refreshes.
func NewScheduler(
	watcher Watcher,
	source SKUSource,
	interval time.Duration,
	skuInterval time.Duration,
	logger *zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		watcher:     watcher,
		source:      source,
		interval:    interval,
		skuInterval: skuInterval,
		logger:      logger,
	}
}

// Start schedules jobs. Jobs run with ctx until Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cl := cronLogger{logger: s.logger}
	s.ctx = ctx
	s.c = cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	s.pollEntry = s.c.Schedule(cron.Every(s.interval), cron.FuncJob(s.poll))

	if s.source != nil {
		s.c.Schedule(cron.Every(s.skuInterval), cron.FuncJob(s.refreshSKUs))
	}

	s.c.Start()

	s.logger.Info().
		Dur("interval", s.interval).
		Dur("skuInterval", s.skuInterval).
		Msg("scheduler started")
}

// Stop stops scheduling jobs and waits for running ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// SetInterval reschedules poll job with new refresh interval.
func (s *Scheduler) SetInterval(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if interval == s.interval {
		return
	}
	s.interval = interval

	if s.c == nil {
		return
	}

	s.c.Remove(s.pollEntry)
	s.pollEntry = s.c.Schedule(cron.Every(interval), cron.FuncJob(s.poll))

	s.logger.Info().Dur("interval", interval).Msg("refresh interval changed")
}

// RefreshSKUs fetches SKU table and hands it to watcher.
func (s *Scheduler) RefreshSKUs(ctx context.Context) error {
	if s.source == nil {
		return nil
	}

	table, err := s.source.FetchSKUs(ctx)
	if err != nil {
		return err
	}

	s.watcher.UpdateSKUs(table)

	return nil
}

func (s *Scheduler) poll() {
	if !s.watcher.Active() {
		return
	}

	err := s.watcher.Trigger(s.jobContext())
	switch {
	case errors.Is(err, platform.ErrCycleInProgress):
		s.logger.Debug().Msg("previous poll cycle still running")
	case err != nil:
		s.logger.Debug().Err(err).Msg("scheduled poll cycle failed")
	}
}

func (s *Scheduler) refreshSKUs() {
	if err := s.RefreshSKUs(s.jobContext()); err != nil {
		s.logger.Warn().Err(err).Msg("can't refresh sku table")
	}
}

func (s *Scheduler) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// cronLogger writes cron logs with zerolog.
type cronLogger struct {
	logger *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
