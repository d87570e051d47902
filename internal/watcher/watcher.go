// Package watcher owns the canonical item list and runs poll cycles over it.
//
// Only one cycle runs at a time. Triggers arriving during a cycle are dropped,
// region changes cancel the running cycle and discard its results.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MichalMitros/stock-watcher/internal/platform"
	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

//go:generate mockery --name Dispatcher --filename dispatcher.go
//go:generate mockery --name Store --filename store.go

// Poller runs single poll cycle.
type Poller interface {
	Poll(ctx context.Context, items []models.Item, region string, trigger uint64) ([]models.Item, error)
}

// Catalog builds item lists for regions.
type Catalog interface {
	BuildItems(region string, dynamic models.SKUTable, prior []models.Item) []models.Item
	ValidRegion(region string) bool
}

// Dispatcher detects transitions of committed items and alerts about them.
type Dispatcher interface {
	Dispatch(ctx context.Context, items []models.Item) []models.Alert
	Seed(items []models.Item)
}

// Store persists the most recent snapshot.
type Store interface {
	SaveSnapshot(ctx context.Context, snapshot models.Snapshot) error
	LoadSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// Option is custom configuration of Watcher.
type Option func(w *Watcher)

// Watcher runs poll cycles and holds their results.
type Watcher struct {
	poller     Poller
	catalog    Catalog
	dispatcher Dispatcher
	store      Store
	logger     *zerolog.Logger

	root     context.Context
	shutdown context.CancelFunc
	bg       sync.WaitGroup

	// cycle is held for the whole poll cycle including dispatch.
	cycle sync.Mutex

	// saveMu orders snapshot writes, it is taken before mu.
	saveMu sync.Mutex

	// mu guards fields below.
	mu          sync.Mutex
	items       []models.Item
	region      string
	dynamic     models.SKUTable
	skuVersion  uint64
	trigger     uint64
	generation  uint64
	active      bool
	loading     bool
	err         error
	cancelCycle context.CancelFunc
}

// NewWatcher returns new Watcher with items of region built from catalog.
func NewWatcher(poller Poller, catalog Catalog, dispatcher Dispatcher, region string, ops ...Option) (*Watcher, error) {
	if !catalog.ValidRegion(region) {
		return nil, fmt.Errorf("can't watch region %q: %w", region, platform.ErrUnknownRegion)
	}

	nop := zerolog.Nop()
	root, shutdown := context.WithCancel(context.Background())
	w := &Watcher{
		poller:     poller,
		catalog:    catalog,
		dispatcher: dispatcher,
		logger:     &nop,
		root:       root,
		shutdown:   shutdown,
		region:     region,
		items:      catalog.BuildItems(region, nil, nil),
	}

	for _, op := range ops {
		op(w)
	}

	return w, nil
}

// Restore replaces items with the most recent stored snapshot. Observations are
// restored only if snapshot region is still supported.
func (w *Watcher) Restore(ctx context.Context) error {
	if w.store == nil {
		return nil
	}

	snapshot, err := w.store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("can't load snapshot: %w", err)
	}
	if snapshot == nil {
		w.logger.Info().Msg("no snapshot to restore")
		return nil
	}
	if !w.catalog.ValidRegion(snapshot.Region) {
		w.logger.Warn().Str("region", snapshot.Region).Msg("snapshot region is not supported, skipping restore")
		return nil
	}

	w.mu.Lock()
	w.region = snapshot.Region
	w.items = w.catalog.BuildItems(snapshot.Region, w.dynamic, snapshot.Items)
	items := append([]models.Item(nil), w.items...)
	w.mu.Unlock()

	w.dispatcher.Seed(items)

	w.logger.Info().
		Str("region", snapshot.Region).
		Time("observedAt", snapshot.ObservedAt).
		Int("items", len(items)).
		Msg("snapshot restored")

	return nil
}

// Start marks polling as active.
func (w *Watcher) Start() {
	w.mu.Lock()
	w.active = true
	w.mu.Unlock()
}

// Stop marks polling as inactive. Running cycle is cancelled and its results
// are discarded.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.active = false
	w.generation++
	w.cancelLocked()
	w.mu.Unlock()
}

// Active reports whether polling is active.
func (w *Watcher) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Region returns currently watched region.
func (w *Watcher) Region() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.region
}

// State returns copy of current state.
func (w *Watcher) State() models.State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return models.State{
		Region:  w.region,
		Items:   append([]models.Item(nil), w.items...),
		Loading: w.loading,
		Active:  w.active,
		Err:     w.err,
	}
}

// Trigger runs poll cycle. It returns platform.ErrCycleInProgress without doing
// anything if other cycle is running.
func (w *Watcher) Trigger(ctx context.Context) error {
	if !w.cycle.TryLock() {
		w.logger.Debug().Msg("poll cycle in progress, dropping trigger")
		return platform.ErrCycleInProgress
	}
	defer w.cycle.Unlock()

	return w.runCycle(ctx)
}

// SetRegion replaces items with items of region. Running cycle is cancelled and
// its results are discarded. If polling is active, new cycle is started for region.
func (w *Watcher) SetRegion(ctx context.Context, region string) error {
	if !w.catalog.ValidRegion(region) {
		return fmt.Errorf("can't switch to region %q: %w", region, platform.ErrUnknownRegion)
	}

	w.mu.Lock()
	if region == w.region {
		w.mu.Unlock()
		return nil
	}
	w.generation++
	w.cancelLocked()
	w.region = region
	w.items = w.catalog.BuildItems(region, w.dynamic, w.items)
	w.loading = false
	w.err = nil
	restart := w.active && w.root.Err() == nil
	if restart {
		w.bg.Add(1)
	}
	w.mu.Unlock()

	w.logger.Info().Str("region", region).Msg("region changed")

	w.save(ctx)

	if restart {
		go func() {
			defer w.bg.Done()
			w.restart()
		}()
	}

	return nil
}

// SetIncluded changes inclusion of item. Change made during cycle is kept when
// the cycle commits.
func (w *Watcher) SetIncluded(ctx context.Context, identifier string, included bool) error {
	w.mu.Lock()
	_, ix, ok := lo.FindIndexOf(w.items, func(i models.Item) bool { return i.Identifier == identifier })
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("can't change inclusion of %q: %w", identifier, platform.ErrUnknownItem)
	}
	w.items[ix].Included = included
	w.mu.Unlock()

	w.save(ctx)

	return nil
}

// UpdateSKUs rebuilds items with dynamic SKU table. Observations are kept.
func (w *Watcher) UpdateSKUs(table models.SKUTable) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.dynamic = table
	w.skuVersion++
	w.items = w.catalog.BuildItems(w.region, table, w.items)
}

// Close cancels running cycles and waits for background cycles to finish.
// Region changes after Close don't start new cycles.
func (w *Watcher) Close() {
	w.mu.Lock()
	w.shutdown()
	w.mu.Unlock()

	w.bg.Wait()
}

// restart runs cycle for new region once cancelled cycle released the lock.
func (w *Watcher) restart() {
	w.cycle.Lock()
	defer w.cycle.Unlock()

	if err := w.runCycle(w.root); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Warn().Err(err).Msg("poll cycle after region change failed")
	}
}

// runCycle polls current items and commits results. It must hold cycle lock.
func (w *Watcher) runCycle(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(w.root, cancel)
	defer stop()

	w.mu.Lock()
	w.trigger++
	trigger := w.trigger
	generation := w.generation
	skuVersion := w.skuVersion
	region := w.region
	items := append([]models.Item(nil), w.items...)
	w.cancelCycle = cancel
	w.loading = true
	w.mu.Unlock()

	started := time.Now()
	results, err := w.poller.Poll(ctx, items, region, trigger)

	w.mu.Lock()
	if generation != w.generation {
		w.mu.Unlock()
		w.logger.Debug().Uint64("trigger", trigger).Msg("discarding results of stale poll cycle")
		return nil
	}
	w.cancelCycle = nil
	w.loading = false
	if err != nil {
		w.err = err
		w.mu.Unlock()
		w.logger.Warn().Err(err).Uint64("trigger", trigger).Msg("poll cycle failed")
		return err
	}

	included := lo.SliceToMap(w.items, func(i models.Item) (string, bool) { return i.Identifier, i.Included })
	for ix := range results {
		if inc, ok := included[results[ix].Identifier]; ok {
			results[ix].Included = inc
		}
	}
	if skuVersion != w.skuVersion {
		results = w.catalog.BuildItems(region, w.dynamic, results)
	}
	w.items = results
	w.err = nil
	committed := append([]models.Item(nil), results...)
	w.mu.Unlock()

	w.logger.Info().
		Uint64("trigger", trigger).
		Str("region", region).
		Int("available", lo.CountBy(committed, func(i models.Item) bool { return i.Available })).
		Int("unreachable", lo.CountBy(committed, func(i models.Item) bool { return i.Included && !i.APIReachable })).
		Dur("took", time.Since(started)).
		Msg("poll cycle committed")

	w.dispatcher.Dispatch(ctx, committed)
	w.save(ctx)

	return nil
}

// save stores current state as the most recent snapshot. Failures are only logged.
func (w *Watcher) save(ctx context.Context) {
	if w.store == nil {
		return
	}

	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	w.mu.Lock()
	snapshot := models.Snapshot{
		Region:     w.region,
		Items:      append([]models.Item(nil), w.items...),
		ObservedAt: time.Now().UTC(),
	}
	w.mu.Unlock()

	if err := w.store.SaveSnapshot(context.WithoutCancel(ctx), snapshot); err != nil {
		w.logger.Error().Err(err).Msg("can't save snapshot")
	}
}

func (w *Watcher) cancelLocked() {
	if w.cancelCycle != nil {
		w.cancelCycle()
		w.cancelCycle = nil
	}
	w.loading = false
}

// WithStore sets Watcher's snapshot store.
func WithStore(s Store) Option {
	return func(w *Watcher) {
		w.store = s
	}
}

// WithLogger sets Watcher's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}
