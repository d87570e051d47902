package watcher_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MichalMitros/stock-watcher/internal/catalog"
	"github.com/MichalMitros/stock-watcher/internal/platform"
	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/MichalMitros/stock-watcher/internal/watcher"
	"github.com/MichalMitros/stock-watcher/internal/watcher/mocks"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
baseEndpoint: https://inventory.test/v1?skus={sku}
defaultRegion: de-de
regions:
  - {name: Germany, code: de-de}
  - {name: Sweden, code: sv-se}
products:
  - {identifier: "5090", defaultSku: SKU590, included: true}
  - {identifier: "5080", defaultSku: SKU580, included: true}
  - {identifier: "4090", defaultSku: SKU490}
`

type pollFunc func(ctx context.Context, items []models.Item, region string, trigger uint64) ([]models.Item, error)

func (f pollFunc) Poll(ctx context.Context, items []models.Item, region string, trigger uint64) ([]models.Item, error) {
	return f(ctx, items, region, trigger)
}

// markAvailable is poller which reports every included item as available.
func markAvailable(_ context.Context, items []models.Item, region string, _ uint64) ([]models.Item, error) {
	return lo.Map(items, func(i models.Item, _ int) models.Item {
		i.Region = region
		if i.Included {
			i.APIReachable = true
			i.Available = true
		}
		return i
	}), nil
}

// blockingPoller blocks every cycle until released or cancelled.
type blockingPoller struct {
	started chan string
	release chan struct{}
}

func newBlockingPoller() *blockingPoller {
	return &blockingPoller{
		started: make(chan string, 10),
		release: make(chan struct{}),
	}
}

func (p *blockingPoller) Poll(ctx context.Context, items []models.Item, region string, trigger uint64) ([]models.Item, error) {
	p.started <- region
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("poll cycle interrupted: %w", ctx.Err())
	case <-p.release:
		return markAvailable(ctx, items, region, trigger)
	}
}

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.Load(strings.NewReader(testCatalog))
	require.NoError(t, err, "should load test catalog")

	return cat
}

func newWatcher(t *testing.T, p watcher.Poller, d watcher.Dispatcher, ops ...watcher.Option) *watcher.Watcher {
	t.Helper()

	w, err := watcher.NewWatcher(p, newCatalog(t), d, "de-de", ops...)
	require.NoError(t, err, "should create watcher")
	t.Cleanup(w.Close)

	return w
}

func identifiers(items []models.Item) []string {
	return lo.Map(items, func(i models.Item, _ int) string { return i.Identifier })
}

func TestUnitNewWatcherUnknownRegion(t *testing.T) {
	_, err := watcher.NewWatcher(pollFunc(markAvailable), newCatalog(t), mocks.NewDispatcher(t), "xx-xx")

	require.ErrorIs(t, err, platform.ErrUnknownRegion, "should reject unknown region")
}

func TestUnitInitialState(t *testing.T) {
	w := newWatcher(t, pollFunc(markAvailable), mocks.NewDispatcher(t))

	state := w.State()

	assert.Equal(t, "de-de", state.Region, "should watch initial region")
	assert.Equal(t, []string{"5090", "5080", "4090"}, identifiers(state.Items), "should build catalog items")
	assert.False(t, state.Loading, "shouldn't be loading")
	assert.False(t, state.Active, "shouldn't be active")
	assert.NoError(t, state.Err, "shouldn't have error")
}

func TestUnitTriggerCommits(t *testing.T) {
	dispatcher := mocks.NewDispatcher(t)
	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(items []models.Item) bool {
		return len(items) == 3 && items[0].Available && items[1].Available && !items[2].Available
	})).Return(nil).Once()

	var triggers []uint64
	p := pollFunc(func(ctx context.Context, items []models.Item, region string, trigger uint64) ([]models.Item, error) {
		triggers = append(triggers, trigger)
		return markAvailable(ctx, items, region, trigger)
	})

	w := newWatcher(t, p, dispatcher)

	require.NoError(t, w.Trigger(context.TODO()), "shouldn't return error")

	state := w.State()
	assert.True(t, state.Items[0].Available, "should commit results")
	assert.False(t, state.Items[2].Included, "should keep inclusion")
	assert.False(t, state.Loading, "shouldn't be loading")
	assert.Equal(t, []uint64{1}, triggers, "should start counting triggers from 1")
}

func TestUnitTriggerOverlapDropped(t *testing.T) {
	dispatcher := mocks.NewDispatcher(t)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Once()

	p := newBlockingPoller()
	w := newWatcher(t, p, dispatcher)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, w.Trigger(context.TODO()), "first trigger should run")
	}()

	<-p.started
	assert.True(t, w.State().Loading, "should be loading during cycle")
	require.ErrorIs(t, w.Trigger(context.TODO()), platform.ErrCycleInProgress, "should drop overlapping trigger")

	close(p.release)
	wg.Wait()

	assert.False(t, w.State().Loading, "shouldn't be loading after cycle")
}

func TestUnitIncludedChangedDuringCycle(t *testing.T) {
	dispatcher := mocks.NewDispatcher(t)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Once()

	p := newBlockingPoller()
	w := newWatcher(t, p, dispatcher)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, w.Trigger(context.TODO()), "trigger should run")
	}()

	<-p.started
	require.NoError(t, w.SetIncluded(context.TODO(), "4090", true), "should include item")
	require.NoError(t, w.SetIncluded(context.TODO(), "5090", false), "should exclude item")
	close(p.release)
	wg.Wait()

	items := w.State().Items
	assert.False(t, items[0].Included, "should keep exclusion made during cycle")
	assert.True(t, items[0].Available, "should commit results of excluded item")
	assert.True(t, items[2].Included, "should keep inclusion made during cycle")
}

func TestUnitSetIncludedUnknownItem(t *testing.T) {
	w := newWatcher(t, pollFunc(markAvailable), mocks.NewDispatcher(t))

	require.ErrorIs(t, w.SetIncluded(context.TODO(), "3090", true), platform.ErrUnknownItem, "should reject unknown item")
}

func TestUnitSetRegion(t *testing.T) {
	w := newWatcher(t, pollFunc(markAvailable), mocks.NewDispatcher(t))

	require.ErrorIs(t, w.SetRegion(context.TODO(), "xx-xx"), platform.ErrUnknownRegion, "should reject unknown region")
	require.NoError(t, w.SetIncluded(context.TODO(), "4090", true), "should include item")
	require.NoError(t, w.SetRegion(context.TODO(), "sv-se"), "should switch region")

	state := w.State()
	assert.Equal(t, "sv-se", state.Region, "should switch region")
	for _, item := range state.Items {
		assert.Equal(t, "sv-se", item.Region, "should relabel items")
	}
	assert.True(t, state.Items[2].Included, "should carry inclusion to new region")
}

func TestUnitRegionChangeDiscardsRunningCycle(t *testing.T) {
	committed := make(chan []models.Item, 2)
	dispatcher := mocks.NewDispatcher(t)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			committed <- args.Get(1).([]models.Item)
		}).
		Return(nil).
		Once()

	p := newBlockingPoller()
	w := newWatcher(t, p, dispatcher)
	w.Start()

	done := make(chan error, 1)
	go func() {
		done <- w.Trigger(context.TODO())
	}()

	require.Equal(t, "de-de", <-p.started, "should poll initial region")
	require.NoError(t, w.SetRegion(context.TODO(), "sv-se"), "should switch region")
	require.NoError(t, <-done, "cancelled cycle shouldn't report error")

	require.Equal(t, "sv-se", <-p.started, "should restart cycle for new region")
	close(p.release)

	select {
	case items := <-committed:
		for _, item := range items {
			assert.Equal(t, "sv-se", item.Region, "should commit only new region")
		}
	case <-time.After(time.Second):
		t.Fatal("restarted cycle wasn't committed")
	}

	w.Close()
	state := w.State()
	assert.Equal(t, "sv-se", state.Region, "should watch new region")
	assert.NoError(t, state.Err, "shouldn't report cancelled cycle")
}

func TestUnitStopDiscardsRunningCycle(t *testing.T) {
	p := newBlockingPoller()
	w := newWatcher(t, p, mocks.NewDispatcher(t))
	w.Start()

	done := make(chan error, 1)
	go func() {
		done <- w.Trigger(context.TODO())
	}()

	<-p.started
	w.Stop()

	require.NoError(t, <-done, "cancelled cycle shouldn't report error")
	state := w.State()
	assert.False(t, state.Active, "should be inactive")
	assert.False(t, state.Loading, "shouldn't be loading")
	assert.NoError(t, state.Err, "shouldn't report cancelled cycle")
}

func TestUnitCycleError(t *testing.T) {
	errCycle := errors.New("duplicated item identifier")
	fail := true
	p := pollFunc(func(ctx context.Context, items []models.Item, region string, trigger uint64) ([]models.Item, error) {
		if fail {
			return nil, errCycle
		}
		return markAvailable(ctx, items, region, trigger)
	})

	dispatcher := mocks.NewDispatcher(t)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Once()

	w := newWatcher(t, p, dispatcher)
	before := w.State().Items

	require.ErrorIs(t, w.Trigger(context.TODO()), errCycle, "should return cycle error")
	state := w.State()
	assert.ErrorIs(t, state.Err, errCycle, "should expose cycle error")
	assert.Equal(t, before, state.Items, "should keep items of failed cycle")

	fail = false
	require.NoError(t, w.Trigger(context.TODO()), "shouldn't return error")
	assert.NoError(t, w.State().Err, "should clear error after successful cycle")
}

func TestUnitUpdateSKUs(t *testing.T) {
	dispatcher := mocks.NewDispatcher(t)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Once()

	p := newBlockingPoller()
	w := newWatcher(t, p, dispatcher)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, w.Trigger(context.TODO()), "trigger should run")
	}()

	<-p.started
	w.UpdateSKUs(models.SKUTable{"de-de": {"5090": {SKU: "NEW590"}}})
	close(p.release)
	wg.Wait()

	items := w.State().Items
	assert.Equal(t, "NEW590", items[0].SKU, "should apply sku refreshed during cycle")
	assert.Equal(t, "https://inventory.test/v1?skus=NEW590", items[0].QueryEndpoint, "should rebuild endpoint")
	assert.True(t, items[0].Available, "should keep observations")
}

func TestUnitRestore(t *testing.T) {
	seen := time.Date(2025, time.January, 30, 14, 0, 0, 0, time.UTC)
	snapshot := &models.Snapshot{
		Region: "sv-se",
		Items: []models.Item{
			{Identifier: "5090", Included: false, Region: "sv-se", Available: true, APIReachable: true, LastSeenAt: &seen},
			{Identifier: "4090", Included: true, Region: "sv-se"},
		},
		ObservedAt: seen,
	}

	store := mocks.NewStore(t)
	store.On("LoadSnapshot", mock.Anything).Return(snapshot, nil).Once()

	dispatcher := mocks.NewDispatcher(t)
	dispatcher.On("Seed", mock.MatchedBy(func(items []models.Item) bool {
		return len(items) == 3 && items[0].Available
	})).Once()

	w := newWatcher(t, pollFunc(markAvailable), dispatcher, watcher.WithStore(store))

	require.NoError(t, w.Restore(context.TODO()), "should restore snapshot")

	state := w.State()
	assert.Equal(t, "sv-se", state.Region, "should restore region")
	assert.False(t, state.Items[0].Included, "should restore inclusion")
	assert.Equal(t, &seen, state.Items[0].LastSeenAt, "should restore observations")
	assert.True(t, state.Items[1].Included, "should keep default inclusion of missing item")
	assert.True(t, state.Items[2].Included, "should restore inclusion")
}

func TestUnitRestoreWithoutSnapshot(t *testing.T) {
	store := mocks.NewStore(t)
	store.On("LoadSnapshot", mock.Anything).Return(nil, nil).Once()

	w := newWatcher(t, pollFunc(markAvailable), mocks.NewDispatcher(t), watcher.WithStore(store))

	require.NoError(t, w.Restore(context.TODO()), "shouldn't return error")
	assert.Equal(t, "de-de", w.State().Region, "should keep initial region")
}

func TestUnitCommitSavesSnapshot(t *testing.T) {
	store := mocks.NewStore(t)
	store.On("SaveSnapshot", mock.Anything, mock.MatchedBy(func(s models.Snapshot) bool {
		return s.Region == "de-de" && len(s.Items) == 3 && s.Items[0].Available && !s.ObservedAt.IsZero()
	})).Return(errors.New("connection refused")).Once()

	dispatcher := mocks.NewDispatcher(t)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Once()

	w := newWatcher(t, pollFunc(markAvailable), dispatcher, watcher.WithStore(store))

	require.NoError(t, w.Trigger(context.TODO()), "store failure shouldn't fail cycle")
}

// gatedStore holds the first save until released and records overlapping saves.
type gatedStore struct {
	entered chan struct{}
	release chan struct{}

	mu       sync.Mutex
	calls    int
	inFlight int
	overlap  bool
	saved    []models.Snapshot
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *gatedStore) SaveSnapshot(_ context.Context, snapshot models.Snapshot) error {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.inFlight++
	s.overlap = s.overlap || s.inFlight > 1
	s.mu.Unlock()

	if call == 1 {
		close(s.entered)
		<-s.release
	}

	s.mu.Lock()
	s.inFlight--
	s.saved = append(s.saved, snapshot)
	s.mu.Unlock()

	return nil
}

func (s *gatedStore) LoadSnapshot(context.Context) (*models.Snapshot, error) {
	return nil, nil
}

func (s *gatedStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestUnitSavesDontOverlap(t *testing.T) {
	store := newGatedStore()
	w := newWatcher(t, pollFunc(markAvailable), mocks.NewDispatcher(t), watcher.WithStore(store))

	first := make(chan error, 1)
	go func() { first <- w.SetIncluded(context.TODO(), "5090", false) }()
	<-store.entered

	second := make(chan error, 1)
	go func() { second <- w.SetIncluded(context.TODO(), "4090", true) }()

	assert.Never(t, func() bool { return store.Calls() > 1 }, 100*time.Millisecond, 10*time.Millisecond,
		"shouldn't start next save before previous finished",
	)

	close(store.release)
	require.NoError(t, <-first, "shouldn't return error")
	require.NoError(t, <-second, "shouldn't return error")

	require.Len(t, store.saved, 2, "should save every change")
	assert.False(t, store.overlap, "shouldn't run saves concurrently")

	last := store.saved[1]
	assert.False(t, last.Items[0].Included, "last snapshot should contain first change")
	assert.True(t, last.Items[2].Included, "last snapshot should contain second change")
}

func TestUnitSetRegionAfterClose(t *testing.T) {
	poller := pollFunc(func(context.Context, []models.Item, string, uint64) ([]models.Item, error) {
		t.Error("shouldn't poll after close")
		return nil, nil
	})
	w := newWatcher(t, poller, mocks.NewDispatcher(t))

	w.Start()
	w.Close()

	require.NoError(t, w.SetRegion(context.TODO(), "sv-se"), "shouldn't return error")
	w.Close()

	assert.Equal(t, "sv-se", w.Region(), "should switch region")
}
