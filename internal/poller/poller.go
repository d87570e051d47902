package poller

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

//go:generate mockery --name Fetcher --filename fetcher.go

const (
	// NeverTriggered is trigger count of watcher which hasn't been started yet.
	NeverTriggered uint64 = 0

	defaultTimeout       = 3 * time.Second
	defaultParallelLimit = 8
)

// Fetcher fetches inventory documents.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// Decoder decodes inventory documents.
type Decoder interface {
	DecodeInventory(body io.Reader) (*models.Inventory, error)
}

// Resolver resolves per-region query endpoint of an item.
type Resolver interface {
	ResolveEndpoint(item models.Item, region string) (string, error)
}

// Clock provides times.
type Clock interface {
	// Now returns current UTC time.
	Now() time.Time
}

// Option is custom configuration of Poller.
type Option func(p *Poller)

// Poller runs poll cycles: one availability query per included item, joined and
// reconciled into a new item list.
type Poller struct {
	fetcher       Fetcher
	decoder       Decoder
	resolver      Resolver
	clock         Clock
	timeout       time.Duration
	parallelLimit int
	logger        *zerolog.Logger
}

// NewPoller returns new Poller.
func NewPoller(fetcher Fetcher, decoder Decoder, resolver Resolver, ops ...Option) *Poller {
	nop := zerolog.Nop()
	p := &Poller{
		fetcher:       fetcher,
		decoder:       decoder,
		resolver:      resolver,
		clock:         systemClock{},
		timeout:       defaultTimeout,
		parallelLimit: defaultParallelLimit,
		logger:        &nop,
	}

	for _, op := range ops {
		op(p)
	}

	return p
}

// Poll runs single poll cycle for items in region and returns reconciled items.
//
// Trigger equal to NeverTriggered returns items unchanged without any request.
// Per-item failures are recorded on the item itself, returned error means
// the whole cycle failed and its results must be discarded.
func (p *Poller) Poll(ctx context.Context, items []models.Item, region string, trigger uint64) ([]models.Item, error) {
	if trigger == NeverTriggered {
		return append([]models.Item(nil), items...), nil
	}

	cycleLogger := p.logger.With().
		Str("cycle", uuid.NewString()).
		Str("region", region).
		Uint64("trigger", trigger).
		Logger()

	results := make([]models.Item, len(items))

	var eg errgroup.Group
	eg.SetLimit(p.parallelLimit)

	for ix := range items {
		if !items[ix].Included {
			results[ix] = relabel(items[ix], region)
			continue
		}

		ix := ix
		eg.Go(func() error {
			results[ix] = p.pollItem(ctx, &cycleLogger, items[ix], region)
			return nil
		})
	}

	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("poll cycle interrupted: %w", err)
	}

	reconciled, err := reconcile(items, results)
	if err != nil {
		return nil, fmt.Errorf("can't reconcile poll cycle: %w", err)
	}

	cycleLogger.Debug().
		Int("polled", lo.CountBy(items, func(i models.Item) bool { return i.Included })).
		Int("available", lo.CountBy(reconciled, func(i models.Item) bool { return i.Available })).
		Msg("poll cycle finished")

	return reconciled, nil
}

func (p *Poller) pollItem(
	ctx context.Context,
	logger *zerolog.Logger,
	item models.Item,
	region string,
) (result models.Item) {
	itemLogger := logger.With().Str("item", item.Identifier).Logger()

	defer func() {
		if r := recover(); r != nil {
			itemLogger.Error().
				Interface("panic", r).
				Msg("item poll panicked")
			result = transportFailure(item, region)
		}
	}()

	endpoint, err := p.resolver.ResolveEndpoint(item, region)
	if err != nil {
		itemLogger.Warn().Err(err).Msg("can't resolve item endpoint")
		return transportFailure(item, region)
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := p.fetcher.Fetch(reqCtx, endpoint)
	if err != nil {
		itemLogger.Debug().Err(err).Str("endpoint", endpoint).Msg("can't fetch item inventory")
		return transportFailure(item, region)
	}
	defer body.Close()

	inventory, err := p.decoder.DecodeInventory(body)
	if err != nil {
		if reqCtx.Err() != nil {
			itemLogger.Debug().Err(err).Msg("item inventory read timed out")
			return transportFailure(item, region)
		}
		itemLogger.Debug().Err(err).Msg("can't decode item inventory")
		return malformed(item, region)
	}

	return classify(item, region, inventory, p.clock.Now())
}

// classify applies decoded inventory to item.
func classify(item models.Item, region string, inventory *models.Inventory, now time.Time) models.Item {
	if inventory == nil || len(inventory.Entries) == 0 || !inventory.Entries[0].HasActiveFlag {
		return malformed(item, region)
	}

	result := relabel(item, region)
	result.APIReachable = true
	result.APIError = false
	result.Available = lo.ContainsBy(inventory.Entries, func(e models.InventoryEntry) bool {
		return e.Active
	})
	result.ProductURL = lo.EmptyableToPtr(lo.FromPtr(inventory.Entries[0].ProductURL))

	if result.Available && (item.LastSeenAt == nil || now.After(*item.LastSeenAt)) {
		result.LastSeenAt = lo.ToPtr(now)
	}

	return result
}

func transportFailure(item models.Item, region string) models.Item {
	result := relabel(item, region)
	result.APIReachable = false
	result.APIError = true
	return result
}

func malformed(item models.Item, region string) models.Item {
	result := relabel(item, region)
	result.APIReachable = false
	result.APIError = false
	return result
}

func relabel(item models.Item, region string) models.Item {
	item.Region = region
	return item
}

// reconcile merges Included of pre-cycle items back onto cycle results.
func reconcile(items, results []models.Item) ([]models.Item, error) {
	if len(items) != len(results) {
		return nil, fmt.Errorf("got %d results for %d items", len(results), len(items))
	}

	if dup := lo.FindDuplicatesBy(items, func(i models.Item) string { return i.Identifier }); len(dup) > 0 {
		return nil, fmt.Errorf("duplicated item identifier %q", dup[0].Identifier)
	}

	included := lo.SliceToMap(items, func(i models.Item) (string, bool) { return i.Identifier, i.Included })

	reconciled := make([]models.Item, 0, len(results))
	for ix := range results {
		if results[ix].Identifier != items[ix].Identifier {
			return nil, fmt.Errorf("result %d belongs to %q instead of %q",
				ix, results[ix].Identifier, items[ix].Identifier)
		}
		result := results[ix]
		result.Included = included[result.Identifier]
		reconciled = append(reconciled, result)
	}

	return reconciled, nil
}

// WithClock sets Poller's custom Clock.
func WithClock(c Clock) Option {
	return func(p *Poller) {
		p.clock = c
	}
}

// WithTimeout sets timeout of single item query.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Poller) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithParallelLimit sets maximum number of concurrent item queries.
func WithParallelLimit(limit int) Option {
	return func(p *Poller) {
		if limit > 0 {
			p.parallelLimit = limit
		}
	}
}

// WithLogger sets Poller's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Poller) {
		p.logger = logger
	}
}
