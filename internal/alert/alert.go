// Package alert detects availability transitions between poll cycles and plays
// alerts for them.
package alert

import (
	"context"
	"fmt"
	"sync"

	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/MichalMitros/stock-watcher/internal/player"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
)

//go:generate mockery --name Player --filename player.go

// Scope decides how transition history is keyed.
type Scope string

const (
	// ScopeGlobal keys history by item identifier, so it survives region switches.
	ScopeGlobal Scope = "global"
	// ScopeRegion keys history by identifier and region.
	ScopeRegion Scope = "region"
)

// ParseScope returns scope named s. Empty name is ScopeGlobal.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeGlobal:
		return ScopeGlobal, nil
	case ScopeRegion:
		return ScopeRegion, nil
	default:
		return "", fmt.Errorf("unknown alert scope %q", s)
	}
}

// Player plays alerts.
type Player interface {
	Play(ctx context.Context, opts player.Options) bool
}

// Settings provides current alert settings.
type Settings interface {
	APIAlarmEnabled() bool
}

// LinkOpener opens purchase links.
type LinkOpener interface {
	Open(url string) error
}

// BrowserOpener opens links in default browser.
type BrowserOpener struct{}

// Open opens url in default browser.
func (BrowserOpener) Open(url string) error {
	return browser.OpenURL(url)
}

type observation struct {
	available bool
	reachable bool
	region    string
}

// Detector compares every cycle's items with previous observations and fires alerts
// once per transition.
type Detector struct {
	scope    Scope
	player   Player
	settings Settings
	opener   LinkOpener
	logger   *zerolog.Logger

	mu   sync.Mutex
	prev map[string]observation

	plays sync.WaitGroup
}

// NewDetector returns new Detector. Opener may be nil to disable opening links.
func NewDetector(scope Scope, p Player, settings Settings, opener LinkOpener, logger *zerolog.Logger) *Detector {
	return &Detector{
		scope:    scope,
		player:   p,
		settings: settings,
		opener:   opener,
		logger:   logger,
		prev:     make(map[string]observation),
	}
}

// Dispatch records items observed in a committed cycle and plays alerts for their
// transitions. Alerts are played in background one after another, returned slice
// lists all of them in item order.
func (d *Detector) Dispatch(ctx context.Context, items []models.Item) []models.Alert {
	alerts := d.detect(items)
	if len(alerts) == 0 {
		return nil
	}

	d.plays.Add(1)
	go func() {
		defer d.plays.Done()
		d.play(context.WithoutCancel(ctx), alerts)
	}()

	return alerts
}

// Seed records items as observed without alerting, e.g. items restored on startup.
func (d *Detector) Seed(items []models.Item) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, item := range items {
		d.prev[d.key(item)] = observation{
			available: item.Available,
			reachable: item.APIReachable,
			region:    item.Region,
		}
	}
}

// Wait blocks until all alerts dispatched so far were played.
func (d *Detector) Wait() {
	d.plays.Wait()
}

func (d *Detector) detect(items []models.Item) []models.Alert {
	apiAlarm := d.settings.APIAlarmEnabled()

	d.mu.Lock()
	defer d.mu.Unlock()

	var alerts []models.Alert
	for _, item := range items {
		key := d.key(item)
		prev, seen := d.prev[key]
		d.prev[key] = observation{
			available: item.Available,
			reachable: item.APIReachable,
			region:    item.Region,
		}

		if !item.Included {
			continue
		}

		if item.Available && (!seen || !prev.available) {
			alerts = append(alerts, models.Alert{
				Kind:    models.AlertStock,
				Item:    item,
				Message: fmt.Sprintf("%s is available in %s", item.Identifier, item.Region),
			})
		}

		if apiAlarm && seen && prev.reachable && !item.APIReachable && !item.APIError && prev.region == item.Region {
			alerts = append(alerts, models.Alert{
				Kind:    models.AlertAPIDown,
				Item:    item,
				Message: fmt.Sprintf("%s inventory API stopped responding in %s", item.Identifier, item.Region),
			})
		}
	}

	return alerts
}

func (d *Detector) play(ctx context.Context, alerts []models.Alert) {
	for _, a := range alerts {
		alertLogger := d.logger.With().
			Str("item", a.Item.Identifier).
			Str("region", a.Item.Region).
			Str("kind", string(a.Kind)).
			Logger()

		alertLogger.Info().Msg(a.Message)

		if a.Kind == models.AlertStock && d.opener != nil && a.Item.ProductURL != nil {
			if err := d.opener.Open(*a.Item.ProductURL); err != nil {
				alertLogger.Warn().Err(err).Msg("can't open product link")
			}
		}

		if !d.player.Play(ctx, player.Options{Message: a.Message}) {
			alertLogger.Debug().Msg("alert skipped, other alert is playing")
		}
	}
}

func (d *Detector) key(item models.Item) string {
	if d.scope == ScopeRegion {
		return item.Identifier + "@" + item.Region
	}
	return item.Identifier
}
