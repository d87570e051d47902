// Package player plays local audio alerts and pushes alert messages to notification
// channels. Only one playback sequence runs at a time.
package player

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

//go:generate mockery --name Sound --filename sound.go
//go:generate mockery --name Notifier --filename notifier.go

// Sound plays alert sound once and blocks until it finished.
type Sound interface {
	Play(ctx context.Context, volume float64) error
}

// Notifier sends alert message to single notification channel.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	Name() string
}

// Settings provides current alert settings.
type Settings interface {
	Volume() float64
	Repetitions() int
}

// Options of single Play call.
type Options struct {
	// ForceSingle plays sound once regardless of configured repetitions.
	ForceSingle bool
	// Message is pushed to notification channels when not empty.
	Message string
}

// Player plays alerts.
type Player struct {
	sound     Sound
	notifiers []Notifier
	settings  Settings
	logger    *zerolog.Logger

	playing atomic.Bool
	sends   sync.WaitGroup
}

// NewPlayer returns new Player.
func NewPlayer(sound Sound, settings Settings, logger *zerolog.Logger, notifiers ...Notifier) *Player {
	return &Player{
		sound:     sound,
		notifiers: notifiers,
		settings:  settings,
		logger:    logger,
	}
}

// Play pushes message to notification channels and plays alert sound.
//
// It returns false without doing anything when other sequence is still playing.
// Sound and notification failures are only logged.
func (p *Player) Play(ctx context.Context, opts Options) bool {
	if !p.playing.CompareAndSwap(false, true) {
		p.logger.Debug().Msg("alert already playing, skipping")
		return false
	}
	defer p.playing.Store(false)

	if opts.Message != "" {
		p.send(ctx, opts.Message)
	}

	repetitions := 1
	if !opts.ForceSingle {
		repetitions = p.settings.Repetitions()
	}

	for i := 0; i < repetitions; i++ {
		if ctx.Err() != nil {
			return true
		}
		if err := p.sound.Play(ctx, p.settings.Volume()); err != nil {
			p.logger.Warn().
				Err(err).
				Int("repetition", i+1).
				Msg("can't play alert sound")
		}
		// repetitions can be lowered while playing
		if !opts.ForceSingle {
			repetitions = min(repetitions, p.settings.Repetitions())
		}
	}

	return true
}

// Playing reports whether playback sequence is in progress.
func (p *Player) Playing() bool {
	return p.playing.Load()
}

// Wait blocks until all pending notification sends finished.
func (p *Player) Wait() {
	p.sends.Wait()
}

// send fires message to every channel without waiting for results.
func (p *Player) send(ctx context.Context, message string) {
	detached := context.WithoutCancel(ctx)

	for _, n := range p.notifiers {
		n := n
		p.sends.Add(1)
		go func() {
			defer p.sends.Done()
			if err := n.Notify(detached, message); err != nil {
				p.logger.Warn().
					Err(err).
					Str("channel", n.Name()).
					Msg("can't send notification")
			}
		}()
	}
}
