package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MichalMitros/stock-watcher/internal/platform"
	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/MichalMitros/stock-watcher/internal/platform/rabbitmq"
	"github.com/MichalMitros/stock-watcher/internal/player"
	"github.com/MichalMitros/stock-watcher/internal/spoof"
	"github.com/MichalMitros/stock-watcher/pkg/v1/commander"
	"github.com/rs/zerolog"
)

//go:generate mockery --name Watcher --filename watcher.go
//go:generate mockery --name Player --filename player.go

const defaultTestMessage = "test notification"

// Consumer consumes messages from queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler rabbitmq.HandlerFunc) (<-chan error, error)
}

// Watcher runs poll cycles.
type Watcher interface {
	Start()
	Stop()
	Trigger(ctx context.Context) error
	SetRegion(ctx context.Context, region string) error
	SetIncluded(ctx context.Context, identifier string, included bool) error
	State() models.State
}

// SettingsStore holds alert settings.
type SettingsStore interface {
	Get() models.Settings
	Apply(next models.Settings) models.Settings
}

// Player plays alerts.
type Player interface {
	Play(ctx context.Context, opts player.Options) bool
	Playing() bool
}

// Spoofer controls spoofed responses.
type Spoofer interface {
	SetEnabled(enabled bool) error
	SetMode(identifier string, mode spoof.Mode)
	Toggle(identifier string) spoof.Mode
}

// RMQHandler handles RMQ messages.
type RMQHandler struct {
	consumer Consumer
	watcher  Watcher
	settings SettingsStore
	player   Player
	spoofer  Spoofer
	logger   *zerolog.Logger
}

// NewHandler returns new RMQHandler.
func NewHandler(
	consumer Consumer,
	watcher Watcher,
	settings SettingsStore,
	p Player,
	spoofer Spoofer,
	logger *zerolog.Logger,
) *RMQHandler {
	return &RMQHandler{
		consumer: consumer,
		watcher:  watcher,
		settings: settings,
		player:   p,
		spoofer:  spoofer,
		logger:   logger,
	}
}

// Start starts consuming and handling watcher commands from RMQ.
func (h *RMQHandler) Start(ctx context.Context, queue string) error {
	errorsChan, err := h.consumer.Consume(ctx, queue, h.HandleMessage)
	if err != nil {
		return err
	}

	go func() {
		for err := range errorsChan {
			h.logger.Error().
				Err(err).
				Msg("can't handle message")
		}
	}()

	return nil
}

// HandleMessage decodes and executes single command.
func (h *RMQHandler) HandleMessage(ctx context.Context, message []byte) error {
	cmd, err := decodeMessage(message)
	if err != nil {
		return err
	}

	h.logger.Debug().
		Str("command", string(cmd.Type)).
		Msg("command received")

	switch cmd.Type {
	case commander.CommandStart:
		h.watcher.Start()
		return h.trigger(ctx)
	case commander.CommandStop:
		h.watcher.Stop()
		return nil
	case commander.CommandPoll:
		return h.trigger(ctx)
	case commander.CommandRegion:
		return h.watcher.SetRegion(ctx, cmd.Region)
	case commander.CommandInclude:
		if cmd.Included == nil {
			return errors.New("include command without inclusion flag")
		}
		return h.watcher.SetIncluded(ctx, cmd.Identifier, *cmd.Included)
	case commander.CommandSettings:
		return h.applySettings(cmd.Settings)
	case commander.CommandTest:
		return h.test(ctx, cmd.Message)
	case commander.CommandSpoof:
		return h.spoof(cmd.Spoof)
	case commander.CommandStatus:
		h.status()
		return nil
	default:
		return fmt.Errorf("unknown command type %q", cmd.Type)
	}
}

func (h *RMQHandler) trigger(ctx context.Context) error {
	err := h.watcher.Trigger(ctx)
	if errors.Is(err, platform.ErrCycleInProgress) {
		h.logger.Debug().Msg("poll cycle in progress, command skipped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("poll cycle failed: %w", err)
	}
	return nil
}

func (h *RMQHandler) applySettings(update *commander.Settings) error {
	if update == nil {
		return errors.New("settings command without settings")
	}

	next := h.settings.Get()
	if update.Volume != nil {
		next.Volume = *update.Volume
	}
	if update.Repetitions != nil {
		next.Repetitions = *update.Repetitions
	}
	if update.APIAlarmEnabled != nil {
		next.APIAlarmEnabled = *update.APIAlarmEnabled
	}
	if update.RefreshIntervalSeconds != nil {
		next.RefreshInterval = time.Duration(*update.RefreshIntervalSeconds) * time.Second
	}
	if update.ChatBotURL != nil {
		next.ChatBotURL = *update.ChatBotURL
	}
	if update.TopicName != nil {
		next.TopicName = *update.TopicName
	}

	applied := h.settings.Apply(next)

	h.logger.Info().
		Float64("volume", applied.Volume).
		Int("repetitions", applied.Repetitions).
		Bool("apiAlarm", applied.APIAlarmEnabled).
		Dur("refreshInterval", applied.RefreshInterval).
		Msg("settings applied")

	return nil
}

func (h *RMQHandler) test(ctx context.Context, message string) error {
	if message == "" {
		message = defaultTestMessage
	}

	if !h.player.Play(ctx, player.Options{ForceSingle: true, Message: message}) {
		h.logger.Info().Msg("alert is playing, test skipped")
	}

	return nil
}

func (h *RMQHandler) spoof(cmd *commander.Spoof) error {
	if cmd == nil {
		return errors.New("spoof command without spoof settings")
	}

	if cmd.Enabled != nil {
		if err := h.spoofer.SetEnabled(*cmd.Enabled); err != nil {
			return fmt.Errorf("can't switch spoofing: %w", err)
		}
	}

	if cmd.Identifier == "" {
		return nil
	}

	if cmd.Mode == "" {
		mode := h.spoofer.Toggle(cmd.Identifier)
		h.logger.Info().Str("item", cmd.Identifier).Str("mode", string(mode)).Msg("spoofed availability toggled")
		return nil
	}

	mode, err := spoof.ParseMode(cmd.Mode)
	if err != nil {
		return err
	}
	h.spoofer.SetMode(cmd.Identifier, mode)

	return nil
}

// status logs current watcher state, one line per item.
func (h *RMQHandler) status() {
	state := h.watcher.State()
	current := h.settings.Get()

	event := h.logger.Info().
		Str("region", state.Region).
		Bool("active", state.Active).
		Bool("loading", state.Loading).
		Bool("playing", h.player.Playing()).
		Dur("refreshInterval", current.RefreshInterval)
	if state.Err != nil {
		event = event.AnErr("cycleErr", state.Err)
	}
	event.Msg("watcher status")

	for _, item := range state.Items {
		itemEvent := h.logger.Info().
			Str("item", item.Identifier).
			Str("sku", item.SKU).
			Bool("included", item.Included).
			Bool("available", item.Available).
			Bool("apiReachable", item.APIReachable).
			Bool("apiError", item.APIError)
		if item.LastSeenAt != nil {
			itemEvent = itemEvent.Time("lastSeenAt", *item.LastSeenAt)
		}
		itemEvent.Msg("item status")
	}
}

func decodeMessage(msg []byte) (*commander.Command, error) {
	var cmd commander.Command
	err := json.Unmarshal(msg, &cmd)
	if err != nil {
		return nil, fmt.Errorf("can't decode command: %w", err)
	}

	return &cmd, err
}
