package commander

import (
	"context"
	"encoding/json"
	"fmt"
)

//go:generate mockery --name Sender --filename sender.go

// Sender sends messages.
type Sender interface {
	Send(context.Context, []byte) error
}

// Commander sends watcher commands.
type Commander struct {
	sender Sender
}

// NewCommander returns new Commander using provided sender for sending messages.
func NewCommander(sender Sender) Commander {
	return Commander{
		sender: sender,
	}
}

// SendStartCommand sends command starting periodic polling.
func (c Commander) SendStartCommand(ctx context.Context) error {
	return c.send(ctx, Command{Type: CommandStart})
}

// SendStopCommand sends command stopping periodic polling.
func (c Commander) SendStopCommand(ctx context.Context) error {
	return c.send(ctx, Command{Type: CommandStop})
}

// SendPollCommand sends command running poll cycle now.
func (c Commander) SendPollCommand(ctx context.Context) error {
	return c.send(ctx, Command{Type: CommandPoll})
}

// SendRegionCommand sends command switching watched region.
func (c Commander) SendRegionCommand(ctx context.Context, region string) error {
	return c.send(ctx, Command{Type: CommandRegion, Region: region})
}

// SendIncludeCommand sends command changing inclusion of item with provided identifier.
func (c Commander) SendIncludeCommand(ctx context.Context, identifier string, included bool) error {
	return c.send(ctx, Command{Type: CommandInclude, Identifier: identifier, Included: &included})
}

// SendSettingsCommand sends partial settings update.
func (c Commander) SendSettingsCommand(ctx context.Context, settings Settings) error {
	return c.send(ctx, Command{Type: CommandSettings, Settings: &settings})
}

// SendTestCommand sends command playing single test alert with provided message.
func (c Commander) SendTestCommand(ctx context.Context, message string) error {
	return c.send(ctx, Command{Type: CommandTest, Message: message})
}

// SendSpoofCommand sends command controlling spoofed responses.
func (c Commander) SendSpoofCommand(ctx context.Context, spoof Spoof) error {
	return c.send(ctx, Command{Type: CommandSpoof, Spoof: &spoof})
}

// SendStatusCommand sends command reporting current watcher state.
func (c Commander) SendStatusCommand(ctx context.Context) error {
	return c.send(ctx, Command{Type: CommandStatus})
}

func (c Commander) send(ctx context.Context, cmd Command) error {
	cmdMsg, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("can't marshal %s command: %w", cmd.Type, err)
	}

	return c.sender.Send(ctx, cmdMsg)
}
