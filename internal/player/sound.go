package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	volumePlaceholder = "{volume}"
	filePlaceholder   = "{file}"
)

// Bell rings terminal bell and waits for fixed duration.
type Bell struct {
	out      io.Writer
	duration time.Duration
}

// NewBell returns new Bell writing to out.
func NewBell(out io.Writer, duration time.Duration) *Bell {
	return &Bell{out: out, duration: duration}
}

// Play rings the bell. Silent volume skips the bell but keeps the duration.
func (b *Bell) Play(ctx context.Context, volume float64) error {
	if volume > 0 {
		if _, err := io.WriteString(b.out, "\a"); err != nil {
			return fmt.Errorf("can't ring bell: %w", err)
		}
	}

	timer := time.NewTimer(b.duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Command plays sound file with external player process, e.g.
// "paplay --volume {volume} {file}". Volume is passed in 0-65536 range.
type Command struct {
	args []string
	file string
}

// NewCommand returns new Command for command line template.
func NewCommand(template, file string) (*Command, error) {
	args := strings.Fields(template)
	if len(args) == 0 {
		return nil, errors.New("sound command is empty")
	}
	return &Command{args: args, file: file}, nil
}

// Play runs player process and waits for it to exit.
func (c *Command) Play(ctx context.Context, volume float64) error {
	args := c.expand(volume)

	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("can't run sound command: %w: %s", err, strings.TrimSpace(string(out)))
	}

	return nil
}

func (c *Command) expand(volume float64) []string {
	r := strings.NewReplacer(
		volumePlaceholder, strconv.Itoa(int(volume*65536)),
		filePlaceholder, c.file,
	)

	args := make([]string, 0, len(c.args))
	for _, arg := range c.args {
		args = append(args, r.Replace(arg))
	}

	return args
}
