// Package spoof serves canned inventory responses instead of querying the upstream
// API. It is used to test alerts without waiting for real stock changes and is
// compiled out of production builds.
package spoof

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/MichalMitros/stock-watcher/internal/fetcher"
	"github.com/MichalMitros/stock-watcher/internal/platform/models"
)

const scheme = "spoof"

// ErrNotSupported is returned when spoofing is compiled out.
var ErrNotSupported = errors.New("spoofing is not supported by this build")

// Mode is canned response served for an item.
type Mode string

const (
	ModeAvailable   Mode = "available"
	ModeUnavailable Mode = "unavailable"
	// ModeMalformed serves well-formed JSON without inventory entries.
	ModeMalformed Mode = "malformed"
	// ModeError fails the request with non-200 status.
	ModeError Mode = "error"
)

// ParseMode returns mode named s.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAvailable, ModeUnavailable, ModeMalformed, ModeError:
		return m, nil
	default:
		return "", fmt.Errorf("unknown spoof mode %q", s)
	}
}

// Fetcher fetches inventory documents.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// Resolver resolves per-region query endpoint of an item.
type Resolver interface {
	ResolveEndpoint(item models.Item, region string) (string, error)
}

// Spoofer holds spoofing switch and canned response mode of every item.
// Items without mode are served as unavailable.
//
// It is safe for concurrent use.
type Spoofer struct {
	mu      sync.RWMutex
	enabled bool
	modes   map[string]Mode
}

// New returns disabled Spoofer.
func New() *Spoofer {
	return &Spoofer{modes: make(map[string]Mode)}
}

// SetEnabled switches spoofing on or off.
func (s *Spoofer) SetEnabled(enabled bool) error {
	if enabled && !Supported {
		return ErrNotSupported
	}

	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()

	return nil
}

// Enabled reports whether spoofing is on.
func (s *Spoofer) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SetMode sets canned response of item.
func (s *Spoofer) SetMode(identifier string, mode Mode) {
	s.mu.Lock()
	s.modes[identifier] = mode
	s.mu.Unlock()
}

// Toggle flips item between available and unavailable and returns new mode.
func (s *Spoofer) Toggle(identifier string) Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := ModeAvailable
	if s.modes[identifier] == ModeAvailable {
		next = ModeUnavailable
	}
	s.modes[identifier] = next

	return next
}

// Mode returns canned response mode of item.
func (s *Spoofer) Mode(identifier string) Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if mode, ok := s.modes[identifier]; ok {
		return mode
	}
	return ModeUnavailable
}

// Resolver returns resolver which points items to spoofed endpoints while spoofing
// is on and delegates to next otherwise.
func (s *Spoofer) Resolver(next Resolver) Resolver {
	return &resolver{spoofer: s, next: next}
}

// Fetcher returns fetcher which serves spoofed endpoints and delegates other
// requests to next.
func (s *Spoofer) Fetcher(next Fetcher) Fetcher {
	return &spoofFetcher{spoofer: s, next: next}
}

type resolver struct {
	spoofer *Spoofer
	next    Resolver
}

func (r *resolver) ResolveEndpoint(item models.Item, region string) (string, error) {
	if !r.spoofer.Enabled() {
		return r.next.ResolveEndpoint(item, region)
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     "inventory",
		Path:     "/" + url.PathEscape(item.Identifier),
		RawQuery: url.Values{"locale": {region}}.Encode(),
	}

	return u.String(), nil
}

type spoofFetcher struct {
	spoofer *Spoofer
	next    Fetcher
}

func (f *spoofFetcher) Fetch(ctx context.Context, endpoint string) (io.ReadCloser, error) {
	if !strings.HasPrefix(endpoint, scheme+"://") {
		return f.next.Fetch(ctx, endpoint)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("can't parse spoofed endpoint: %w", err)
	}

	identifier, err := url.PathUnescape(strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		return nil, fmt.Errorf("can't parse spoofed item: %w", err)
	}

	return cannedResponse(identifier, u.Query().Get("locale"), f.spoofer.Mode(identifier))
}

type cannedEntry struct {
	IsActive   string `json:"is_active"`
	ProductURL string `json:"product_url"`
	Price      string `json:"price"`
	FESKU      string `json:"fe_sku"`
	Locale     string `json:"locale"`
}

type cannedInventory struct {
	Success bool          `json:"success"`
	ListMap []cannedEntry `json:"listMap"`
}

func cannedResponse(identifier, region string, mode Mode) (io.ReadCloser, error) {
	inventory := cannedInventory{Success: true, ListMap: []cannedEntry{}}

	switch mode {
	case ModeError:
		return nil, fmt.Errorf("%w: spoofed failure of %s", fetcher.ErrStatusNotOK, identifier)
	case ModeAvailable, ModeUnavailable:
		inventory.ListMap = append(inventory.ListMap, cannedEntry{
			IsActive:   fmt.Sprint(mode == ModeAvailable),
			ProductURL: "https://store.spoof.test/" + url.PathEscape(identifier),
			Price:      "999.99",
			FESKU:      "SPOOF_" + identifier,
			Locale:     region,
		})
	}

	body, err := json.Marshal(inventory)
	if err != nil {
		return nil, fmt.Errorf("can't marshal spoofed response: %w", err)
	}

	return io.NopCloser(bytes.NewReader(body)), nil
}
