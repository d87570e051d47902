package settings

import (
	"sync"
	"time"

	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/samber/lo"
)

// Bounds of user-configurable values.
const (
	MinRefreshInterval = 6 * time.Second
	MaxRefreshInterval = 31 * time.Second
	MinRepetitions     = 1
	MaxRepetitions     = 3
)

// Defaults returns settings used when nothing is configured.
func Defaults() models.Settings {
	return models.Settings{
		Volume:          0.5,
		Repetitions:     1,
		RefreshInterval: 21 * time.Second,
	}
}

// Normalize clamps settings into supported ranges.
func Normalize(s models.Settings) models.Settings {
	s.Volume = lo.Clamp(s.Volume, 0, 1)
	s.Repetitions = lo.Clamp(s.Repetitions, MinRepetitions, MaxRepetitions)
	s.RefreshInterval = lo.Clamp(s.RefreshInterval, MinRefreshInterval, MaxRefreshInterval)
	return s
}

// Store holds current settings. Readers always get the latest applied value,
// so changes take effect on the next read.
//
// It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	current  models.Settings
	onChange []func(models.Settings)
}

// NewStore returns Store with normalized initial settings.
func NewStore(initial models.Settings) *Store {
	return &Store{current: Normalize(initial)}
}

// Get returns current settings.
func (s *Store) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Apply replaces current settings and notifies subscribers.
func (s *Store) Apply(next models.Settings) models.Settings {
	next = Normalize(next)

	s.mu.Lock()
	s.current = next
	subscribers := append([]func(models.Settings){}, s.onChange...)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(next)
	}

	return next
}

// OnChange registers fn called after every Apply.
func (s *Store) OnChange(fn func(models.Settings)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// Volume returns current volume in range [0, 1].
func (s *Store) Volume() float64 {
	return s.Get().Volume
}

// Repetitions returns how many times alert sound is played.
func (s *Store) Repetitions() int {
	return s.Get().Repetitions
}

// APIAlarmEnabled reports whether API going down raises an alert.
func (s *Store) APIAlarmEnabled() bool {
	return s.Get().APIAlarmEnabled
}

// RefreshInterval returns interval between poll cycles.
func (s *Store) RefreshInterval() time.Duration {
	return s.Get().RefreshInterval
}

// ChatBotURL returns chat-bot endpoint, empty when not configured.
func (s *Store) ChatBotURL() string {
	return s.Get().ChatBotURL
}

// TopicName returns push topic, empty when not configured.
func (s *Store) TopicName() string {
	return s.Get().TopicName
}
