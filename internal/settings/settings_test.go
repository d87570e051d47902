package settings_test

import (
	"testing"
	"time"

	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/MichalMitros/stock-watcher/internal/settings"
	"github.com/stretchr/testify/assert"
)

func TestUnitNormalize(t *testing.T) {
	tests := map[string]struct {
		in   models.Settings
		want models.Settings
	}{
		"defaults unchanged": {
			in:   settings.Defaults(),
			want: settings.Defaults(),
		},
		"too low": {
			in:   models.Settings{Volume: -1, Repetitions: 0, RefreshInterval: time.Second},
			want: models.Settings{Volume: 0, Repetitions: 1, RefreshInterval: 6 * time.Second},
		},
		"too high": {
			in:   models.Settings{Volume: 2, Repetitions: 10, RefreshInterval: time.Minute},
			want: models.Settings{Volume: 1, Repetitions: 3, RefreshInterval: 31 * time.Second},
		},
		"endpoints kept": {
			in: models.Settings{Volume: 0.3, Repetitions: 2, RefreshInterval: 10 * time.Second,
				APIAlarmEnabled: true, ChatBotURL: "https://bot.test", TopicName: "gpu"},
			want: models.Settings{Volume: 0.3, Repetitions: 2, RefreshInterval: 10 * time.Second,
				APIAlarmEnabled: true, ChatBotURL: "https://bot.test", TopicName: "gpu"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, settings.Normalize(tt.in), "should normalize settings")
		})
	}
}

func TestUnitStoreApply(t *testing.T) {
	store := settings.NewStore(settings.Defaults())

	var notified []models.Settings
	store.OnChange(func(s models.Settings) { notified = append(notified, s) })

	applied := store.Apply(models.Settings{Volume: 0.8, Repetitions: 5, RefreshInterval: 8 * time.Second})

	assert.Equal(t, 3, applied.Repetitions, "should return normalized settings")
	assert.Equal(t, 0.8, store.Volume(), "should return latest volume")
	assert.Equal(t, 3, store.Repetitions(), "should return latest repetitions")
	assert.Equal(t, 8*time.Second, store.RefreshInterval(), "should return latest interval")
	assert.Equal(t, []models.Settings{applied}, notified, "should notify subscribers once")
}
