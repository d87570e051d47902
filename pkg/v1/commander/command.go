package commander

// CommandType is type of watcher command.
type CommandType string

const (
	// CommandStart starts periodic polling.
	CommandStart CommandType = "start"
	// CommandStop stops periodic polling.
	CommandStop CommandType = "stop"
	// CommandPoll runs poll cycle now.
	CommandPoll CommandType = "poll"
	// CommandRegion switches watched region.
	CommandRegion CommandType = "region"
	// CommandInclude includes or excludes item from polling.
	CommandInclude CommandType = "include"
	// CommandSettings changes alert settings.
	CommandSettings CommandType = "settings"
	// CommandTest plays test alert.
	CommandTest CommandType = "test"
	// CommandSpoof controls spoofed responses.
	CommandSpoof CommandType = "spoof"
	// CommandStatus reports current watcher state.
	CommandStatus CommandType = "status"
)

// Command is message consumed by watcher.
type Command struct {
	Type       CommandType `json:"type"`
	Region     string      `json:"region,omitempty"`
	Identifier string      `json:"identifier,omitempty"`
	Included   *bool       `json:"included,omitempty"`
	Message    string      `json:"message,omitempty"`
	Settings   *Settings   `json:"settings,omitempty"`
	Spoof      *Spoof      `json:"spoof,omitempty"`
}

// Settings is partial settings update. Nil fields are left unchanged.
type Settings struct {
	Volume                 *float64 `json:"volume,omitempty"`
	Repetitions            *int     `json:"repetitions,omitempty"`
	APIAlarmEnabled        *bool    `json:"apiAlarmEnabled,omitempty"`
	RefreshIntervalSeconds *int     `json:"refreshIntervalSeconds,omitempty"`
	ChatBotURL             *string  `json:"chatBotUrl,omitempty"`
	TopicName              *string  `json:"topicName,omitempty"`
}

// Spoof controls spoofed responses. Identifier without mode toggles item availability.
type Spoof struct {
	Enabled    *bool  `json:"enabled,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Mode       string `json:"mode,omitempty"`
}
