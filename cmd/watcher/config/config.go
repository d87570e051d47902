package config

import "time"

// Config holds application configuration.
type Config struct {
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	Region             string        `env:"REGION"`
	WatchOnStart       bool          `env:"WATCH_ON_START" envDefault:"true"`
	CatalogFile        string        `env:"CATALOG_FILE"`
	HTTPTimeout        time.Duration `env:"HTTP_TIMEOUT" envDefault:"3s"`
	ParallelLimit      int           `env:"PARALLEL_LIMIT" envDefault:"8"`
	UserAgent          string        `env:"USER_AGENT" envDefault:"stock-watcher/0.1.0"`
	SKUURL             string        `env:"SKU_URL"`
	SKURefreshInterval time.Duration `env:"SKU_REFRESH_INTERVAL" envDefault:"10s"`
	PageURL            string        `env:"PAGE_URL"`
	AutoOpenLinks      bool          `env:"AUTO_OPEN_LINKS" envDefault:"false"`
	AlertScope         string        `env:"ALERT_SCOPE" envDefault:"global"`
	DatabaseURL        string        `env:"DATABASE_URL"`

	Settings Settings
	RabbitMQ RabbitMQ
	Notify   Notify
	Sound    Sound
}

// Settings holds initial alert settings. They can be changed later with settings command.
type Settings struct {
	Volume          float64       `env:"VOLUME" envDefault:"0.5"`
	Repetitions     int           `env:"REPETITIONS" envDefault:"1"`
	APIAlarmEnabled bool          `env:"API_ALARM" envDefault:"false"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"21s"`
	ChatBotURL      string        `env:"CHATBOT_URL"`
	TopicName       string        `env:"TOPIC_NAME"`
}

// RabbitMQ holds RabbitMQ configuration.
type RabbitMQ struct {
	URL               string `env:"RABBITMQ_URL"`
	Exchange          string `env:"RABBITMQ_EXCHANGE" envDefault:"sw-ex"`
	Queue             string `env:"RABBITMQ_QUEUE" envDefault:"stock-watcher.commands"`
	CommandRoutingKey string `env:"RABBITMQ_COMMAND_ROUTING_KEY" envDefault:"sw.cmd"`
	AlertRoutingKey   string `env:"ALERT_ROUTING_KEY"`
}

// Notify holds push topic configuration.
type Notify struct {
	TopicBaseURL  string `env:"TOPIC_BASE_URL" envDefault:"https://ntfy.sh"`
	FilterRegion  string `env:"NOTIFY_FILTER_REGION"`
	FilterPattern string `env:"NOTIFY_FILTER_PATTERN"`
	RatePerMinute int    `env:"NOTIFY_RATE_PER_MINUTE" envDefault:"6"`
}

// Sound holds alert sound configuration. Terminal bell is used when command is empty.
type Sound struct {
	Command      string        `env:"SOUND_COMMAND"`
	File         string        `env:"SOUND_FILE"`
	BellDuration time.Duration `env:"SOUND_BELL_DURATION" envDefault:"1s"`
}
