package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/MichalMitros/stock-watcher/cmd/watcher/config"
	"github.com/MichalMitros/stock-watcher/internal/alert"
	"github.com/MichalMitros/stock-watcher/internal/catalog"
	"github.com/MichalMitros/stock-watcher/internal/decoder"
	"github.com/MichalMitros/stock-watcher/internal/fetcher"
	"github.com/MichalMitros/stock-watcher/internal/handler"
	"github.com/MichalMitros/stock-watcher/internal/notify"
	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/MichalMitros/stock-watcher/internal/platform/rabbitmq"
	"github.com/MichalMitros/stock-watcher/internal/platform/storage"
	"github.com/MichalMitros/stock-watcher/internal/player"
	"github.com/MichalMitros/stock-watcher/internal/poller"
	"github.com/MichalMitros/stock-watcher/internal/scheduler"
	"github.com/MichalMitros/stock-watcher/internal/settings"
	"github.com/MichalMitros/stock-watcher/internal/skus"
	"github.com/MichalMitros/stock-watcher/internal/spoof"
	"github.com/MichalMitros/stock-watcher/internal/watcher"
	"github.com/caarlos0/env/v6"
	_ "github.com/lib/pq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	var cfg config.Config
	if err := env.Parse(&cfg); err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't parse env variables")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't parse log level")
	}
	logger = logger.Level(level)

	cat, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't load catalog")
	}

	region := cfg.Region
	if region == "" {
		region = cat.DetectRegion(os.Getenv("LANG"))
	}

	scope, err := alert.ParseScope(cfg.AlertScope)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't parse alert scope")
	}

	filter, err := notifyFilter(cfg.Notify)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't compile notification filter")
	}

	sound, err := alertSound(cfg.Sound)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't prepare alert sound")
	}

	// optional command transport
	var (
		amqpConnection *amqp.Connection
		rmq            *rabbitmq.RabbitMQ
	)
	if cfg.RabbitMQ.URL != "" {
		if amqpConnection, err = amqp.Dial(cfg.RabbitMQ.URL); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't open RabbitMQ connection")
		}

		if rmq, err = rabbitmq.NewRabbitMQ(amqpConnection, cfg.RabbitMQ.Exchange); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't open RabbitMQ channel")
		}

		if err = rmq.Bind(cfg.RabbitMQ.Queue, cfg.RabbitMQ.CommandRoutingKey); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't bind commands queue")
		}
	}

	// optional snapshot store
	var pgDB *sql.DB
	if cfg.DatabaseURL != "" {
		if pgDB, err = sql.Open("postgres", cfg.DatabaseURL); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't open Postgres connection")
		}
	}

	store := settings.NewStore(models.Settings{
		Volume:          cfg.Settings.Volume,
		Repetitions:     cfg.Settings.Repetitions,
		APIAlarmEnabled: cfg.Settings.APIAlarmEnabled,
		RefreshInterval: cfg.Settings.RefreshInterval,
		ChatBotURL:      cfg.Settings.ChatBotURL,
		TopicName:       cfg.Settings.TopicName,
	})

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	spoofer := spoof.New()
	fet := spoofer.Fetcher(fetcher.NewFetcher(httpClient, cfg.UserAgent))
	dec := decoder.Decoder{}

	// notifiers resolve region lazily, watcher is created below
	var wat *watcher.Watcher
	currentRegion := func() string { return wat.Region() }

	notifiers := []player.Notifier{
		notify.NewChatBot(httpClient, store, cfg.PageURL),
		notify.NewTopic(
			httpClient,
			cfg.Notify.TopicBaseURL,
			store,
			currentRegion,
			filter,
			notifyLimiter(cfg.Notify.RatePerMinute),
			cfg.PageURL,
		),
	}
	if rmq != nil && cfg.RabbitMQ.AlertRoutingKey != "" {
		notifiers = append(notifiers, notify.NewBroker(rmq, cfg.RabbitMQ.AlertRoutingKey, currentRegion, cfg.PageURL))
	}

	alertPlayer := player.NewPlayer(sound, store, &logger, notifiers...)

	var opener alert.LinkOpener
	if cfg.AutoOpenLinks {
		opener = alert.BrowserOpener{}
	}
	detector := alert.NewDetector(scope, alertPlayer, store, opener, &logger)

	pol := poller.NewPoller(
		fet,
		dec,
		spoofer.Resolver(cat),
		poller.WithTimeout(cfg.HTTPTimeout),
		poller.WithParallelLimit(cfg.ParallelLimit),
		poller.WithLogger(&logger),
	)

	watcherOps := []watcher.Option{watcher.WithLogger(&logger)}
	if pgDB != nil {
		pg := storage.NewPostgres(pgDB)
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't migrate Postgres schema")
		}
		watcherOps = append(watcherOps, watcher.WithStore(pg))
	}

	wat, err = watcher.NewWatcher(pol, cat, detector, region, watcherOps...)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("region", region).
			Msg("can't create watcher")
	}

	if err := wat.Restore(ctx); err != nil {
		logger.Warn().
			Err(err).
			Msg("can't restore last snapshot")
	}

	var skuSource scheduler.SKUSource
	if cfg.SKUURL != "" {
		skuSource = skus.NewSource(fet, dec, cfg.SKUURL)
	}

	sched := scheduler.NewScheduler(wat, skuSource, store.RefreshInterval(), cfg.SKURefreshInterval, &logger)
	store.OnChange(func(s models.Settings) {
		sched.SetInterval(s.RefreshInterval)
	})

	if skuSource != nil {
		if err := sched.RefreshSKUs(ctx); err != nil {
			logger.Warn().
				Err(err).
				Msg("can't fetch initial sku table")
		}
	}

	sched.Start(ctx)

	if rmq != nil {
		han := handler.NewHandler(rmq, wat, store, alertPlayer, spoofer, &logger)

		// start consuming and handling messages
		if err := han.Start(ctx, cfg.RabbitMQ.Queue); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't start consuming")
		}
	} else {
		logger.Warn().Msg("RABBITMQ_URL is empty, commands are disabled")
	}

	if cfg.WatchOnStart {
		wat.Start()
		go func() {
			if err := wat.Trigger(ctx); err != nil {
				logger.Warn().
					Err(err).
					Msg("initial poll cycle failed")
			}
		}()
	}

	logger.Info().
		Str("region", region).
		Str("scope", string(scope)).
		Msg("stock watcher up and running")

	// handle graceful shutdown and context cancellation
	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-termChan:
		cancel()
	case <-ctx.Done():
	}

	logger.Info().Msg("graceful shutdown start")

	sched.Stop()

	if rmq != nil {
		// wait for consumer to finish, so no command reaches closed watcher
		<-rmq.Done()
	}

	wat.Close()
	detector.Wait()
	alertPlayer.Wait()

	if rmq != nil {
		if err := amqpConnection.Close(); err != nil {
			logger.Error().
				Err(err).
				Msg("can't close RabbitMQ connection")
		}
	}

	if pgDB != nil {
		if err := pgDB.Close(); err != nil {
			logger.Error().
				Err(err).
				Msg("can't close Postgres connection")
		}
	}

	logger.Info().Msg("graceful shutdown successful")
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func notifyFilter(cfg config.Notify) (notify.Filter, error) {
	filter := notify.Filter{Region: cfg.FilterRegion}
	if cfg.FilterPattern == "" {
		return filter, nil
	}

	pattern, err := regexp.Compile(cfg.FilterPattern)
	if err != nil {
		return notify.Filter{}, err
	}
	filter.Pattern = pattern

	return filter, nil
}

func notifyLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

func alertSound(cfg config.Sound) (player.Sound, error) {
	if cfg.Command == "" {
		return player.NewBell(os.Stdout, cfg.BellDuration), nil
	}
	return player.NewCommand(cfg.Command, cfg.File)
}
