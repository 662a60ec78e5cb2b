package di

import (
	"context"
	"fmt"
	"time"

	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/handler/api"
	internalrepo "SignalDesk/internal/repository"
	"SignalDesk/internal/usecase"
	"SignalDesk/pkg/cache"
	pkgch "SignalDesk/pkg/clickhouse"
	"SignalDesk/pkg/config"
	xhttp "SignalDesk/pkg/http"
	pkgkafka "SignalDesk/pkg/kafka"
	applogger "SignalDesk/pkg/logger"
	"SignalDesk/pkg/metrics"
	"SignalDesk/pkg/server"
	pkgsqlite "SignalDesk/pkg/sqlite"
)

// ProvideLogger builds the application logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New(nil)
}

// ProvidePriceStore opens the configured history backend.
func ProvidePriceStore(cfg *config.Config, l *applogger.Logger) (domrepo.PriceStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Store.Backend {
	case config.BackendClickHouse:
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(cfg.Engine.Workers*2, cfg.Engine.Workers),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}
		if cfg.ClickHouse.InitSchema {
			if err := client.InitSchema(ctx, pkgch.PriceSchema(client.Database())); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("clickhouse schema: %w", err)
			}
		}
		l.Info("clickhouse price store ready", applogger.String("database", client.Database()))
		return internalrepo.NewCHPriceStore(client, l), nil

	case config.BackendSQLite:
		client, err := pkgsqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		store, err := internalrepo.NewSQLitePriceStore(ctx, client, l)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// ProvideCache returns Redis behind an in-process L1 when enabled, and a
// process-local cache otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MemorySize),
			cache.WithMemoryCleanup(cfg.Cache.CleanupInterval),
		), nil
	}
	redisCache, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Addr),
		cache.WithRedisPassword(cfg.Cache.Password),
		cache.WithRedisDB(cfg.Cache.DB),
		cache.WithRedisPrefix(cfg.Cache.Prefix),
		cache.WithRedisPool(cfg.Engine.Workers*2, 1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(redisCache,
		cache.WithLayeredMemorySize(cfg.Cache.MemorySize),
		cache.WithLayeredMemoryTTL(cfg.Cache.MemoryTTL),
	), nil
}

// ProvideHistory puts the series cache in front of the store when a shared
// cache is configured.
func ProvideHistory(cfg *config.Config, store domrepo.PriceStore, c cache.Service, l *applogger.Logger) domrepo.PriceHistory {
	if !cfg.Cache.Enabled {
		return store
	}
	return internalrepo.NewCachedHistory(store, c, cfg.Cache.SeriesTTL, l)
}

func ProvideSnapshotStore(cfg *config.Config, c cache.Service) domrepo.SnapshotStore {
	return internalrepo.NewSnapshotStore(c, cfg.Cache.SnapshotTTL, cfg.Cache.LockTTL)
}

// ProvideKafkaProducer returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopics(cfg.Kafka.AutoCreateTopics),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("kafka producer ready",
		applogger.Strings("brokers", cfg.Kafka.Brokers),
		applogger.String("topic", cfg.Kafka.Topic),
	)
	return producer, nil
}

// ProvideRunPublisher returns a nil interface when Kafka is disabled.
func ProvideRunPublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.RunPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaRunPublisher(producer, cfg.Kafka.Topic)
}

func ProvideEngine(cfg *config.Config, history domrepo.PriceHistory, m domrepo.Metrics, l *applogger.Logger) *usecase.Engine {
	return usecase.NewEngine(history,
		usecase.WithLogger(l),
		usecase.WithMetrics(m),
		usecase.WithWorkers(cfg.Engine.Workers),
		usecase.WithCheckEvery(cfg.Engine.CheckEvery),
		usecase.WithMinPrice(cfg.Engine.MinPrice),
		usecase.WithLookbacks(cfg.Engine.PredictionLookbackDays, cfg.Engine.ScreeningLookbackDays),
	)
}

func ProvidePassRunner(
	cfg *config.Config,
	engine *usecase.Engine,
	store domrepo.PriceStore,
	snapshots domrepo.SnapshotStore,
	publisher domrepo.RunPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.PassRunner {
	return usecase.NewPassRunner(engine, store, snapshots, publisher, m, l, cfg.Thresholds, cfg.Engine.TimeBudget)
}

// ProvideHTTPServer registers the health and runs endpoints.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, store domrepo.PriceStore, runner *usecase.PassRunner) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	handlers := []xhttp.Handler{
		api.NewHealthHandler(map[string]api.Pinger{"store": store}),
		api.NewRunsHandler(l, runner),
	}
	return xhttp.NewServer(l, handlers,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideApp assembles the application and, when Kafka is on, ships
// aggregated warnings and errors to the collector topic.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	store domrepo.PriceStore,
	c cache.Service,
	producer *pkgkafka.Producer,
	runner *usecase.PassRunner,
	httpServer *xhttp.Server,
) *server.App {
	if producer != nil && cfg.Logging.CollectorTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.FlushInterval,
			CountThreshold: 100,
			Topic:          cfg.Logging.CollectorTopic,
			Publisher:      producer,
		})
	}
	app := server.New(l, runner, httpServer)
	if producer != nil {
		app.OnShutdown("kafka producer", producer)
	}
	app.OnShutdown("price store", store)
	app.OnShutdown("cache", c)
	return app
}
