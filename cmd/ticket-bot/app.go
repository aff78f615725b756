package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ticket-bot/internal/bot"
	"ticket-bot/internal/catalog"
	"ticket-bot/internal/common/aws"
	"ticket-bot/internal/common/config"
	"ticket-bot/internal/common/database"
	"ticket-bot/internal/common/logger"
	"ticket-bot/internal/common/observability"
	"ticket-bot/internal/intent"
	"ticket-bot/internal/orders"
	"ticket-bot/internal/scenario"
	"ticket-bot/internal/workers/ticket"
)

// app holds everything a subcommand builds from the configuration.
type app struct {
	cfg     *config.Config
	zapLog  *zap.Logger
	log     logger.Logger
	obs     *observability.Observability
	loc     *time.Location
	pingers []database.Pinger
	closers []func() error

	pg *database.PostgresClient
}

func newApp() (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	loc, err := cfg.Catalog.Location()
	if err != nil {
		return nil, err
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	return &app{
		cfg:    cfg,
		zapLog: zapLog,
		log:    logger.NewZapAdapter(zapLog),
		obs:    observability.Nop(),
		loc:    loc,
	}, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.zapLog.Warn("close failed", zap.Error(err))
		}
	}
	a.obs.Shutdown()
	_ = a.zapLog.Sync()
}

func (a *app) postgres(ctx context.Context) (*database.PostgresClient, error) {
	if a.pg != nil {
		return a.pg, nil
	}

	var pg *database.PostgresClient
	err := retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(a.cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, a.zapLog, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}

	a.pg = pg
	a.pingers = append(a.pingers, pg)
	a.closers = append(a.closers, pg.Close)
	a.zapLog.Info("PostgreSQL connected successfully")
	return pg, nil
}

func (a *app) schedule() ([]catalog.Rule, error) {
	return catalog.RulesFromConfig(a.cfg.Catalog.Rules)
}

// catalog opens the configured flight catalog. The memory catalog is filled
// from the schedule on the spot; the postgres one expects `seed` to have run.
func (a *app) catalog(ctx context.Context, source string) (catalog.Catalog, error) {
	if source == config.StorageMemory {
		rules, err := a.schedule()
		if err != nil {
			return nil, err
		}
		mem := catalog.NewMemoryCatalog(time.Now)
		flights := catalog.Generate(rules, time.Now(), a.cfg.Catalog.HorizonDays, a.loc)
		if _, err := mem.Seed(ctx, flights); err != nil {
			return nil, err
		}
		a.log.Info("memory catalog generated", map[string]interface{}{"flights": len(flights)})
		return mem, nil
	}

	pg, err := a.postgres(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewPostgresCatalog(pg.DB, time.Now, a.log), nil
}

func (a *app) sessions(ctx context.Context, storage string) (scenario.SessionStore, error) {
	if storage == config.StorageMemory {
		return scenario.NewMemoryStore(), nil
	}

	redis := database.NewRedis(a.cfg.Database.Redis)
	err := retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, a.zapLog, "Redis connection")
	if err != nil {
		_ = redis.Close()
		return nil, err
	}

	a.pingers = append(a.pingers, redis)
	a.closers = append(a.closers, redis.Close)
	a.zapLog.Info("Redis connected successfully")
	return scenario.NewRedisStore(redis.Client, a.cfg.Database.Redis.KeyPrefix, config.GetDuration(a.cfg.Bot.SessionTTL)), nil
}

// recorder builds the order sinks enabled in the configuration. The log
// sink is always first.
func (a *app) recorder(ctx context.Context, ordersCfg config.OrdersConfig) (*orders.Recorder, error) {
	sinks := []orders.Sink{orders.NewLogSink(a.log)}

	if ordersCfg.Postgres {
		pg, err := a.postgres(ctx)
		if err != nil {
			return nil, err
		}
		sink := orders.NewPostgresSink(pg.DB)
		if err := sink.Migrate(ctx); err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	if ordersCfg.Elasticsearch {
		var es *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(a.cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, a.zapLog, "Elasticsearch connection")
		if err != nil {
			return nil, err
		}
		a.pingers = append(a.pingers, es)
		a.zapLog.Info("Elasticsearch connected successfully")
		sinks = append(sinks, orders.NewElasticsearchSink(es.Client, es.Index))
	}

	rec := orders.NewRecorder(a.log, sinks...)

	if ordersCfg.SMS {
		client, err := aws.NewSNSClient(ctx, a.cfg.Integrations.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
		rec.AddNotifier(orders.NewSMSNotifier(client, a.cfg.Integrations.AWS.SNS.SenderID))
	}
	return rec, nil
}

// loop wires the scenario file, handlers, engine and bot into an event loop.
func (a *app) loop(cat catalog.Catalog, store scenario.SessionStore, sink scenario.CompletionSink) (*bot.Loop, error) {
	file, err := scenario.LoadFile(a.cfg.Bot.ScenarioFile)
	if err != nil {
		return nil, err
	}

	handlerCfg := ticket.LoadConfig()
	handlerCfg.Location = a.loc
	handlers := ticket.NewRegistry(handlerCfg, cat, time.Now, a.log)

	engine, err := scenario.NewEngine(file.Scenarios, handlers, store, sink, a.log)
	if err != nil {
		return nil, err
	}

	router := intent.NewRouter(file.Intents, file.DefaultAnswer)
	b := bot.New(engine, router, file.Controls, a.log)

	return bot.NewLoop(b, a.cfg.Bot.QueueSize, config.GetDuration(a.cfg.Bot.EventTimeout), a.obs, a.log), nil
}
