package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/wa-inbound-service/environments"
	"github.com/onurcolak/wa-inbound-service/internal/repository"
	"github.com/onurcolak/wa-inbound-service/internal/service"
	"github.com/onurcolak/wa-inbound-service/internal/worker"
	"github.com/onurcolak/wa-inbound-service/pkg/database"
	"github.com/onurcolak/wa-inbound-service/pkg/events"
	"github.com/onurcolak/wa-inbound-service/pkg/graphapi"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
	"github.com/onurcolak/wa-inbound-service/pkg/queue"
	"github.com/onurcolak/wa-inbound-service/pkg/redis"
	"github.com/onurcolak/wa-inbound-service/pkg/webhook"
)

// App holds the long-lived clients and services shared by the API and worker
// binaries.
type App struct {
	Config *environments.Config

	DB        *sqlx.DB
	Queue     *queue.Queue
	Cache     *redis.Client
	Publisher events.Publisher

	Accounts *service.AccountResolver
	Messages *repository.MessageRepository
	Statuses *repository.StatusRepository
	Claims   *repository.ClaimRepository

	Send   *service.SendService
	Ingest *service.IngestService
	Ops    *service.OpsService
}

// New connects to MySQL and the queue Redis, which are required, and to the
// account cache and AMQP broker, which are optional.
func New(cfg *environments.Config) (*App, error) {
	a := &App{Config: cfg, Publisher: events.Nop()}

	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	a.DB = db

	rdb, err := queue.NewRedisClient(cfg.Redis)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to connect to queue redis: %w", err)
	}
	a.Queue = queue.New(rdb, cfg.Queue.Name, queue.OptionsFromConfig(cfg.Queue))

	cache, err := redis.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warnf("Account cache not available, caching disabled: %v", err)
	} else {
		a.Cache = cache
	}

	if cfg.Events.AMQPURL != "" {
		publisher, err := events.New(cfg.Events.AMQPURL, cfg.Events.Exchange, logger.With("component", "events"))
		if err != nil {
			logger.Warnf("AMQP not available, outcome events disabled: %v", err)
		} else {
			a.Publisher = publisher
		}
	}

	accountRepo := repository.NewAccountRepository(db)
	if a.Cache != nil {
		a.Accounts = service.NewAccountResolver(accountRepo, a.Cache, cfg.Cache.AccountTTL)
	} else {
		a.Accounts = service.NewAccountResolver(accountRepo, nil, cfg.Cache.AccountTTL)
	}

	a.Messages = repository.NewMessageRepository(db)
	a.Statuses = repository.NewStatusRepository(db)
	a.Claims = repository.NewClaimRepository(db, cfg.Worker.ClaimLease)

	a.Send = service.NewSendService(a.Accounts, graphapi.NewClient(cfg.WhatsApp), a.Messages)
	a.Ingest = service.NewIngestService(cfg.WhatsApp.AppSecret, a.Accounts, a.Messages, a.Statuses, a.Queue)
	a.Ops = service.NewOpsService(a.Claims, a.Queue)

	return a, nil
}

// NewPool builds the worker pool running the auto-reply handler.
func (a *App) NewPool() *worker.Pool {
	handler := service.NewAutoReplyHandler(a.Send, a.Config.Worker.ReplyText)
	processor := worker.NewProcessor(a.Claims, a.Messages, handler, a.Publisher)

	alerts := webhook.NewWebhookClient(a.Config.Alert)
	if alerts.Enabled() {
		logger.Infof("Alert webhook configured: %s", alerts.GetURL())
	}

	return worker.NewPool(a.Queue, processor, alerts, a.Publisher, worker.PoolConfig{
		Concurrency:  a.Config.Worker.Concurrency,
		PollInterval: a.Config.Worker.PollInterval,
		StallTimeout: a.Config.Worker.StallTimeout,
	})
}

// Close releases connections in order: DB, queue, cache, AMQP.
func (a *App) Close() {
	if a.DB != nil {
		logger.Infof("Closing database connection...")
		if err := a.DB.Close(); err != nil {
			logger.Errorf("Error closing database: %v", err)
		}
	}

	if a.Queue != nil {
		logger.Infof("Closing queue connection...")
		if err := a.Queue.Close(); err != nil {
			logger.Errorf("Error closing queue: %v", err)
		}
	}

	if a.Cache != nil {
		logger.Infof("Closing cache connection...")
		if err := a.Cache.Close(); err != nil {
			logger.Errorf("Error closing cache: %v", err)
		}
	}

	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			logger.Errorf("Error closing event publisher: %v", err)
		}
	}
}
