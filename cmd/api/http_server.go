package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/giovaniif/coffee-machine/config"
	"github.com/giovaniif/coffee-machine/domain/machine"
	"github.com/giovaniif/coffee-machine/domain/menu"
	"github.com/giovaniif/coffee-machine/infra/gateways"
	"github.com/giovaniif/coffee-machine/infra/metrics"
	"github.com/giovaniif/coffee-machine/infra/repositories"
	"github.com/giovaniif/coffee-machine/infra/tracing"
	"github.com/giovaniif/coffee-machine/protocols"
	"github.com/giovaniif/coffee-machine/use_cases/browse"
	cancelorder "github.com/giovaniif/coffee-machine/use_cases/cancel"
	"github.com/giovaniif/coffee-machine/use_cases/profit"
	"github.com/giovaniif/coffee-machine/use_cases/purchase"
	"github.com/giovaniif/coffee-machine/use_cases/refill"
	"github.com/giovaniif/coffee-machine/use_cases/selection"
	"github.com/giovaniif/coffee-machine/use_cases/status"
)

const shutdownTimeout = 10 * time.Second

// StartServer wires the machine from cfg and serves HTTP until SIGINT or SIGTERM.
func StartServer(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := menu.Default()
	if cfg.MenuFile != "" {
		loaded, err := menu.Load(cfg.MenuFile)
		if err != nil {
			return err
		}
		m = loaded
		logger.Info("menu loaded", zap.String("file", cfg.MenuFile), zap.Int("items", len(m.Items())))
	}

	if shutdownTracing := tracing.Init(cfg.ServiceName, cfg.OTLPEndpoint); shutdownTracing != nil {
		defer shutdownTracing()
		logger.Info("tracing enabled", zap.String("endpoint", cfg.OTLPEndpoint))
	}

	initial := machine.New(m)
	machineRepository := repositories.NewMachineRepositoryMemory(initial)
	recorder := metrics.NewRecorder()
	recorder.Levels(initial.Inventory.Levels(), initial.Profit)

	idempotencyGateway, rdb := newIdempotencyGateway(ctx, cfg.RedisAddr, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	salesJournal, closeJournal, err := newSalesJournal(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeJournal()

	salesPublisher, closePublisher := newSalesPublisher(cfg, logger)
	defer closePublisher()

	router := NewRouter(Dependencies{
		Browse:   browse.NewBrowse(m, machineRepository),
		Select:   selection.NewSelect(m, machineRepository, recorder),
		Purchase: purchase.NewPurchase(machineRepository, idempotencyGateway, salesJournal, salesPublisher, gateways.NewSleeper(), recorder, logger),
		Cancel:   cancelorder.NewCancel(machineRepository),
		Refill:   refill.NewRefill(m, machineRepository, recorder),
		Profit:   profit.NewResetProfit(machineRepository, recorder),
		Status:   status.NewStatus(m, machineRepository, cfg.LowStockThreshold),
		Logger:   logger,
		Redis:    rdb,
		Timeout:  cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("coffee machine is running", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newIdempotencyGateway(ctx context.Context, redisAddr string, logger *zap.Logger) (protocols.IdempotencyGateway, *redis.Client) {
	if redisAddr == "" {
		logger.Info("payment idempotency: in-memory (set REDIS_ADDR for Redis)")
		return gateways.NewIdempotencyGatewayMemory(), nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping failed, using in-memory idempotency", zap.String("addr", redisAddr), zap.Error(err))
		_ = rdb.Close()
		return gateways.NewIdempotencyGatewayMemory(), nil
	}
	logger.Info("payment idempotency: redis (TTL 24h)", zap.String("addr", redisAddr))
	return gateways.NewIdempotencyGatewayRedis(rdb), rdb
}

func newSalesJournal(ctx context.Context, cfg config.Config, logger *zap.Logger) (protocols.SalesJournal, func(), error) {
	switch cfg.SalesJournal {
	case config.JournalPostgres:
		journal, err := repositories.NewSalesJournalPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres sales journal: %w", err)
		}
		logger.Info("sales journal: postgres")
		return journal, func() { _ = journal.Close() }, nil
	case config.JournalMongo:
		journal, err := repositories.NewSalesJournalMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo sales journal: %w", err)
		}
		logger.Info("sales journal: mongo")
		return journal, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = journal.Close(closeCtx)
		}, nil
	default:
		logger.Info("sales journal: in-memory")
		return repositories.NewSalesJournalMemory(), func() {}, nil
	}
}

func newSalesPublisher(cfg config.Config, logger *zap.Logger) (protocols.SalesPublisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("sale events: log only (set KAFKA_BROKERS for Kafka)")
		return gateways.NewSalesPublisherLog(logger), func() {}
	}
	publisher := gateways.NewSalesPublisherKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
	logger.Info("sale events: kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	return publisher, func() { _ = publisher.Close() }
}
