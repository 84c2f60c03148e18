package setup

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/LavaJover/shvark-payment-gateway/internal/config"
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/repository"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.PaymentConfig
	DB           *gorm.DB
	SQLDB        *sql.DB
	Publisher    domain.EventPublisher
	Metrics      *metrics.PaymentMetrics
	Registry     *prometheus.Registry
	Repositories *Repositories
	closers      []io.Closer
}

type Repositories struct {
	Transactions   domain.TransactionRepository
	Refunds        domain.RefundRepository
	QRCodes        domain.QRCodeRepository
	Links          domain.PaymentLinkRepository
	Callbacks      domain.CallbackRepository
	Communications domain.CommunicationRepository
	Disputes       domain.DisputeRepository
	Clients        domain.ClientRepository
}

func InitializeDependencies(cfg *config.PaymentConfig) (*Dependencies, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	deps := &Dependencies{
		Config:   cfg,
		Metrics:  metrics.NewPaymentMetrics(reg),
		Registry: reg,
	}

	if cfg.PaymentDB.InMemory {
		slog.Warn("using in-memory storage, state is lost on restart")
		deps.Repositories = memoryRepositories(memory.NewStore())
	} else {
		db := postgres.MustInitDB(cfg)
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sql db: %w", err)
		}
		deps.DB = db
		deps.SQLDB = sqlDB
		deps.closers = append(deps.closers, sqlDB)
		deps.Repositories = postgresRepositories(db)
	}

	deps.Publisher = initPublisher(cfg, deps)
	return deps, nil
}

func memoryRepositories(store *memory.Store) *Repositories {
	return &Repositories{
		Transactions:   store,
		Refunds:        store,
		QRCodes:        store,
		Links:          store,
		Callbacks:      store,
		Communications: store,
		Disputes:       store,
		Clients:        store,
	}
}

func postgresRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Transactions:   repository.NewDefaultTransactionRepository(db),
		Refunds:        repository.NewDefaultRefundRepository(db),
		QRCodes:        repository.NewDefaultQRCodeRepository(db),
		Links:          repository.NewDefaultPaymentLinkRepository(db),
		Callbacks:      repository.NewDefaultCallbackRepository(db),
		Communications: repository.NewDefaultCommunicationRepository(db),
		Disputes:       repository.NewDefaultDisputeRepository(db),
		Clients:        repository.NewDefaultClientRepository(db),
	}
}

func initPublisher(cfg *config.PaymentConfig, deps *Dependencies) domain.EventPublisher {
	if !cfg.KafkaService.Enabled || len(cfg.KafkaService.Brokers) == 0 {
		slog.Info("kafka disabled, payment events are not published")
		return kafka.NoopEventPublisher{}
	}
	port := kafka.NewDefaultKafkaPublisher(cfg.KafkaService.Brokers)
	deps.closers = append(deps.closers, port)
	return kafka.NewPaymentEventPublisher(port, cfg.KafkaService.Topic)
}

// Close releases the broker connection and the database pool.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			slog.Error("failed to close dependency", "error", err)
		}
	}
}
