package postgres

import (
	"log"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/config"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the service in creation order.
func Models() []any {
	return []any{
		&models.ClientModel{},
		&models.ClientGatewayModel{},
		&models.TransactionModel{},
		&models.RefundTransactionModel{},
		&models.PaymentLinkModel{},
		&models.QRCodeModel{},
		&models.TransactionCallbackModel{},
		&models.TransactionCommunicationModel{},
		&models.DisputeModel{},
		&models.DisputeEvidenceModel{},
		&models.DisputeDocumentModel{},
	}
}

func MustInitDB(cfg *config.PaymentConfig) *gorm.DB {
	dsn := cfg.PaymentDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v\n", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if cfg.PaymentDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.PaymentDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v\n", err)
		}
		return db
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		log.Fatalf("failed to automigrate: %v\n", err)
	}
	return db
}
