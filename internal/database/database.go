package database

import (
	"fmt"

	"github.com/yukikurage/toondo/internal/config"
	"github.com/yukikurage/toondo/internal/logger"
	"github.com/yukikurage/toondo/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dialector picks the gorm driver for the configured database.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath), nil
	case config.DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Name,
		)
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.Database)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel(cfg.Env)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.L().Info().Str("driver", cfg.Database.Driver).Msg("database connection established")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	logger.L().Info().Msg("running database migrations")
	if err := db.AutoMigrate(&models.StorageEntry{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.L().Info().Msg("database migrations completed")
	return nil
}

func logLevel(env string) gormlogger.LogLevel {
	switch env {
	case config.EnvLocal:
		return gormlogger.Info
	case config.EnvDev:
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}
