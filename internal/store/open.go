package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"neoftp/internal/config"
)

// Open 根据配置打开结果存储
func Open(cfg *config.StoreConfig) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store config cannot be nil")
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if cfg.DSN != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0755); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(parseLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite 单写者
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s store: %w", cfg.Driver, err)
	}

	s, err := NewGormStore(db)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}
	return s, nil
}

func parseLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Silent
	}
}
