package database

import (
	"errorwatch/config"
	"errorwatch/models"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the SQLite database named by config.Settings, tunes the
// connection pool, migrates the schema and stores the handle in DB.
func InitDB() error {
	db, err := Open(buildSQLiteDSN(config.Settings.DatabaseURL, sqlitePragmas(config.Settings)), gormLogLevel(config.Settings.LogLevel))
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	pool := currentPoolConfig(config.Settings)
	sqlDB.SetMaxOpenConns(pool.maxOpenConns)
	sqlDB.SetMaxIdleConns(pool.maxIdleConns)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.maxIdleSec) * time.Second)

	DB = db
	log.Println("Database initialized successfully")
	return nil
}

// Open opens dsn with glebarez/sqlite and migrates the schema.
// Tests use it directly with a temp-dir file.
func Open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: metricsLogger{inner: logger.New(
			log.New(log.Writer(), "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  level,
				IgnoreRecordNotFoundError: true,
			},
		)},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.StoredError{}); err != nil {
		return nil, err
	}
	return db, nil
}

// CloseDB closes the database connection and releases resources
func CloseDB() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	log.Println("Closing database connection...")
	return sqlDB.Close()
}

func gormLogLevel(level string) logger.LogLevel {
	if level == "DEBUG" {
		return logger.Info
	}
	return logger.Silent
}
