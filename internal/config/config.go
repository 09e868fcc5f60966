package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"catalog-service/internal/models"

	"github.com/Tesseract-Nexus/go-shared/secrets"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL      string
	RedisPassword string

	// Server
	Port        string
	Environment string

	// Services
	StaffServiceURL string
	NATSURL         string

	// Import settings
	MaxImportFileSizeMB int
	CatalogCacheEnabled bool
	CatalogCacheTTL     time.Duration
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	maxImportFileSize, _ := strconv.Atoi(getEnv("MAX_IMPORT_FILE_SIZE_MB", "10"))
	cacheEnabled, _ := strconv.ParseBool(getEnv("CATALOG_CACHE_ENABLED", "true"))
	cacheTTL, err := time.ParseDuration(getEnv("CATALOG_CACHE_TTL", "5m"))
	if err != nil {
		cacheTTL = 5 * time.Minute
	}

	return &Config{
		// Database - fetch password from GCP Secret Manager if enabled
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: secrets.GetDBPassword(),
		DBName:     getEnv("DB_NAME", "catalog_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL:      getEnv("REDIS_URL", "redis://redis.redis-marketplace.svc.cluster.local:6379/0"),
		RedisPassword: secrets.GetRedisPassword(),

		Port:        getEnv("PORT", "8087"),
		Environment: getEnv("ENVIRONMENT", "development"),

		StaffServiceURL: getEnv("STAFF_SERVICE_URL", "http://staff-service:8080"),
		NATSURL:         getEnv("NATS_URL", "nats://nats.nats.svc.cluster.local:4222"),

		MaxImportFileSizeMB: maxImportFileSize,
		CatalogCacheEnabled: cacheEnabled,
		CatalogCacheTTL:     cacheTTL,
	}
}

// MaxImportFileBytes is the upload limit in bytes.
func (c *Config) MaxImportFileBytes() int64 {
	if c.MaxImportFileSizeMB <= 0 {
		return 10 << 20
	}
	return int64(c.MaxImportFileSizeMB) << 20
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Running auto-migrations...")
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Brand{},
		&models.Attribute{},
		&models.AttributeValue{},
		&models.Product{},
		&models.ProductVariant{},
	); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "does not exist") && strings.Contains(errStr, "constraint") {
			log.Printf("Note: Migration constraint warning (safe to ignore): %v", err)
		} else {
			return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
		}
	}
	log.Println("Auto-migrations completed successfully")

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
