package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Import     ImportConfig
	Detection  DetectionConfig
	Export     ExportConfig
	Worker     WorkerConfig
	Prometheus PrometheusConfig
}

// AppConfig holds application settings
type AppConfig struct {
	Env          string
	Port         int
	Name         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// ImportConfig holds import pipeline settings
type ImportConfig struct {
	BatchSize     int
	MaxFileSizeMB int
	IDMaxRetries  int
}

// DetectionConfig holds the confidence thresholds for column detection.
// The similarity scoring beyond substring containment is heuristic, so the
// thresholds are configurable rather than fixed constants.
type DetectionConfig struct {
	TemplateMinScore    float64 // minimum template score to seed a mapping
	TemplateHighScore   float64 // template score treated as high confidence
	AliasMinConfidence  float64 // minimum alias-match confidence to accept
	AutoCompanyMin      float64 // company confidence required to auto-proceed
	AutoHighShareMin    float64 // share of fields above AutoHighThreshold required
	AutoHighThreshold   float64 // per-field confidence counted as "high"
	SimilarityMinAccept float64 // minimum Levenshtein similarity to consider
}

// ExportConfig holds export settings
type ExportConfig struct {
	BatchSize int
}

// WorkerConfig holds worker pool settings
type WorkerConfig struct {
	ImportWorkers int
	QueueSize     int
}

// PrometheusConfig holds Prometheus settings
type PrometheusConfig struct {
	Enabled bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:          getEnv("APP_ENV", "development"),
			Port:         getEnvAsInt("APP_PORT", 8080),
			Name:         getEnv("APP_NAME", "application-tracker"),
			ReadTimeout:  getEnvAsInt("APP_READ_TIMEOUT", 30),
			WriteTimeout: getEnvAsInt("APP_WRITE_TIMEOUT", 60),
			IdleTimeout:  getEnvAsInt("APP_IDLE_TIMEOUT", 120),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "application_tracker"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Import: ImportConfig{
			BatchSize:     getEnvAsInt("IMPORT_BATCH_SIZE", 500),
			MaxFileSizeMB: getEnvAsInt("MAX_FILE_SIZE_MB", 50),
			IDMaxRetries:  getEnvAsInt("IMPORT_ID_MAX_RETRIES", 5),
		},
		Detection: DefaultDetection(),
		Export: ExportConfig{
			BatchSize: getEnvAsInt("EXPORT_BATCH_SIZE", 1000),
		},
		Worker: WorkerConfig{
			ImportWorkers: getEnvAsInt("IMPORT_WORKER_COUNT", 2),
			QueueSize:     getEnvAsInt("WORKER_QUEUE_SIZE", 50),
		},
		Prometheus: PrometheusConfig{
			Enabled: getEnvAsBool("PROMETHEUS_ENABLED", true),
		},
	}

	return cfg, nil
}

// DefaultDetection returns the detection thresholds, overridable per env.
func DefaultDetection() DetectionConfig {
	return DetectionConfig{
		TemplateMinScore:    getEnvAsFloat("DETECT_TEMPLATE_MIN_SCORE", 0.5),
		TemplateHighScore:   getEnvAsFloat("DETECT_TEMPLATE_HIGH_SCORE", 0.8),
		AliasMinConfidence:  getEnvAsFloat("DETECT_ALIAS_MIN_CONFIDENCE", 0.3),
		AutoCompanyMin:      getEnvAsFloat("DETECT_AUTO_COMPANY_MIN", 0.6),
		AutoHighShareMin:    getEnvAsFloat("DETECT_AUTO_HIGH_SHARE", 0.6),
		AutoHighThreshold:   getEnvAsFloat("DETECT_AUTO_HIGH_THRESHOLD", 0.8),
		SimilarityMinAccept: getEnvAsFloat("DETECT_SIMILARITY_MIN", 0.8),
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(strValue)
	if err != nil {
		return defaultValue
	}
	return boolValue
}
