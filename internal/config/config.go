package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paddlelab/leaguesync/internal/platform/logging"
)

// Config stores runtime configuration for the import engine. Which database a
// run targets is decided entirely here; the engine core receives an opened
// handle and never embeds connection details.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string

	DBURL string

	BatchSize            int
	RowErrorCeiling      int
	TeamAssignConfidence float64
	MaxWorkers           int

	SourceDir       string
	LeagueRulesPath string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration

	LogLevel logging.Level
}

func Load() (Config, error) {
	cfg := Config{}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}
	cfg.AppEnv = appEnv
	cfg.ServiceName = getEnv("SERVICE_NAME", "leaguesync")
	cfg.ServiceVersion = getEnv("SERVICE_VERSION", "dev")

	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))

	batchSize, err := getEnvAsInt("BATCH_SIZE", 500)
	if err != nil {
		return Config{}, fmt.Errorf("parse BATCH_SIZE: %w", err)
	}
	if batchSize < 100 || batchSize > 1000 {
		return Config{}, fmt.Errorf("BATCH_SIZE must be between 100 and 1000")
	}
	cfg.BatchSize = batchSize

	ceiling, err := getEnvAsInt("ROW_ERROR_CEILING", 500)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROW_ERROR_CEILING: %w", err)
	}
	if ceiling < 1 {
		return Config{}, fmt.Errorf("ROW_ERROR_CEILING must be >= 1")
	}
	cfg.RowErrorCeiling = ceiling

	confidence, err := getEnvAsFloat("TEAM_ASSIGN_CONFIDENCE", 0.8)
	if err != nil {
		return Config{}, fmt.Errorf("parse TEAM_ASSIGN_CONFIDENCE: %w", err)
	}
	if confidence <= 0.5 || confidence > 1 {
		return Config{}, fmt.Errorf("TEAM_ASSIGN_CONFIDENCE must be in (0.5, 1]")
	}
	cfg.TeamAssignConfidence = confidence

	maxWorkers, err := getEnvAsInt("MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_WORKERS: %w", err)
	}
	if maxWorkers < 1 {
		return Config{}, fmt.Errorf("MAX_WORKERS must be >= 1")
	}
	cfg.MaxWorkers = maxWorkers

	cfg.SourceDir = getEnv("SOURCE_DIR", "./data")
	cfg.LeagueRulesPath = strings.TrimSpace(getEnv("LEAGUE_RULES_PATH", ""))

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceEnabled = uptraceEnabled
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeEnabled = pyroscopeEnabled
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName)
	cfg.PyroscopeAuthToken = getEnv("PYROSCOPE_AUTH_TOKEN", "")
	uploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if uploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}
	cfg.PyroscopeUploadRate = uploadRate

	cfg.LogLevel = parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))

	return cfg, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}
