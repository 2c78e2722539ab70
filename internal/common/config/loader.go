// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml and applies env overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// setDefaults registers keys viper must know about for AutomaticEnv to reach them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "kiosk-assistant")
	v.SetDefault("dialog.confidence_threshold", 0.5)
	v.SetDefault("dialog.timezone", "Local")
	v.SetDefault("dialog.expose_diagnostics", true)
	v.SetDefault("interpreter.parse_path", "/model/parse")
	v.SetDefault("datasource.driver", "static")
	v.SetDefault("session.driver", "memory")
	v.SetDefault("camunda.worker.enabled", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.Dialog.Timezone == "" {
		cfg.Dialog.Timezone = "Local"
	}

	if cfg.Interpreter.ParsePath == "" {
		cfg.Interpreter.ParsePath = "/model/parse"
	}
	if cfg.Interpreter.Timeout == 0 {
		cfg.Interpreter.Timeout = 5000
	}
	if cfg.Interpreter.MaxRetries == 0 {
		cfg.Interpreter.MaxRetries = 2
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.DataSource.Driver == "" {
		cfg.DataSource.Driver = "static"
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 2000
	}

	if cfg.Session.Driver == "" {
		cfg.Session.Driver = "memory"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 30 * 60 * 1000
	}

	if cfg.Camunda.Worker.MaxJobsActive == 0 {
		cfg.Camunda.Worker.MaxJobsActive = 5
	}
	if cfg.Camunda.Worker.Timeout == 0 {
		cfg.Camunda.Worker.Timeout = 30000
	}
	if cfg.Camunda.Worker.MaxRetries == 0 {
		cfg.Camunda.Worker.MaxRetries = 3
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Dialog.ConfidenceThreshold < 0 || cfg.Dialog.ConfidenceThreshold > 1 {
		return fmt.Errorf("dialog.confidence_threshold must be within [0,1], got %v", cfg.Dialog.ConfidenceThreshold)
	}
	if _, err := cfg.Dialog.Location(); err != nil {
		return fmt.Errorf("dialog.timezone: %w", err)
	}

	switch cfg.DataSource.Driver {
	case "static":
	case "postgres":
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required for datasource.driver=postgres")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required for datasource.driver=postgres")
		}
	default:
		return fmt.Errorf("datasource.driver must be 'static' or 'postgres', got %q", cfg.DataSource.Driver)
	}

	switch cfg.Session.Driver {
	case "memory":
	case "redis":
	default:
		return fmt.Errorf("session.driver must be 'memory' or 'redis', got %q", cfg.Session.Driver)
	}

	if (cfg.Session.Driver == "redis" || cfg.DataSource.CacheTTL > 0) && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when redis sessions or caching are enabled")
	}

	if cfg.Output.SNS.Enabled && cfg.Output.SNS.TopicARN == "" {
		return fmt.Errorf("output.sns.topic_arn is required when output.sns.enabled is true")
	}

	return nil
}

// Location resolves the dialog timezone used to decide what "today" is.
func (d DialogConfig) Location() (*time.Location, error) {
	if d.Timezone == "" || d.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(d.Timezone)
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
