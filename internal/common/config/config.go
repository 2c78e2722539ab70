// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Dialog      DialogConfig      `mapstructure:"dialog"`
	Interpreter InterpreterConfig `mapstructure:"interpreter"`
	Database    DatabaseConfig    `mapstructure:"database"`
	DataSource  DataSourceConfig  `mapstructure:"datasource"`
	Session     SessionConfig     `mapstructure:"session"`
	Output      OutputConfig      `mapstructure:"output"`
	Camunda     CamundaConfig     `mapstructure:"camunda"`
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// DialogConfig holds dispatcher settings.
type DialogConfig struct {
	ConfidenceThreshold float64           `mapstructure:"confidence_threshold"`
	Timezone            string            `mapstructure:"timezone"`
	ExposeDiagnostics   bool              `mapstructure:"expose_diagnostics"`
	IntentAliases       map[string]string `mapstructure:"intent_aliases"` // intent name -> rule name
	Seed                int64             `mapstructure:"seed"`           // 0 = time based
}

// InterpreterConfig points at the NLU service that turns text into intent + entities.
type InterpreterConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ParsePath  string `mapstructure:"parse_path"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DataSourceConfig selects where directory and schedule data come from.
type DataSourceConfig struct {
	Driver   string `mapstructure:"driver"`    // "static" or "postgres"
	CacheTTL int    `mapstructure:"cache_ttl"` // milliseconds, 0 disables the redis cache
	Timeout  int    `mapstructure:"timeout"`   // milliseconds

	// Static data, used when Driver is "static".
	Directory map[string]string `mapstructure:"directory"`
	Menu      map[string]string `mapstructure:"menu"`
	Events    map[string]string `mapstructure:"events"`
}

// SessionConfig selects where last-turn memory is kept.
type SessionConfig struct {
	Driver string `mapstructure:"driver"` // "memory" or "redis"
	TTL    int    `mapstructure:"ttl"`    // milliseconds
}

// OutputConfig configures reply sinks.
type OutputConfig struct {
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

type CamundaConfig struct {
	BrokerAddress string       `mapstructure:"broker_address"`
	Worker        WorkerConfig `mapstructure:"worker"`
}

// WorkerConfig holds the settings of the dialog-reply job worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// ServerConfig holds the health/metrics listener.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
