// internal/workers/dialog/dialog-reply/config.go
package dialogreply

import (
	"fmt"
	"time"

	"kiosk-dialog/internal/common/config"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	MaxRetries    int
}

func createConfigFromAppConfig(appConfig *config.Config) *Config {
	cfg := &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		MaxRetries:    3,
	}
	if appConfig == nil {
		return cfg
	}

	w := appConfig.Camunda.Worker
	cfg.Enabled = w.Enabled
	if w.MaxJobsActive > 0 {
		cfg.MaxJobsActive = w.MaxJobsActive
	}
	if w.Timeout > 0 {
		cfg.Timeout = config.GetDuration(w.Timeout)
	}
	if w.MaxRetries > 0 {
		cfg.MaxRetries = w.MaxRetries
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max jobs active must be positive")
	}
	return nil
}
