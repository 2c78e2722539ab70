// internal/datasource/factory.go
package datasource

import (
	"database/sql"
	"fmt"

	"kiosk-dialog/internal/common/config"
	"kiosk-dialog/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// New builds the configured sources. db is required for the postgres driver,
// rdb when cfg.CacheTTL is positive.
func New(cfg config.DataSourceConfig, db *sql.DB, rdb *redis.Client, log logger.Logger) (Sources, error) {
	var src Sources

	switch cfg.Driver {
	case "", "static":
		src = Sources{
			Directory: StaticDirectory(cfg.Directory),
			Menu:      StaticSchedule(cfg.Menu),
			Events:    StaticSchedule(cfg.Events),
		}
	case "postgres":
		if db == nil {
			return Sources{}, fmt.Errorf("postgres datasource requires a database connection")
		}
		src = Sources{
			Directory: NewPostgresDirectory(db),
			Menu:      NewPostgresSchedule(db, ScheduleMenu),
			Events:    NewPostgresSchedule(db, ScheduleEvents),
		}
	default:
		return Sources{}, fmt.Errorf("unknown datasource driver %q", cfg.Driver)
	}

	if cfg.CacheTTL > 0 {
		if rdb == nil {
			return Sources{}, fmt.Errorf("datasource cache requires a redis client")
		}
		ttl := config.GetDuration(cfg.CacheTTL)
		log = log.With(map[string]interface{}{"component": "datasource-cache"})
		src = Sources{
			Directory: NewCachedDirectory(src.Directory, rdb, ttl, log),
			Menu:      NewCachedSchedule(src.Menu, ScheduleMenu, rdb, ttl, log),
			Events:    NewCachedSchedule(src.Events, ScheduleEvents, rdb, ttl, log),
		}
	}

	log.Info("datasources ready", map[string]interface{}{
		"driver": cfg.Driver,
		"cached": cfg.CacheTTL > 0,
	})
	return src, nil
}
