package app

import (
	"log/slog"
	"time"

	"github.com/Saifkhan77806/LoveTown/internal/cache"
	"github.com/Saifkhan77806/LoveTown/internal/clock"
	"github.com/Saifkhan77806/LoveTown/internal/config"
	"github.com/Saifkhan77806/LoveTown/internal/db"
	"github.com/Saifkhan77806/LoveTown/internal/presence"
	"github.com/Saifkhan77806/LoveTown/internal/scheduler"
	"gorm.io/gorm"
)

// Notifier pushes status changes to whoever is listening (the realtime hub).
type Notifier interface {
	StatusChanged(email string, status db.Status)
}

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Clock      clock.Clock
	Scheduler  *scheduler.Scheduler
	Presence   *presence.Registry
	Notifier   Notifier
}

// New creates a new AppContext. Clock, scheduler and presence registry get
// process defaults; callers may replace them before wiring services.
func New(cfg *config.Config, database *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	if logger == nil {
		logger = slog.Default()
	}
	clk := clock.Real()
	return &AppContext{
		Config:     cfg,
		DB:         database,
		RedisCache: rdb,
		Logger:     logger,
		Clock:      clk,
		Scheduler:  scheduler.New(clk, logger),
		Presence:   presence.NewRegistry(),
	}
}

// Now returns the current time in UTC at millisecond precision, the
// resolution every stored timestamp uses.
func (a *AppContext) Now() time.Time {
	return a.Clock.Now().UTC().Truncate(time.Millisecond)
}

// Notify forwards a status change when a notifier is wired.
func (a *AppContext) Notify(email string, status db.Status) {
	if a.Notifier != nil {
		a.Notifier.StatusChanged(email, status)
	}
}
