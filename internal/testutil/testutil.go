// Package testutil wires an AppContext against in-memory backends for
// service tests: shared-cache SQLite, miniredis and a fake clock.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Saifkhan77806/LoveTown/internal/app"
	"github.com/Saifkhan77806/LoveTown/internal/cache"
	"github.com/Saifkhan77806/LoveTown/internal/clock"
	"github.com/Saifkhan77806/LoveTown/internal/config"
	"github.com/Saifkhan77806/LoveTown/internal/db"
	"github.com/Saifkhan77806/LoveTown/internal/logger"
	"github.com/Saifkhan77806/LoveTown/internal/presence"
	"github.com/Saifkhan77806/LoveTown/internal/scheduler"
)

// Epoch is the fake clock's starting time.
var Epoch = time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)

type Env struct {
	App   *app.AppContext
	Clock *clock.FakeClock
	Redis *miniredis.Miniredis
}

// Config returns the defaults the services run with in development.
func Config() *config.Config {
	cfg := &config.Config{}
	cfg.App.ENV = "test"
	cfg.Match.BioWeight = 5
	cfg.Match.MoodWeight = 3
	cfg.Match.DeferredDelay = time.Minute
	cfg.Chat.Milestone = 100
	cfg.Chat.HistoryLimit = 100
	cfg.Chat.CountTTL = time.Hour
	cfg.Freeze.Units = 24
	cfg.JWT.Secret = "test-secret"
	return cfg
}

// NewEnv builds a fresh environment scoped to t.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(database))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	t.Cleanup(func() { rdb.Close() })

	log := logger.Discard()
	clk := clock.Fake(Epoch)
	appCtx := &app.AppContext{
		Config:     Config(),
		DB:         database,
		RedisCache: rdb,
		Logger:     log,
		Clock:      clk,
		Scheduler:  scheduler.New(clk, log),
		Presence:   presence.NewRegistry(),
	}
	t.Cleanup(appCtx.Scheduler.Shutdown)

	return &Env{App: appCtx, Clock: clk, Redis: mr}
}

// AddUser inserts a user with unit embeddings.
func (e *Env) AddUser(t *testing.T, email string, gender db.Gender, status db.Status, bio, mood []float64) *db.User {
	t.Helper()
	u := &db.User{
		Email:         email,
		Name:          email,
		Gender:        string(gender),
		Status:        status,
		BioEmbedding:  bio,
		MoodEmbedding: mood,
	}
	require.NoError(t, e.App.DB.Create(u).Error)
	return u
}

// Pair inserts a matched pairing of a and b at the current fake time.
func (e *Env) Pair(t *testing.T, a, b string) *db.Match {
	t.Helper()
	m, err := db.NewMatch(a, b, 1, e.Clock.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, e.App.DB.Create(m).Error)
	return m
}

// User reloads a user from the database.
func (e *Env) User(t *testing.T, email string) *db.User {
	t.Helper()
	var u db.User
	require.NoError(t, e.App.DB.Where("email = ?", email).First(&u).Error)
	return &u
}

// CountMatches returns how many pairings contain email.
func (e *Env) CountMatches(t *testing.T, email string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.App.DB.Model(&db.Match{}).
		Where("user1 = ? OR user2 = ?", email, email).Count(&n).Error)
	return n
}

// Notifications records status pushes.
type Notifications struct {
	mu     sync.Mutex
	events []string
}

func (n *Notifications) StatusChanged(email string, status db.Status) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, email+"="+string(status))
}

func (n *Notifications) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}
