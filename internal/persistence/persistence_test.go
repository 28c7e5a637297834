package persistence

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/barbershop-api/internal/config"
	"github.com/spec-kit/barbershop-api/internal/limiter"
)

func TestNewRedis_Reachable(t *testing.T) {
	mr := miniredis.RunT(t)

	r := NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	defer r.Close()

	assert.True(t, r.Reachable)
	require.NoError(t, r.Ping(context.Background()))
}

func TestNewRedis_UnreachableIsNotFatal(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	r := NewRedis(context.Background(), config.RedisConfig{Addr: addr}, zap.NewNop())
	defer r.Close()

	assert.False(t, r.Reachable)
	assert.Error(t, r.Ping(context.Background()))
}

func TestRedis_LoginLimiterFollowsReachability(t *testing.T) {
	login := config.LoginConfig{MaxFailures: 2, LockMinutes: 15}

	t.Run("reachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		r := NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
		defer r.Close()

		l := r.LoginLimiter(login, zap.NewNop())
		require.IsType(t, &limiter.RedisLimiter{}, l)

		ok, err := l.Allow(context.Background(), "a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, mr.Exists("login:attempts:a"), "attempts are shared through redis")
	})

	t.Run("unreachable", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		r := &Redis{}

		l := r.LoginLimiter(login, zap.New(core))
		assert.IsType(t, &limiter.MemoryLimiter{}, l)
		assert.Equal(t, 1, logs.FilterMessage("login throttling falls back to in-process limiter").Len())
	})
}

func TestRedis_NilPing(t *testing.T) {
	var r *Redis
	assert.Error(t, r.Ping(context.Background()))
	r.Close()
}

func TestNewPostgres_RequiresDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.ErrorIs(t, err, ErrNoDatabase)
}

func TestPoolConfig_AppliesSettings(t *testing.T) {
	cfg, err := poolConfig(config.PostgresConfig{
		DSN:             "postgres://u:p@localhost:5432/barbershop",
		ApplicationName: "barbershop-api",
		MaxConns:        7,
		ConnMaxIdleSec:  30,
	})
	require.NoError(t, err)
	assert.Equal(t, "barbershop-api", cfg.ConnConfig.RuntimeParams["application_name"])
	assert.EqualValues(t, 7, cfg.MaxConns)
	assert.Equal(t, 30*time.Second, cfg.MaxConnIdleTime)
}

func TestPoolConfig_RejectsBadDSN(t *testing.T) {
	_, err := poolConfig(config.PostgresConfig{DSN: "postgres://u:p@localhost:notaport/db"})
	assert.Error(t, err)
}

func TestPostgres_NilSafe(t *testing.T) {
	var p *Postgres
	assert.ErrorIs(t, p.Ping(context.Background()), ErrNoDatabase)
	assert.ErrorIs(t, p.Migrate(context.Background(), zap.NewNop(), true), ErrNoDatabase)
	assert.Nil(t, p.PoolHandle())
	p.Close()
}

func TestPostgres_MigrateHonoursSwitch(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := &Postgres{}

	require.NoError(t, p.Migrate(context.Background(), zap.New(core), false))
	assert.Equal(t, 1, logs.FilterMessage("skipping migrations").Len())

	// Forced runs reach RunMigrations, which skips a nil pool with a warning.
	require.NoError(t, p.Migrate(context.Background(), zap.New(core), true))
	assert.Equal(t, 1, logs.FilterMessage("no postgres pool available; skipping migrations").Len())
}

func TestRunMigrations_NilPoolSkips(t *testing.T) {
	require.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}

func TestMigrations_EmbeddedWithUniqueConstraints(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	body, err := fs.ReadFile(migrationsFS, "migrations/"+entries[0].Name())
	require.NoError(t, err)
	sql := string(body)

	assert.True(t, strings.HasPrefix(sql, "-- +goose Up"))
	assert.Contains(t, sql, "-- +goose Down")
	for _, constraint := range []string{"users_email_key", "users_username_key", "users_cpf_key", "schedules_date_hour_key"} {
		assert.Contains(t, sql, constraint)
	}
}
