package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/books?sslmode=disable")
	t.Setenv("ADMIN_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "200", cfg.Checkout.DeliveryFee.String())
	assert.Equal(t, 10*time.Minute, cfg.Redis.LookupTTL)
	assert.Equal(t, 5*time.Minute, cfg.Redis.RefreshInterval)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, "postgres://u:p@localhost:5432/books?sslmode=disable", cfg.DB.DSN())
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5, cfg.DB.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
}

func TestLoad_PoolOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/books")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("DB_MAX_OPEN_CONNS", "8")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.DB.MaxOpenConns)
	assert.Equal(t, 90*time.Second, cfg.DB.ConnMaxLifetime)
}

func TestLoad_RequiresAdminPassword(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/books")
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("ADMIN_PASSWORD", "secret")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsBadDeliveryFee(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/books")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("DELIVERY_FEE", "-5")

	_, err := Load()
	require.Error(t, err)
}

func TestDSN_FromParts(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "shop", Password: "p@ss", Name: "books", SSLMode: "disable"}
	assert.Equal(t, "postgres://shop:p%40ss@db:5432/books?sslmode=disable", c.DSN())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}

func TestLoad_RefreshIntervalCanBeDisabled(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/books")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("LOOKUP_REFRESH_INTERVAL", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Redis.RefreshInterval)
}
