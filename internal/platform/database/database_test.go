package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPostgresConfig_Strings(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: "5432", User: "shareit", Password: "secret", DBName: "bookings", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=shareit password=secret dbname=bookings sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://shareit:secret@db:5432/bookings?sslmode=disable", cfg.DatabaseURL())
}

func TestConnect_SQLite(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, SQLitePath: ":memory:"}, zap.NewNop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.NoError(t, sqlDB.Ping())
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect(Config{Driver: "oracle"}, zap.NewNop())
	assert.ErrorContains(t, err, `unsupported database driver "oracle"`)
}
