package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	t.Setenv("STATBOARD_ENV", Test)
	Reset()
	t.Cleanup(Reset)

	cfg := GetConfig()

	assert.Equal(t, "statboard", cfg.AppName)
	assert.Equal(t, DataSourceDatabase, cfg.DataSource)
	assert.False(t, cfg.UsesFixture())
	assert.True(t, cfg.IsTest())
	assert.Equal(t, 1, cfg.GetMaxOpenConns())
	assert.Contains(t, cfg.GetDatabasePath(), "statboard-test.db")
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval())
}

func TestGetConfigFixtureSource(t *testing.T) {
	t.Setenv("STATBOARD_ENV", Test)
	t.Setenv("STATBOARD_DATA_SOURCE", DataSourceFixture)
	t.Setenv("STATBOARD_FIXTURE_PATH", "testdata/demo.yaml")
	Reset()
	t.Cleanup(Reset)

	cfg := GetConfig()

	assert.True(t, cfg.UsesFixture())
	assert.Equal(t, "testdata/demo.yaml", cfg.FixturePath)
}

func TestValidate(t *testing.T) {
	base := Config{
		Environment:  Development,
		DatabaseType: SQLiteDatabase,
		DataSource:   DataSourceDatabase,
		Timezone:     "UTC",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown environment", mutate: func(c *Config) { c.Environment = "staging" }, wantErr: "invalid environment"},
		{name: "unknown db type", mutate: func(c *Config) { c.DatabaseType = "mysql" }, wantErr: "invalid database type"},
		{name: "unknown data source", mutate: func(c *Config) { c.DataSource = "redis" }, wantErr: "invalid data source"},
		{name: "unknown timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: "invalid timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLocation(t *testing.T) {
	c := &Config{Timezone: "Local"}
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	c.Timezone = "America/New_York"
	loc, err = c.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}
