package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withConfigDir points the loader at a temp directory holding the given files
func withConfigDir(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	previous := ConfigPaths
	ConfigPaths = []string{dir}
	t.Cleanup(func() { ConfigPaths = previous })
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	withConfigDir(t, nil)

	cfg, err := LoadConfigFor(Test)
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "READ COMMITTED", cfg.Database.IsolationLevel)
	assert.Equal(t, "1000000", cfg.Wallet.BorrowerInitialBalance)
	assert.Equal(t, "10000", cfg.Wallet.LenderInitialBalance)
	assert.True(t, cfg.Accrual.Enabled)
	assert.Equal(t, "*/5 * * * *", cfg.Accrual.Schedule)
	assert.Equal(t, 300*time.Second, cfg.Accrual.LockTTL)
	assert.Equal(t, 240*time.Second, cfg.Accrual.CycleTimeout)
	assert.Equal(t, "log", cfg.Events.Driver)
	assert.Equal(t, 2000, cfg.Events.PublishTimeoutMs)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_ReadsEnvironmentFile(t *testing.T) {
	withConfigDir(t, map[string]string{
		"test.yaml": `
server:
  port: 9090
  readTimeout: 5
database:
  driver: postgres
  host: db.internal
  username: ledger
  database: loans
accrual:
  schedule: "@every 1m"
  concurrency: 8
  cycleTimeout: 30
events:
  driver: kafka
  brokers:
    - kafka-1:9092
    - kafka-2:9092
`,
	})

	cfg, err := LoadConfigFor(Test)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "@every 1m", cfg.Accrual.Schedule)
	assert.Equal(t, 8, cfg.Accrual.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Accrual.CycleTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.Brokers)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	withConfigDir(t, map[string]string{
		"test.yaml": "server:\n  port: 9090\n",
	})
	t.Setenv("LL_SERVER_PORT", "7070")
	t.Setenv("LL_DB_PASSWORD", "s3cret")
	t.Setenv("LL_REDIS_ADDR", "redis:6379")
	t.Setenv("LL_KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := LoadConfigFor(Test)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Events.Brokers)
}

func TestLoadConfig_EnvironmentSelectedByVariable(t *testing.T) {
	withConfigDir(t, map[string]string{
		"production.yaml": "server:\n  port: 80\n",
	})
	t.Setenv("LL_ENV", "Production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Production, cfg.Environment)
	assert.Equal(t, 80, cfg.Server.Port)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	withConfigDir(t, map[string]string{
		"test.yaml": "server: [unterminated\n",
	})

	_, err := LoadConfigFor(Test)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func validConfig() *Config {
	return &Config{
		Environment: Test,
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		Database: DatabaseConfig{Driver: "memory"},
		Logger:   LoggerConfig{Level: "info"},
		Wallet: WalletConfig{
			BorrowerInitialBalance: "1000000",
			LenderInitialBalance:   "10000",
		},
		Accrual: AccrualConfig{
			Enabled:      true,
			Schedule:     "*/5 * * * *",
			Concurrency:  1,
			CycleTimeout: 240 * time.Second,
			LockTTL:      300 * time.Second,
		},
		Events: EventsConfig{Driver: "log", PublishTimeoutMs: 2000},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "unknown environment",
			mutate:  func(c *Config) { c.Environment = "staging" },
			wantErr: "environment must be one of",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "postgres without host",
			mutate:  func(c *Config) { c.Database = DatabaseConfig{Driver: "postgres", Username: "u", Database: "d", QueryTimeout: time.Second} },
			wantErr: "database.host",
		},
		{
			name:    "unknown database driver",
			mutate:  func(c *Config) { c.Database.Driver = "sqlite" },
			wantErr: "database.driver",
		},
		{
			name:    "negative initial balance",
			mutate:  func(c *Config) { c.Wallet.LenderInitialBalance = "-1" },
			wantErr: "wallet.lenderInitialBalance",
		},
		{
			name:    "non numeric initial balance",
			mutate:  func(c *Config) { c.Wallet.BorrowerInitialBalance = "lots" },
			wantErr: "wallet.borrowerInitialBalance",
		},
		{
			name:    "accrual enabled without schedule",
			mutate:  func(c *Config) { c.Accrual.Schedule = "" },
			wantErr: "accrual.schedule",
		},
		{
			name:   "accrual disabled without schedule",
			mutate: func(c *Config) { c.Accrual.Enabled, c.Accrual.Schedule = false, "" },
		},
		{
			name:    "cycle without timeout",
			mutate:  func(c *Config) { c.Accrual.CycleTimeout = 0 },
			wantErr: "accrual.cycleTimeout must be positive and below accrual.lockTTL",
		},
		{
			name:    "cycle timeout equal to lock ttl",
			mutate:  func(c *Config) { c.Accrual.CycleTimeout = c.Accrual.LockTTL },
			wantErr: "accrual.cycleTimeout",
		},
		{
			name:    "cycle timeout above lock ttl",
			mutate:  func(c *Config) { c.Accrual.CycleTimeout, c.Accrual.LockTTL = 10*time.Minute, 5*time.Minute },
			wantErr: "accrual.cycleTimeout",
		},
		{
			name:    "publish without timeout",
			mutate:  func(c *Config) { c.Events.PublishTimeoutMs = 0 },
			wantErr: "events.publishTimeoutMs",
		},
		{
			name:    "kafka without brokers",
			mutate:  func(c *Config) { c.Events.Driver = "kafka" },
			wantErr: "events.brokers",
		},
		{
			name:    "rabbitmq without url",
			mutate:  func(c *Config) { c.Events = EventsConfig{Driver: "rabbitmq", Exchange: "x"} },
			wantErr: "events.amqpURL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
