package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment variable override
const EnvPrefix = "LL"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
}

// secretOverrides are read straight from the environment so they never need to live in a file
var secretOverrides = map[string]string{
	"LL_DB_HOST":        "database.host",
	"LL_DB_PORT":        "database.port",
	"LL_DB_USERNAME":    "database.username",
	"LL_DB_PASSWORD":    "database.password",
	"LL_DB_NAME":        "database.database",
	"LL_REDIS_ADDR":     "redis.addr",
	"LL_REDIS_PASSWORD": "redis.password",
	"LL_AMQP_URL":       "events.amqpURL",
}

// LoadConfig loads configuration for the environment named by LL_ENV
func LoadConfig() (*Config, error) {
	return LoadConfigFor("")
}

// LoadConfigFor loads configuration for env; an empty env falls back to LL_ENV
func LoadConfigFor(env string) (*Config, error) {
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	if env == "" {
		env = getEnvironment()
	}
	env = strings.ToLower(env)

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env
	processDurations(&config)

	return &config, nil
}

// loadDotEnvFile loads the first .env file found; existing variables win
func loadDotEnvFile() error {
	var lastError error
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			lastError = err
			continue
		}
		return nil
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return errors.New("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)
	v.SetDefault("server.writeTimeout", 15)
	v.SetDefault("server.idleTimeout", 60)
	v.SetDefault("server.readHeaderTimeout", 10)
	v.SetDefault("server.shutdownTimeout", 10)

	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 30)
	v.SetDefault("database.connMaxIdleTime", 15)
	v.SetDefault("database.queryTimeout", 5)
	v.SetDefault("database.slowQueryThresholdMs", 200)
	v.SetDefault("database.isolationLevel", "READ COMMITTED")
	v.SetDefault("database.connectAttempts", 3)
	v.SetDefault("database.connectDelay", 2)
	v.SetDefault("database.retryAttempts", 5)
	v.SetDefault("database.retryIntervalMs", 20)
	v.SetDefault("database.logLevel", "warn")

	v.SetDefault("logger.level", "info")

	v.SetDefault("wallet.borrowerInitialBalance", "1000000")
	v.SetDefault("wallet.lenderInitialBalance", "10000")

	v.SetDefault("accrual.enabled", true)
	v.SetDefault("accrual.schedule", "*/5 * * * *")
	v.SetDefault("accrual.concurrency", 4)
	v.SetDefault("accrual.cycleTimeout", 240)
	v.SetDefault("accrual.lockTTL", 300)

	v.SetDefault("redis.keyPrefix", "loan-ledger:lock")

	v.SetDefault("events.driver", "log")
	v.SetDefault("events.topicPrefix", "loan-ledger.")
	v.SetDefault("events.exchange", "loan-ledger.events")
	v.SetDefault("events.publishTimeoutMs", 2000)

	v.SetDefault("seed.defaultUsers", false)
}

// getEnvironment determines the environment from LL_ENV
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides lets short secret variables override nested keys
func processEnvOverrides(v *viper.Viper) {
	for envKey, configKey := range secretOverrides {
		if value := os.Getenv(envKey); value != "" {
			v.Set(configKey, value)
		}
	}
	if brokers := os.Getenv("LL_KAFKA_BROKERS"); brokers != "" {
		v.Set("events.brokers", strings.Split(brokers, ","))
	}
}

// processDurations converts raw second and minute counts into durations
func processDurations(config *Config) {
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute
	config.Database.QueryTimeout = time.Duration(config.Database.QueryTimeout) * time.Second
	config.Database.ConnectDelay = time.Duration(config.Database.ConnectDelay) * time.Second

	config.Accrual.CycleTimeout = time.Duration(config.Accrual.CycleTimeout) * time.Second
	config.Accrual.LockTTL = time.Duration(config.Accrual.LockTTL) * time.Second
}

// Validate reports every missing or invalid setting at once
func (c *Config) Validate() error {
	var problems []string

	switch c.Environment {
	case Development, Production, Test:
	default:
		problems = append(problems, fmt.Sprintf("environment must be one of %s, %s, %s (got %q)",
			Development, Production, Test, c.Environment))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port")
	}
	if c.Server.ReadTimeout <= 0 {
		problems = append(problems, "server.readTimeout")
	}
	if c.Server.WriteTimeout <= 0 {
		problems = append(problems, "server.writeTimeout")
	}
	if c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server.shutdownTimeout")
	}

	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.Host == "" {
			problems = append(problems, "database.host (or LL_DB_HOST)")
		}
		if c.Database.Username == "" {
			problems = append(problems, "database.username (or LL_DB_USERNAME)")
		}
		if c.Database.Database == "" {
			problems = append(problems, "database.database (or LL_DB_NAME)")
		}
		if c.Database.QueryTimeout <= 0 {
			problems = append(problems, "database.queryTimeout")
		}
	default:
		problems = append(problems, fmt.Sprintf("database.driver must be postgres or memory (got %q)", c.Database.Driver))
	}

	if c.Logger.Level == "" {
		problems = append(problems, "logger.level")
	}

	for key, raw := range map[string]string{
		"wallet.borrowerInitialBalance": c.Wallet.BorrowerInitialBalance,
		"wallet.lenderInitialBalance":   c.Wallet.LenderInitialBalance,
	} {
		amount, err := decimal.NewFromString(raw)
		if err != nil || amount.IsNegative() {
			problems = append(problems, key+" must be a non-negative decimal")
		}
	}

	if c.Accrual.Enabled && c.Accrual.Schedule == "" {
		problems = append(problems, "accrual.schedule")
	}
	if c.Accrual.Concurrency <= 0 {
		problems = append(problems, "accrual.concurrency")
	}
	// the cycle must end before its lock can expire under it
	if c.Accrual.CycleTimeout <= 0 || c.Accrual.CycleTimeout >= c.Accrual.LockTTL {
		problems = append(problems, fmt.Sprintf("accrual.cycleTimeout must be positive and below accrual.lockTTL (got %s, lock ttl %s)",
			c.Accrual.CycleTimeout, c.Accrual.LockTTL))
	}

	switch c.Events.Driver {
	case "log":
	case "kafka":
		if len(c.Events.Brokers) == 0 {
			problems = append(problems, "events.brokers (or LL_KAFKA_BROKERS)")
		}
	case "rabbitmq":
		if c.Events.AMQPURL == "" {
			problems = append(problems, "events.amqpURL (or LL_AMQP_URL)")
		}
		if c.Events.Exchange == "" {
			problems = append(problems, "events.exchange")
		}
	default:
		problems = append(problems, fmt.Sprintf("events.driver must be log, kafka or rabbitmq (got %q)", c.Events.Driver))
	}
	if c.Events.PublishTimeoutMs <= 0 {
		problems = append(problems, "events.publishTimeoutMs")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
