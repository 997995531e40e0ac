package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Logger      LoggerConfig   `mapstructure:"logger"`
	Wallet      WalletConfig   `mapstructure:"wallet"`
	Accrual     AccrualConfig  `mapstructure:"accrual"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Events      EventsConfig   `mapstructure:"events"`
	Seed        SeedConfig     `mapstructure:"seed"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver               string        `mapstructure:"driver"` // postgres | memory
	Host                 string        `mapstructure:"host"`
	Port                 int           `mapstructure:"port"`
	Username             string        `mapstructure:"username"`
	Password             string        `mapstructure:"password"`
	Database             string        `mapstructure:"database"`
	SSLMode              string        `mapstructure:"sslMode"`
	MaxOpenConns         int           `mapstructure:"maxOpenConns"`
	MaxIdleConns         int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime      time.Duration `mapstructure:"connMaxLifetime"`      // minutes
	ConnMaxIdleTime      time.Duration `mapstructure:"connMaxIdleTime"`      // minutes
	QueryTimeout         time.Duration `mapstructure:"queryTimeout"`         // seconds
	SlowQueryThresholdMs int           `mapstructure:"slowQueryThresholdMs"`
	IsolationLevel       string        `mapstructure:"isolationLevel"`
	ConnectAttempts      int           `mapstructure:"connectAttempts"`
	ConnectDelay         time.Duration `mapstructure:"connectDelay"` // seconds
	RetryAttempts        int           `mapstructure:"retryAttempts"`
	RetryIntervalMs      int           `mapstructure:"retryIntervalMs"`
	LogLevel             string        `mapstructure:"logLevel"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// WalletConfig sets the balance new wallets start with
type WalletConfig struct {
	BorrowerInitialBalance string `mapstructure:"borrowerInitialBalance"`
	LenderInitialBalance   string `mapstructure:"lenderInitialBalance"`
}

// AccrualConfig controls the interest accrual scheduler
type AccrualConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Schedule     string        `mapstructure:"schedule"`
	Concurrency  int           `mapstructure:"concurrency"`
	CycleTimeout time.Duration `mapstructure:"cycleTimeout"` // seconds
	LockTTL      time.Duration `mapstructure:"lockTTL"`      // seconds
}

// RedisConfig points at the Redis used for the accrual lock; an empty Addr disables it
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"keyPrefix"`
}

// EventsConfig selects the event broker
type EventsConfig struct {
	Driver           string   `mapstructure:"driver"` // log | kafka | rabbitmq
	Brokers          []string `mapstructure:"brokers"`
	TopicPrefix      string   `mapstructure:"topicPrefix"`
	AMQPURL          string   `mapstructure:"amqpURL"`
	Exchange         string   `mapstructure:"exchange"`
	PublishTimeoutMs int      `mapstructure:"publishTimeoutMs"`
}

// SeedConfig controls startup seeding
type SeedConfig struct {
	DefaultUsers bool `mapstructure:"defaultUsers"`
}
