package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// Log configures where log lines go and at which levels
	Log struct {
		// Level is the minimum console level; empty picks a default for the environment
		Level string `env:"LOG_LEVEL" yaml:"level"`
		// File is an optional path receiving a JSON copy of the logs
		File string `env:"LOG_FILE" yaml:"file"`
		// FileLevel is the minimum level written to File
		FileLevel string `env:"LOG_FILE_LEVEL" env-default:"info" yaml:"fileLevel"`
	} `yaml:"log"`

	// Reddit contains the account and API settings
	Reddit struct {
		// Username of the bot account
		Username string `env:"REDDIT_USERNAME" yaml:"username"`
		// Password of the bot account
		Password string `env:"REDDIT_PASSWORD" yaml:"password"`
		// ClientID of the script application
		ClientID string `env:"REDDIT_CLIENT_ID" yaml:"clientId"`
		// ClientSecret of the script application
		ClientSecret string `env:"REDDIT_CLIENT_SECRET" yaml:"clientSecret"`
		// UserAgent identifies the bot to Reddit
		UserAgent string `env:"REDDIT_USER_AGENT" env-default:"linkfixer/1.3 (Gfycat Link Fixer Bot)" yaml:"userAgent"` //nolint: lll
		// AuthURL is where access tokens are requested
		AuthURL string `env:"REDDIT_AUTH_URL" env-default:"https://www.reddit.com" yaml:"authUrl"`
		// APIURL is the OAuth API base URL
		APIURL string `env:"REDDIT_API_URL" env-default:"https://oauth.reddit.com" yaml:"apiUrl"`
		// Timeout bounds every HTTP request to Reddit
		Timeout time.Duration `env:"REDDIT_TIMEOUT" env-default:"30s" yaml:"timeout"`
	} `yaml:"reddit"`

	// Bot contains the behaviour of the link fixer itself
	Bot struct {
		// Owner is the account credited in the comment footer
		Owner string `env:"BOT_OWNER" env-default:"Gawdl3y" yaml:"owner"`
		// RetryTime is the wait between retries after transient failures
		RetryTime time.Duration `env:"BOT_RETRY_TIME" env-default:"10s" yaml:"retryTime"`
		// Exclude is a space separated list of subreddits the bot never comments in
		Exclude string `env:"BOT_EXCLUDE" yaml:"exclude"`
		// Subreddit is the feed scope; "all" reads every subreddit
		Subreddit string `env:"BOT_SUBREDDIT" env-default:"all" yaml:"subreddit"`
		// Workers bounds how many threads are handled concurrently
		Workers int `env:"BOT_WORKERS" env-default:"16" yaml:"workers"`
		// PollInterval is the minimum time between two feed polls
		PollInterval time.Duration `env:"BOT_POLL_INTERVAL" env-default:"2s" yaml:"pollInterval"`
		// PollLimit is the number of submissions requested per poll (max 100)
		PollLimit int `env:"BOT_POLL_LIMIT" env-default:"100" yaml:"pollLimit"`
		// DrainTimeout is how long in-flight threads may finish after shutdown starts
		DrainTimeout time.Duration `env:"BOT_DRAIN_TIMEOUT" env-default:"30s" yaml:"drainTimeout"`
	} `yaml:"bot"`

	// HTTP contains the settings of the operational HTTP server (metrics, health, pprof)
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// Database contains the connection settings of the posted-comment ledger
	Database struct {
		// Enabled switches the ledger from memory to PostgreSQL
		Enabled bool `env:"DATABASE_ENABLED" env-default:"false" yaml:"enabled"`
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"linkfixer" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"linkfixer" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"linkfixer" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MinIdleConnections is the number of connections kept open
		MinIdleConnections int `env:"DATABASE_MIN_IDLE_CONNECTIONS" env-default:"1" yaml:"minIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// GracefulShutdownTimeout is the maximum duration to wait for the HTTP server to stop
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values the bot cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Bot.RetryTime <= 0:
		return fmt.Errorf("bot.retryTime must be positive, got %s", c.Bot.RetryTime)
	case c.Bot.Workers <= 0:
		return fmt.Errorf("bot.workers must be positive, got %d", c.Bot.Workers)
	case c.Bot.PollLimit <= 0 || c.Bot.PollLimit > 100:
		return fmt.Errorf("bot.pollLimit must be between 1 and 100, got %d", c.Bot.PollLimit)
	case c.Bot.Subreddit == "":
		return fmt.Errorf("bot.subreddit must not be empty")
	}

	return nil
}
