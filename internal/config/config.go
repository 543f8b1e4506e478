package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// History storage backends accepted by History.Backend.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config represents the application configuration structure.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set
	LogLevel string `env:"LOG_LEVEL" env-default:"" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
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
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"1m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// CORSAllowOrigin is the origin browsers may call the API from
		CORSAllowOrigin string `env:"HTTP_CORS_ALLOW_ORIGIN" env-default:"*" yaml:"corsAllowOrigin"`
	} `yaml:"http"`

	// Pipeline bounds the outbound calls made while expanding a URL
	Pipeline struct {
		// Deadline bounds a whole pipeline run, all stages included
		Deadline time.Duration `env:"PIPELINE_DEADLINE" env-default:"45s" yaml:"deadline"`
		// OutboundTimeout bounds each single outbound HTTP call
		OutboundTimeout time.Duration `env:"PIPELINE_OUTBOUND_TIMEOUT" env-default:"15s" yaml:"outboundTimeout"`
		// MaxRedirects is the longest redirect chain the resolver follows
		MaxRedirects int `env:"PIPELINE_MAX_REDIRECTS" env-default:"10" yaml:"maxRedirects"`
		// UserAgent is sent with resolver and metadata requests
		UserAgent string `env:"PIPELINE_USER_AGENT" env-default:"Mozilla/5.0 (compatible; LinkExpander/1.0)" yaml:"userAgent"` //nolint: lll
	} `yaml:"pipeline"`

	// ThreatIntel configures the Safe Browsing lookup
	ThreatIntel struct {
		// Endpoint is the threatMatches:find URL
		Endpoint string `env:"SAFE_BROWSING_ENDPOINT" env-default:"https://safebrowsing.googleapis.com/v4/threatMatches:find" yaml:"endpoint"` //nolint: lll
		// APIKey is sent as the "key" query parameter
		APIKey string `env:"SAFE_BROWSING_API_KEY" env-default:"" yaml:"apiKey"`
		// ClientID identifies this deployment in the request body
		ClientID string `env:"GOOGLE_CLIENT_ID" env-default:"" yaml:"clientId"`
		// ClientVersion is reported alongside ClientID
		ClientVersion string `env:"SAFE_BROWSING_CLIENT_VERSION" env-default:"1.0.0" yaml:"clientVersion"`
	} `yaml:"threatIntel"`

	// History configures the bounded list of past expansions
	History struct {
		// Backend is one of memory, file, redis, postgres or sqlite
		Backend string `env:"HISTORY_BACKEND" env-default:"file" yaml:"backend"`
		// Key is the storage key the whole list is stored under
		Key string `env:"HISTORY_KEY" env-default:"linkHistory" yaml:"key"`
		// Capacity is the number of entries kept
		Capacity int `env:"HISTORY_CAPACITY" env-default:"10" yaml:"capacity"`
		// FileDir is the directory used by the file backend
		FileDir string `env:"HISTORY_FILE_DIR" env-default:".linkexpander" yaml:"fileDir"`
		// SQLitePath is the database file used by the sqlite backend
		SQLitePath string `env:"HISTORY_SQLITE_PATH" env-default:"linkexpander.db" yaml:"sqlitePath"`
	} `yaml:"history"`

	// Redis contains the connection settings of the redis history backend
	Redis struct {
		// Addr is the Redis host:port
		Addr string `env:"REDIS_ADDR" env-default:"localhost:6379" yaml:"addr"`
		// Username for Redis ACL authentication
		Username string `env:"REDIS_USERNAME" env-default:"" yaml:"username"`
		// Password for Redis authentication
		Password string `env:"REDIS_PASSWORD" env-default:"" yaml:"password"`
		// DB is the Redis logical database number
		DB int `env:"REDIS_DB" env-default:"0" yaml:"db"`
		// DialTimeout bounds establishing a connection
		DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" env-default:"5s" yaml:"dialTimeout"`
		// ReadTimeout bounds socket reads
		ReadTimeout time.Duration `env:"REDIS_READ_TIMEOUT" env-default:"3s" yaml:"readTimeout"`
		// WriteTimeout bounds socket writes
		WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" env-default:"3s" yaml:"writeTimeout"`
		// PoolSize is the maximum number of socket connections
		PoolSize int `env:"REDIS_POOL_SIZE" env-default:"10" yaml:"poolSize"`
		// KeyPrefix namespaces every key
		KeyPrefix string `env:"REDIS_KEY_PREFIX" env-default:"linkexpander:" yaml:"keyPrefix"`
	} `yaml:"redis"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"linkexpander" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"4" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"1" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Screenshot configures the external preview renderer
	Screenshot struct {
		// BaseURL is the renderer endpoint the preview URL is built on
		BaseURL string `env:"SCREENSHOT_BASE_URL" env-default:"https://api.microlink.io/" yaml:"baseUrl"`
	} `yaml:"screenshot"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}

// LoadEnv fills a Config from environment variables and defaults only. The CLI
// falls back to it when no config file exists.
func LoadEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("could not read config from env: %w", err)
	}

	return &cfg, nil
}
