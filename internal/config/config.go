package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Database DatabaseConfig `json:"database" yaml:"database"`
	Redis    RedisConfig    `json:"redis" yaml:"redis"`
	Registry RegistryConfig `json:"registry" yaml:"registry"`
	Browser  BrowserConfig  `json:"browser" yaml:"browser"`
	Upload   UploadConfig   `json:"upload" yaml:"upload"`
	Workers  WorkerConfig   `json:"workers" yaml:"workers"`
	Progress ProgressConfig `json:"progress" yaml:"progress"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Security SecurityConfig `json:"security" yaml:"security"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int    `json:"port" yaml:"port"`
	Environment  string `json:"environment" yaml:"environment"`
	ReadTimeout  int    `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout int    `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  int    `json:"idle_timeout" yaml:"idle_timeout"`
}

// DatabaseConfig holds the SQLite location
type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	Password     string        `json:"password" yaml:"password"`
	DB           int           `json:"db" yaml:"db"`
	PoolSize     int           `json:"pool_size" yaml:"pool_size"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// RegistryConfig describes the SEFAZ-BA query workflow
type RegistryConfig struct {
	QueryURL       string        `json:"query_url" yaml:"query_url"`
	InputSelector  string        `json:"input_selector" yaml:"input_selector"`
	SubmitXPath    string        `json:"submit_xpath" yaml:"submit_xpath"`
	ResultFragment string        `json:"result_fragment" yaml:"result_fragment"`
	MarkerXPath    string        `json:"marker_xpath" yaml:"marker_xpath"`
	LookupTimeout  time.Duration `json:"lookup_timeout" yaml:"lookup_timeout"`
	ExtractTimeout time.Duration `json:"extract_timeout" yaml:"extract_timeout"`
	// CacheTTL of zero disables the record cache.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

// BrowserConfig holds browser automation configuration
type BrowserConfig struct {
	Headless     bool          `json:"headless" yaml:"headless"`
	WindowWidth  int           `json:"window_width" yaml:"window_width"`
	WindowHeight int           `json:"window_height" yaml:"window_height"`
	UserAgent    string        `json:"user_agent" yaml:"user_agent"`
	ExecPath     string        `json:"exec_path" yaml:"exec_path"`
	StartTimeout time.Duration `json:"start_timeout" yaml:"start_timeout"`
	// ActionTimeout bounds navigation, typing, clicks and markup reads.
	ActionTimeout time.Duration `json:"action_timeout" yaml:"action_timeout"`
}

// UploadConfig holds document upload configuration
type UploadConfig struct {
	Dir               string   `json:"dir" yaml:"dir"`
	AllowedExtensions []string `json:"allowed_extensions" yaml:"allowed_extensions"`
	MaxSizeMB         int      `json:"max_size_mb" yaml:"max_size_mb"`
}

// WorkerConfig sizes the batch worker pool
type WorkerConfig struct {
	Count     int `json:"count" yaml:"count"`
	QueueSize int `json:"queue_size" yaml:"queue_size"`
}

// ProgressConfig holds progress stream configuration
type ProgressConfig struct {
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
	CORS      CORSConfig      `json:"cors" yaml:"cors"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute" yaml:"requests_per_minute"`
	BurstSize         int           `json:"burst_size" yaml:"burst_size"`
	CleanupInterval   time.Duration `json:"cleanup_interval" yaml:"cleanup_interval"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers" yaml:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials" yaml:"allow_credentials"`
}

const (
	minWorkers = 1
	maxWorkers = 10
)

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Environment: "development",
			ReadTimeout: 30,
			// Progress streams stay open for the whole batch.
			WriteTimeout: 0,
			IdleTimeout:  60,
		},
		Database: DatabaseConfig{
			Path: "sefaz.db",
		},
		Redis: RedisConfig{
			Host:         "localhost",
			Port:         6379,
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Registry: RegistryConfig{
			QueryURL:       "https://portal.sefaz.ba.gov.br/scripts/cadastro/cadastroBa/consultaBa.asp",
			InputSelector:  `input[name="IE"]`,
			SubmitXPath:    `//input[@type='submit' and @name='B2' and contains(@value, 'IE')]`,
			ResultFragment: "result.asp",
			MarkerXPath:    `//td[contains(., 'Consulta Básica ao Cadastro do ICMS da Bahia')]`,
			LookupTimeout:  15 * time.Second,
			ExtractTimeout: 10 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:      true,
			WindowWidth:   1920,
			WindowHeight:  1080,
			UserAgent:     "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36",
			StartTimeout:  30 * time.Second,
			ActionTimeout: 30 * time.Second,
		},
		Upload: UploadConfig{
			Dir:               "sefaz_uploads",
			AllowedExtensions: []string{"pdf"},
			MaxSizeMB:         32,
		},
		Workers: WorkerConfig{
			Count:     2,
			QueueSize: 100,
		},
		Progress: ProgressConfig{
			PollInterval: time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 30,
				BurstSize:         5,
				CleanupInterval:   60 * time.Second,
			},
			CORS: CORSConfig{
				AllowedOrigins:   []string{"*"},
				AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
				AllowedHeaders:   []string{"*"},
				AllowCredentials: false,
			},
		},
	}
}

// Load builds the configuration from defaults, the optional CONFIG_FILE and
// environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvAsInt("PORT", cfg.Server.Port)
	cfg.Server.Environment = getEnv("ENVIRONMENT", cfg.Server.Environment)
	cfg.Server.ReadTimeout = getEnvAsInt("READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvAsInt("WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = getEnvAsInt("IDLE_TIMEOUT", cfg.Server.IdleTimeout)

	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)

	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = getEnvAsInt("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.PoolSize = getEnvAsInt("REDIS_POOL_SIZE", cfg.Redis.PoolSize)
	cfg.Redis.DialTimeout = getEnvAsDuration("REDIS_DIAL_TIMEOUT", cfg.Redis.DialTimeout)
	cfg.Redis.ReadTimeout = getEnvAsDuration("REDIS_READ_TIMEOUT", cfg.Redis.ReadTimeout)
	cfg.Redis.WriteTimeout = getEnvAsDuration("REDIS_WRITE_TIMEOUT", cfg.Redis.WriteTimeout)

	cfg.Registry.QueryURL = getEnv("REGISTRY_QUERY_URL", cfg.Registry.QueryURL)
	cfg.Registry.LookupTimeout = getEnvAsDuration("REGISTRY_LOOKUP_TIMEOUT", cfg.Registry.LookupTimeout)
	cfg.Registry.ExtractTimeout = getEnvAsDuration("REGISTRY_EXTRACT_TIMEOUT", cfg.Registry.ExtractTimeout)
	cfg.Registry.CacheTTL = getEnvAsDuration("REGISTRY_CACHE_TTL", cfg.Registry.CacheTTL)

	cfg.Browser.Headless = getEnvAsBool("BROWSER_HEADLESS", cfg.Browser.Headless)
	cfg.Browser.UserAgent = getEnv("BROWSER_USER_AGENT", cfg.Browser.UserAgent)
	cfg.Browser.ExecPath = getEnv("BROWSER_EXEC_PATH", cfg.Browser.ExecPath)
	cfg.Browser.StartTimeout = getEnvAsDuration("BROWSER_START_TIMEOUT", cfg.Browser.StartTimeout)
	cfg.Browser.ActionTimeout = getEnvAsDuration("BROWSER_ACTION_TIMEOUT", cfg.Browser.ActionTimeout)

	cfg.Upload.Dir = getEnv("UPLOAD_DIR", cfg.Upload.Dir)
	cfg.Upload.AllowedExtensions = getEnvAsSlice("UPLOAD_ALLOWED_EXTENSIONS", cfg.Upload.AllowedExtensions)
	cfg.Upload.MaxSizeMB = getEnvAsInt("UPLOAD_MAX_SIZE_MB", cfg.Upload.MaxSizeMB)

	cfg.Workers.Count = getEnvAsInt("WORKERS", cfg.Workers.Count)
	cfg.Workers.QueueSize = getEnvAsInt("WORKER_QUEUE_SIZE", cfg.Workers.QueueSize)

	cfg.Progress.PollInterval = getEnvAsDuration("PROGRESS_POLL_INTERVAL", cfg.Progress.PollInterval)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Security.RateLimit.RequestsPerMinute = getEnvAsInt("RATE_LIMIT_RPM", cfg.Security.RateLimit.RequestsPerMinute)
	cfg.Security.RateLimit.BurstSize = getEnvAsInt("RATE_LIMIT_BURST", cfg.Security.RateLimit.BurstSize)
	cfg.Security.RateLimit.CleanupInterval = getEnvAsDuration("RATE_LIMIT_CLEANUP", cfg.Security.RateLimit.CleanupInterval)
	cfg.Security.CORS.AllowedOrigins = getEnvAsSlice("CORS_ALLOWED_ORIGINS", cfg.Security.CORS.AllowedOrigins)
}

func (c *Config) validate() error {
	if c.Registry.QueryURL == "" {
		return fmt.Errorf("REGISTRY_QUERY_URL is required")
	}
	if c.Upload.Dir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one upload extension must be allowed")
	}

	if c.Workers.Count < minWorkers {
		c.Workers.Count = minWorkers
	}
	if c.Workers.Count > maxWorkers {
		c.Workers.Count = maxWorkers
	}
	if c.Workers.QueueSize < 1 {
		c.Workers.QueueSize = 1
	}
	if c.Progress.PollInterval <= 0 {
		c.Progress.PollInterval = time.Second
	}

	return nil
}

// IsAllowedExtension reports whether ext (with or without the dot) may be uploaded
func (u UploadConfig) IsAllowedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, allowed := range u.AllowedExtensions {
		if strings.ToLower(strings.TrimPrefix(allowed, ".")) == ext {
			return true
		}
	}
	return false
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("15s") or plain seconds ("15").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
