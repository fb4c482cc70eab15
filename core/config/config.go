package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Storage    StorageConfig    `mapstructure:"storage"`
	DataSource DataSourceConfig `mapstructure:"datasource"`
	Solver     SolverConfig     `mapstructure:"solver"`
	Planner    PlannerConfig    `mapstructure:"planner"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
	Env     string `mapstructure:"env"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuthConfig struct {
	// Empty disables bearer auth on trigger endpoints.
	JWTSecret string `mapstructure:"jwt_secret"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
}

type DataSourceConfig struct {
	GraphURL    string        `mapstructure:"graph_url"`
	AdminSecret string        `mapstructure:"admin_secret"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SolverConfig struct {
	URL         string        `mapstructure:"url"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	CallbackURL string        `mapstructure:"callback_url"`
	Delay       int           `mapstructure:"delay"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type PlannerConfig struct {
	// Granularity is the slot and part width in minutes, 15 or 30.
	Granularity int `mapstructure:"granularity"`
	Workers     int `mapstructure:"workers"`
}

type QueueConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	QueueName   string `mapstructure:"queue_name"`
}

type SchedulerConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Timezone  string `mapstructure:"timezone"`
	PruneSpec string `mapstructure:"prune_spec"`
	// Retention in days for persisted run reports.
	Retention int `mapstructure:"retention"`
}

var (
	mu       sync.RWMutex
	instance *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "atomic-planner")
	v.SetDefault("storage.force_path_style", true)
	v.SetDefault("datasource.timeout", 30*time.Second)
	v.SetDefault("solver.delay", 10000)
	v.SetDefault("solver.timeout", 30*time.Second)
	v.SetDefault("planner.granularity", 30)
	v.SetDefault("planner.workers", 8)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.queue_name", "schedule_assist")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.prune_spec", "0 0 3 * * *")
	v.SetDefault("scheduler.retention", 30)
}

// Load reads .env, an optional config file and the environment.
// Keys map to env vars by upper-casing and replacing dots, e.g. solver.url -> SOLVER_URL.
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range envOnlyKeys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	mu.Lock()
	instance = &cfg
	mu.Unlock()

	return &cfg, nil
}

var envOnlyKeys = []string{
	"server.base_url",
	"auth.jwt_secret",
	"database.host", "database.user", "database.password", "database.name",
	"redis.password", "redis.db",
	"storage.endpoint", "storage.access_key_id", "storage.secret_access_key",
	"datasource.graph_url", "datasource.admin_secret",
	"solver.url", "solver.username", "solver.password", "solver.callback_url",
}

// Get returns the loaded config. It panics if Load was never called.
func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config: Get called before Load")
	}
	return cfg
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}

// Set installs cfg as the global config. Used by tests and by callers that build a Config by hand.
func Set(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}

// Validate returns an error describing every invalid field, or nil.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, errors.New("SERVER_PORT must be positive"))
	}

	if c.DataSource.GraphURL == "" {
		errs = append(errs, errors.New("DATASOURCE_GRAPH_URL is required"))
	}
	if c.DataSource.AdminSecret == "" {
		errs = append(errs, errors.New("DATASOURCE_ADMIN_SECRET is required"))
	}

	if c.Solver.URL == "" {
		errs = append(errs, errors.New("SOLVER_URL is required"))
	}
	if c.Solver.CallbackURL == "" {
		errs = append(errs, errors.New("SOLVER_CALLBACK_URL is required"))
	}

	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("STORAGE_BUCKET is required"))
	}

	if c.Planner.Granularity != 15 && c.Planner.Granularity != 30 {
		errs = append(errs, fmt.Errorf("PLANNER_GRANULARITY must be 15 or 30, got %d", c.Planner.Granularity))
	}
	if c.Planner.Workers < 1 {
		errs = append(errs, errors.New("PLANNER_WORKERS must be at least 1"))
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("DATABASE_HOST is required when DATABASE_ENABLED is true"))
		}
		if c.Database.DBName == "" {
			errs = append(errs, errors.New("DATABASE_NAME is required when DATABASE_ENABLED is true"))
		}
	}

	if c.Scheduler.Enabled {
		if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("SCHEDULER_TIMEZONE is invalid: %w", err))
		}
		if c.Scheduler.Retention < 1 {
			errs = append(errs, errors.New("SCHEDULER_RETENTION must be at least 1 day"))
		}
	}

	return errors.Join(errs...)
}
