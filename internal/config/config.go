// Package config loads the immutable service configuration.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Source   SourceConfig   `mapstructure:"source"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	ETL      ETLConfig      `mapstructure:"etl"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// PublicURL overrides scheme and host of pagination links, e.g. behind a proxy.
	PublicURL string `mapstructure:"public_url"`
}

type StoreConfig struct {
	// Driver is postgres or memory.
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// SourceConfig points at the operational database raw records are extracted from.
type SourceConfig struct {
	URL   string `mapstructure:"url"`
	Table string `mapstructure:"table"`
}

// CacheConfig configures the redis query cache. An empty address disables caching.
type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	TTL             time.Duration `mapstructure:"ttl"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// KafkaConfig configures ETL report publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type ETLConfig struct {
	Format       string `mapstructure:"format"`
	CSVDelimiter string `mapstructure:"csv_delimiter"`
	Sheet        string `mapstructure:"sheet"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional yaml file and AYUDAS_* environment variables.
// An empty path looks for config.yaml in the working directory.
func Load(path string) (Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("AYUDAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return Config{}, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// every key needs a default, AutomaticEnv only reaches keys viper already knows
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.public_url", "")
	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("source.url", "")
	v.SetDefault("source.table", "asistencia_humanitaria")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.breaker_failures", 5)
	v.SetDefault("cache.breaker_timeout", 30*time.Second)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "ayudas.etl.runs")
	v.SetDefault("etl.format", "")
	v.SetDefault("etl.csv_delimiter", ",")
	v.SetDefault("etl.sheet", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return eris.New("config: database.url is required for the postgres store")
		}
	case DriverMemory:
	default:
		return eris.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if len([]rune(c.ETL.CSVDelimiter)) > 1 {
		return eris.Errorf("config: etl.csv_delimiter must be a single character")
	}
	if c.Cache.RedisAddr != "" && c.Cache.TTL <= 0 {
		return eris.New("config: cache.ttl must be positive")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return eris.New("config: kafka.topic is required with kafka.brokers")
	}
	return nil
}

// Delimiter is the CSV delimiter rune, 0 for the default.
func (c ETLConfig) Delimiter() rune {
	for _, r := range c.CSVDelimiter {
		return r
	}
	return 0
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
