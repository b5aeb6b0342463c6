package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
}

type LoggerConfig struct {
	Level     string `mapstructure:"level"`
	AddSource bool   `mapstructure:"add_source"`
}

type StoreConfig struct {
	Driver         string        `mapstructure:"driver"`
	URI            string        `mapstructure:"uri"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
	ConnectRetries int           `mapstructure:"connect_retries"`
	AllowedTenants []string      `mapstructure:"allowed_tenants"`
	Seed           string        `mapstructure:"seed"`
	SeedTimeout    time.Duration `mapstructure:"seed_timeout"`
}

type ReportsConfig struct {
	PNLFields []string `mapstructure:"pnl_fields"`
}

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Store   StoreConfig   `mapstructure:"store"`
	Reports ReportsConfig `mapstructure:"reports"`
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Load lee el archivo y pisa con variables de entorno. Un cfgFile explícito debe existir;
// sin cfgFile se busca config.toml en ./config y /etc/reporting-api.
// Claves anidadas: STORE__URI; además hay alias planos (MONGODB_URI, PORT, LOG_LEVEL...).
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))
	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/reporting-api")
		_ = v.ReadInConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.HTTP.AllowedOrigins = splitList(cfg.HTTP.AllowedOrigins)
	cfg.Store.AllowedTenants = splitList(cfg.Store.AllowedTenants)
	cfg.Reports.PNLFields = splitList(cfg.Reports.PNLFields)
	return &cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.read_header_timeout", 10*time.Second)
	v.SetDefault("http.allowed_origins", []string{"*"})
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("store.driver", DriverMongo)
	v.SetDefault("store.uri", "")
	v.SetDefault("store.connect_timeout", 10*time.Second)
	v.SetDefault("store.query_timeout", 15*time.Second)
	v.SetDefault("store.connect_retries", 3)
	v.SetDefault("store.allowed_tenants", []string{})
	v.SetDefault("store.seed", "")
	v.SetDefault("store.seed_timeout", 15*time.Second)
	v.SetDefault("reports.pnl_fields", []string{"revenue", "cm1", "cm2", "cm3"})
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("http.port", "HTTP__PORT", "PORT")
	_ = v.BindEnv("http.allowed_origins", "HTTP__ALLOWED_ORIGINS", "ALLOWED_ORIGINS")
	_ = v.BindEnv("logger.level", "LOGGER__LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("logger.add_source", "LOGGER__ADD_SOURCE", "LOG_ADD_SOURCE")
	_ = v.BindEnv("store.driver", "STORE__DRIVER", "STORE_DRIVER")
	_ = v.BindEnv("store.uri", "STORE__URI", "MONGODB_URI")
	_ = v.BindEnv("store.query_timeout", "STORE__QUERY_TIMEOUT", "QUERY_TIMEOUT")
	_ = v.BindEnv("store.allowed_tenants", "STORE__ALLOWED_TENANTS", "ALLOWED_TENANTS")
	_ = v.BindEnv("store.seed", "STORE__SEED", "SEED_PATH")
	_ = v.BindEnv("reports.pnl_fields", "REPORTS__PNL_FIELDS", "PNL_FIELDS")
}

// splitList acepta tanto listas reales como "a,b" venido de env.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.URI == "" {
			return fmt.Errorf("store.uri (MONGODB_URI) is required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.HTTP.Port == "" {
		return fmt.Errorf("http.port is required")
	}
	return nil
}

func (c LoggerConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
