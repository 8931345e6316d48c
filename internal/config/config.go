package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pokemon-tcg-ai/cardsync/internal/match"
)

// Config holds the full application configuration.
type Config struct {
	Store StoreConfig  `yaml:"store" mapstructure:"store"`
	Fetch FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Match match.Config `yaml:"match" mapstructure:"match"`
	Sets  SetsConfig   `yaml:"sets" mapstructure:"sets"`
	Log   LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FetchConfig configures the card scrapers.
type FetchConfig struct {
	LimitlessBaseURL   string  `yaml:"limitless_base_url" mapstructure:"limitless_base_url"`
	PokemonCardBaseURL string  `yaml:"pokemon_card_base_url" mapstructure:"pokemon_card_base_url"`
	UserAgent          string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec         float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst              int     `yaml:"burst" mapstructure:"burst"`
	MaxRetries         int     `yaml:"max_retries" mapstructure:"max_retries"`
	TimeoutSecs        int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	DataDir            string  `yaml:"data_dir" mapstructure:"data_dir"`
}

// SetsConfig points at an optional extra set-code table.
type SetsConfig struct {
	TablePath string `yaml:"table_path" mapstructure:"table_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CARDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "cardsync.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("fetch.limitless_base_url", "https://limitlesstcg.com")
	v.SetDefault("fetch.pokemon_card_base_url", "https://www.pokemon-card.com")
	v.SetDefault("fetch.user_agent", "cardsync/1.0 (card collection research)")
	v.SetDefault("fetch.rate_per_sec", 2.0)
	v.SetDefault("fetch.burst", 1)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.data_dir", "data")
	v.SetDefault("match.similarity_threshold", 0.6)
	v.SetDefault("match.pattern_threshold", 0.4)
	v.SetDefault("match.weights.name", 0.5)
	v.SetDefault("match.weights.hp", 0.2)
	v.SetDefault("match.weights.category", 0.15)
	v.SetDefault("match.weights.type", 0.15)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the fields a command depends on are usable. Mode is
// the command name; each command only validates what it touches.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	switch mode {
	case "fetch":
		if c.Fetch.DataDir == "" {
			problems = append(problems, "fetch.data_dir is required")
		}
		if c.Fetch.RatePerSec <= 0 {
			problems = append(problems, "fetch.rate_per_sec must be > 0")
		}
		if c.Fetch.Burst < 1 {
			problems = append(problems, "fetch.burst must be >= 1")
		}
	case "integrate":
		if err := c.Match.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
	case "runs":
		// Store checks above are all it needs.
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
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
