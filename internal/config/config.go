package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
	"github.com/spf13/viper"
)

const (
	StageDev  = "dev"
	StageProd = "prod"
)

type Config struct {
	Stage        string        `mapstructure:"stage"`
	Port         int           `mapstructure:"port"`
	LogLevel     string        `mapstructure:"log_level"`
	DatabaseURL  string        `mapstructure:"database_url"`
	MigrationDir string        `mapstructure:"migration_dir"`
	Game         GameConfig    `mapstructure:"game"`
	Session      SessionConfig `mapstructure:"session"`

	v *viper.Viper
}

type GameConfig struct {
	BoardSize       int    `mapstructure:"board_size"`
	FleetFile       string `mapstructure:"fleet_file"`
	PlacementFile   string `mapstructure:"placement_file"`
	PlayerAlgorithm string `mapstructure:"player_algorithm"`
	AIAlgorithm     string `mapstructure:"ai_algorithm"`
	MaxAttempts     int    `mapstructure:"max_attempts"`
	Seed            int64  `mapstructure:"seed"`
}

type SessionConfig struct {
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	MaxAge          time.Duration `mapstructure:"max_age"`
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("stage", StageDev)
	v.SetDefault("port", 8000)
	v.SetDefault("log_level", "info")
	v.SetDefault("database_url", "")
	v.SetDefault("migration_dir", "file://db/migration")

	v.SetDefault("game.board_size", 10)
	v.SetDefault("game.fleet_file", "battleships.txt")
	v.SetDefault("game.placement_file", "placement.json")
	v.SetDefault("game.player_algorithm", "custom")
	v.SetDefault("game.ai_algorithm", "random")
	v.SetDefault("game.max_attempts", 0)
	v.SetDefault("game.seed", 0)

	v.SetDefault("session.cleanup_interval", "20m")
	v.SetDefault("session.max_age", "30m")
}

// Load reads defaults, then the optional config file, then the
// environment. Outside prod a .env file is loaded into the environment
// first when one exists.
func Load(configPath string) (*Config, error) {
	if os.Getenv("STAGE") != StageProd {
		if err := godotenv.Load(".env"); err != nil {
			log.Debug().Err(err).Msg("no .env file loaded")
		}
	}

	v := viper.New()
	setViperDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Watch reloads the config file whenever it changes. onChange only sees
// configs that pass validation; invalid edits are logged and ignored.
func (c *Config) Watch(onChange func(*Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{v: c.v}
		if err := c.v.Unmarshal(next); err != nil {
			log.Error().Err(err).Str("file", e.Name).Msg("unable to decode reloaded config")
			return
		}
		if err := Validate(next); err != nil {
			log.Error().Err(err).Str("file", e.Name).Msg("reloaded config rejected")
			return
		}

		log.Info().Str("file", e.Name).Msg("config reloaded")
		if onChange != nil {
			onChange(next)
		}
	})
	c.v.WatchConfig()
}

func (c *Config) IsProd() bool {
	return c.Stage == StageProd
}

func (c *Config) FileUsed() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}

func (c *Config) PlayerAlgorithm() mb.Algorithm {
	alg, _ := mb.ParseAlgorithm(c.Game.PlayerAlgorithm)
	return alg
}

func (c *Config) AIAlgorithm() mb.Algorithm {
	alg, _ := mb.ParseAlgorithm(c.Game.AIAlgorithm)
	return alg
}

func Validate(c *Config) error {
	if c.Stage != StageDev && c.Stage != StageProd {
		return fmt.Errorf("stage must be either %s or %s", StageDev, StageProd)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.Game.BoardSize <= 0 {
		return fmt.Errorf("game.board_size must be positive")
	}
	if c.Game.MaxAttempts < 0 {
		return fmt.Errorf("game.max_attempts must be non-negative")
	}
	if _, err := mb.ParseAlgorithm(c.Game.PlayerAlgorithm); err != nil {
		return fmt.Errorf("game.player_algorithm: %w", err)
	}
	aiAlg, err := mb.ParseAlgorithm(c.Game.AIAlgorithm)
	if err != nil {
		return fmt.Errorf("game.ai_algorithm: %w", err)
	}
	if aiAlg == mb.AlgorithmCustom {
		return fmt.Errorf("game.ai_algorithm cannot be custom")
	}
	if c.Session.CleanupInterval <= 0 {
		return fmt.Errorf("session.cleanup_interval must be positive")
	}
	if c.Session.MaxAge <= 0 {
		return fmt.Errorf("session.max_age must be positive")
	}
	return nil
}
