package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mb "github.com/saeidalz13/battleship-engine/models/battleship"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STAGE", StageProd)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.Game.BoardSize)
	assert.Equal(t, "battleships.txt", cfg.Game.FleetFile)
	assert.Equal(t, mb.AlgorithmCustom, cfg.PlayerAlgorithm())
	assert.Equal(t, mb.AlgorithmRandom, cfg.AIAlgorithm())
	assert.Equal(t, 0, cfg.Game.MaxAttempts)
	assert.Equal(t, 20*time.Minute, cfg.Session.CleanupInterval)
	assert.Equal(t, 30*time.Minute, cfg.Session.MaxAge)
	assert.Empty(t, cfg.FileUsed())
}

func TestLoadFile(t *testing.T) {
	t.Setenv("STAGE", StageProd)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: 9090
game:
  board_size: 8
  player_algorithm: diagonal
  max_attempts: 500
session:
  max_age: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 8, cfg.Game.BoardSize)
	assert.Equal(t, mb.AlgorithmDiagonal, cfg.PlayerAlgorithm())
	assert.Equal(t, 500, cfg.Game.MaxAttempts)
	assert.Equal(t, time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, path, cfg.FileUsed())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STAGE", StageProd)
	t.Setenv("PORT", "7171")
	t.Setenv("GAME_BOARD_SIZE", "6")
	t.Setenv("GAME_AI_ALGORITHM", "diagonal")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7171, cfg.Port)
	assert.Equal(t, 6, cfg.Game.BoardSize)
	assert.Equal(t, mb.AlgorithmDiagonal, cfg.AIAlgorithm())
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("STAGE", StageProd)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Stage:    StageDev,
			Port:     8000,
			LogLevel: "info",
			Game: GameConfig{
				BoardSize:       10,
				PlayerAlgorithm: "custom",
				AIAlgorithm:     "random",
			},
			Session: SessionConfig{
				CleanupInterval: time.Minute,
				MaxAge:          time.Minute,
			},
		}
	}
	require.NoError(t, Validate(valid()))

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"stage", func(c *Config) { c.Stage = "staging" }},
		{"port", func(c *Config) { c.Port = 0 }},
		{"board size", func(c *Config) { c.Game.BoardSize = -3 }},
		{"max attempts", func(c *Config) { c.Game.MaxAttempts = -1 }},
		{"player algorithm", func(c *Config) { c.Game.PlayerAlgorithm = "spiral" }},
		{"ai algorithm", func(c *Config) { c.Game.AIAlgorithm = "" }},
		{"custom ai algorithm", func(c *Config) { c.Game.AIAlgorithm = "custom" }},
		{"cleanup interval", func(c *Config) { c.Session.CleanupInterval = 0 }},
		{"max age", func(c *Config) { c.Session.MaxAge = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, Validate(c))
		})
	}
}
