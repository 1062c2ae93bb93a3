package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "csv", cfg.WordSource)
	assert.Equal(t, DefaultGame(), cfg.Game)
	assert.Equal(t, 5, cfg.Game.WordsPerRound)
	assert.Equal(t, 5, cfg.Game.TotalRounds)
	assert.Equal(t, 4, cfg.Game.MaxPlayers)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("TOTAL_ROUNDS", "3")
	t.Setenv("ROUND_DURATION", "90s")
	t.Setenv("SYNONYM_PENALTY", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "pgx", cfg.DB.Driver)
	assert.Equal(t, 3, cfg.Game.TotalRounds)
	assert.Equal(t, 90*time.Second, cfg.Game.RoundDuration)
	assert.Equal(t, 2, cfg.Game.SynonymPenalty)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"PORT":           "eighty",
		"ROUND_DURATION": "soon",
		"MAX_PLAYERS":    "6",
		"TOTAL_ROUNDS":   "0",
		"TICK_INTERVAL":  "-1s",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	db := Database{
		Host: "localhost", Port: "5432", Username: "u", Password: "p",
		Database: "taboo", Schema: "public",
	}
	assert.Equal(t, "postgres://u:p@localhost:5432/taboo?sslmode=disable&search_path=public", db.PostgresDSN())
}
