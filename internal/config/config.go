package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Game holds the tunable rules of a match.
type Game struct {
	WordsPerRound       int
	TotalRounds         int
	MaxPlayers          int
	RoundDuration       time.Duration
	ValidationDuration  time.Duration
	SuddenDeathDuration time.Duration
	TickInterval        time.Duration
	PointsPerWin        int
	MultiWordPenalty    int
	SynonymPenalty      int
}

type Database struct {
	Driver   string
	DSN      string
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Schema   string
}

type Config struct {
	Port         int
	LogLevel     string
	LogFormat    string
	WordSource   string
	WordsCSVPath string
	DB           Database
	Game         Game
}

// DefaultGame returns the standard match rules.
func DefaultGame() Game {
	return Game{
		WordsPerRound:       5,
		TotalRounds:         5,
		MaxPlayers:          4,
		RoundDuration:       60 * time.Second,
		ValidationDuration:  30 * time.Second,
		SuddenDeathDuration: 60 * time.Second,
		TickInterval:        1 * time.Second,
		PointsPerWin:        10,
		MultiWordPenalty:    1,
		SynonymPenalty:      1,
	}
}

// Load reads configuration from the environment, after applying an optional
// .env file from the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var (
		cfg = &Config{Game: DefaultGame()}
		err error
	)

	if cfg.Port, err = intEnv("PORT", 8080); err != nil {
		return nil, err
	}
	cfg.LogLevel = stringEnv("LOG_LEVEL", "info")
	cfg.LogFormat = stringEnv("LOG_FORMAT", "text")
	cfg.WordSource = stringEnv("WORD_SOURCE", "csv")
	cfg.WordsCSVPath = stringEnv("WORDS_CSV_PATH", "data/words.csv")

	cfg.DB = Database{
		Driver:   stringEnv("DB_DRIVER", "sqlite"),
		DSN:      os.Getenv("DB_DSN"),
		Host:     os.Getenv("DB_HOST"),
		Port:     stringEnv("DB_PORT", "5432"),
		Username: os.Getenv("DB_USERNAME"),
		Password: os.Getenv("DB_PASSWORD"),
		Database: os.Getenv("DB_DATABASE"),
		Schema:   stringEnv("DB_SCHEMA", "public"),
	}

	g := &cfg.Game
	ints := []struct {
		key string
		dst *int
	}{
		{"WORDS_PER_ROUND", &g.WordsPerRound},
		{"TOTAL_ROUNDS", &g.TotalRounds},
		{"MAX_PLAYERS", &g.MaxPlayers},
		{"POINTS_PER_WIN", &g.PointsPerWin},
		{"MULTIWORD_PENALTY", &g.MultiWordPenalty},
		{"SYNONYM_PENALTY", &g.SynonymPenalty},
	}
	for _, v := range ints {
		if *v.dst, err = intEnv(v.key, *v.dst); err != nil {
			return nil, err
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"ROUND_DURATION", &g.RoundDuration},
		{"VALIDATION_DURATION", &g.ValidationDuration},
		{"SUDDEN_DEATH_DURATION", &g.SuddenDeathDuration},
		{"TICK_INTERVAL", &g.TickInterval},
	}
	for _, v := range durations {
		if *v.dst, err = durationEnv(v.key, *v.dst); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects rule sets the engine cannot run.
func (g Game) Validate() error {
	switch {
	case g.MaxPlayers != 4:
		return fmt.Errorf("max players must be 4, got %d", g.MaxPlayers)
	case g.WordsPerRound < 1:
		return fmt.Errorf("words per round must be positive, got %d", g.WordsPerRound)
	case g.TotalRounds < 1:
		return fmt.Errorf("total rounds must be positive, got %d", g.TotalRounds)
	case g.RoundDuration <= 0, g.ValidationDuration <= 0, g.SuddenDeathDuration <= 0:
		return fmt.Errorf("phase durations must be positive")
	case g.TickInterval <= 0:
		return fmt.Errorf("tick interval must be positive, got %v", g.TickInterval)
	case g.MultiWordPenalty < 0, g.SynonymPenalty < 0, g.PointsPerWin < 0:
		return fmt.Errorf("penalties and points must not be negative")
	}
	return nil
}

// PostgresDSN builds a connection string from the discrete DB_* settings.
func (d Database) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
