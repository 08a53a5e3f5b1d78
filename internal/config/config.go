package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultGridSize  = 8
	DefaultAddr      = ":8080"
	DefaultServerURL = "http://127.0.0.1:8080"
	DefaultLongPress = 800 * time.Millisecond
)

// Config is read from the environment, after an optional .env file.
type Config struct {
	DataPath    string        // BINGO_DATA; empty selects the bundled card
	GridSize    int           // BINGO_GRID_SIZE
	Addr        string        // BINGO_ADDR, listen address for serve
	ServerURL   string        // BINGO_SERVER_URL, used by remote
	ServerToken string        // BINGO_SERVER_TOKEN, bearer token serve requires
	StaticDir   string        // BINGO_STATIC_DIR, served at / when set
	LongPress   time.Duration // BINGO_LONG_PRESS
	LogFile     string        // BINGO_LOG_FILE, where the TUI writes logs
	Debug       bool          // DEBUG
}

// Load reads .env from the working directory when present and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
		log.Debug("no .env file found, reading environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	cfg := Config{
		DataPath:    os.Getenv("BINGO_DATA"),
		GridSize:    DefaultGridSize,
		Addr:        DefaultAddr,
		ServerURL:   DefaultServerURL,
		ServerToken: os.Getenv("BINGO_SERVER_TOKEN"),
		StaticDir:   os.Getenv("BINGO_STATIC_DIR"),
		LongPress:   DefaultLongPress,
		LogFile:     os.Getenv("BINGO_LOG_FILE"),
	}
	if v := os.Getenv("BINGO_GRID_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BINGO_GRID_SIZE: %w", err)
		}
		if n <= 0 {
			return Config{}, errors.New("invalid BINGO_GRID_SIZE: must be greater than zero")
		}
		cfg.GridSize = n
	}
	if v := os.Getenv("BINGO_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("BINGO_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("BINGO_LONG_PRESS"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BINGO_LONG_PRESS: %w", err)
		}
		if d <= 0 {
			return Config{}, errors.New("invalid BINGO_LONG_PRESS: must be greater than zero")
		}
		cfg.LongPress = d
	}
	if v := os.Getenv("DEBUG"); v != "" {
		dbg, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEBUG: %w", err)
		}
		cfg.Debug = dbg
	}
	return cfg, nil
}
