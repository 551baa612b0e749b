// Package store persists sessions, transcripts and evaluation reports.
package store

import (
	"fmt"

	"github.com/snow-ghost/interviewer/core"
)

// Config selects the backing store.
type Config struct {
	// Driver is memory, sqlite3 or postgres.
	Driver string `mapstructure:"driver" json:"driver"`
	DSN    string `mapstructure:"dsn" json:"dsn"`
}

func DefaultConfig() Config {
	return Config{Driver: "memory"}
}

func (c Config) Validate() error {
	switch c.Driver {
	case "", "memory":
		return nil
	case "sqlite3", "postgres":
		if c.DSN == "" {
			return fmt.Errorf("store driver %s requires a dsn", c.Driver)
		}
		return nil
	}
	return fmt.Errorf("unsupported store driver: %s", c.Driver)
}

// New opens the configured store.
func New(config Config) (core.SessionStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Driver {
	case "sqlite3", "postgres":
		s, err := NewSQLStore(config.Driver, config.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s store: %w", config.Driver, err)
		}
		return s, nil
	}
	return NewMemoryStore(), nil
}
