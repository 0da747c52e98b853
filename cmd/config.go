package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	console "github.com/phsym/console-slog"
)

// Config is read from LDPIPE_* environment variables. A .env file in the
// working directory is loaded first (see main.go). Command flags take
// precedence.
type Config struct {
	LogLevel    slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	UserAgent   string        `env:"USER_AGENT"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"30s"`
	MaxPages    int           `env:"MAX_PAGES" envDefault:"100"`
	Concurrency int           `env:"CONCURRENCY" envDefault:"4"`
}

func loadConfig() (Config, error) {
	c, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "LDPIPE_"})
	if err != nil {
		return c, fmt.Errorf("reading configuration: %w", err)
	}
	return c, nil
}

func newLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(console.NewHandler(w, &console.HandlerOptions{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}
