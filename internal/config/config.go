// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvDB       = "LIVEGRAPH_DB"
	EnvDT       = "LIVEGRAPH_DT"
	EnvFrames   = "LIVEGRAPH_FRAMES"
	EnvWidth    = "LIVEGRAPH_WIDTH"
	EnvHeight   = "LIVEGRAPH_HEIGHT"
	EnvLogLevel = "LIVEGRAPH_LOG_LEVEL"
)

// Config holds settings shared by the CLI commands. Flags override these.
type Config struct {
	DB       string  `validate:"required"`
	DT       float64 `validate:"gt=0,lte=0.1"`
	Frames   int     `validate:"min=1,max=1000000"`
	Width    int     `validate:"min=1,max=4096"`
	Height   int     `validate:"min=1,max=4096"`
	LogLevel string  `validate:"oneof=debug info warn error"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DB:       "livegraph.db",
		DT:       1.0 / 60,
		Frames:   60,
		Width:    320,
		Height:   240,
		LogLevel: "info",
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the given .env files (".env" when none are named) into the
// process environment, then builds a Config from it. Missing files are
// ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from Default overlaid with the variables lookup
// finds, then validates it.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error

	if v, ok := lookup(EnvDB); ok {
		cfg.DB = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvDT); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvDT, err))
		}
		cfg.DT = f
	}
	for _, iv := range []struct {
		name string
		dst  *int
	}{
		{EnvFrames, &cfg.Frames},
		{EnvWidth, &cfg.Width},
		{EnvHeight, &cfg.Height},
	} {
		v, ok := lookup(iv.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", iv.name, err))
			continue
		}
		*iv.dst = n
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field against its bounds.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Errorf("config %s: %s", envName(fe.Field()), describe(fe)))
	}
	return errors.Join(msgs...)
}

func envName(field string) string {
	switch field {
	case "DB":
		return EnvDB
	case "DT":
		return EnvDT
	case "Frames":
		return EnvFrames
	case "Width":
		return EnvWidth
	case "Height":
		return EnvHeight
	case "LogLevel":
		return EnvLogLevel
	default:
		return field
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be set"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

// Level returns the slog level for LogLevel.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger returns a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Level()}))
}
