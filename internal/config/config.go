// Package config reads process settings from the environment, after loading .env if present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	ServerURL   string
	Nickname    string
	Env         string
	LogLevel    string
	Lang        string
	HTTPAddr    string
	RoomLink    string
	Locator     string
	LocatorPath string
	RedisURL    string
	JournalDSN  string
	AutoStart   bool
	ErrorTTL    time.Duration
	InfoTTL     time.Duration
}

func Defaults() Config {
	return Config{
		ServerURL:   "ws://127.0.0.1:8007/ws",
		Env:         "local",
		LogLevel:    "info",
		Lang:        "en",
		HTTPAddr:    "127.0.0.1:8090",
		Locator:     "file",
		LocatorPath: ".durak-room",
		ErrorTTL:    3 * time.Second,
		InfoTTL:     10 * time.Second,
	}
}

// Load reads the given .env files (".env" when none are named; missing files are fine)
// and then the DURAK_* variables. Parse problems are reported together.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Defaults.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Defaults()
	var errs error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}

	str("DURAK_SERVER_URL", &c.ServerURL)
	str("DURAK_NICKNAME", &c.Nickname)
	str("DURAK_ENV", &c.Env)
	str("DURAK_LOG_LEVEL", &c.LogLevel)
	str("DURAK_LANG", &c.Lang)
	str("DURAK_HTTP_ADDR", &c.HTTPAddr)
	str("DURAK_ROOM_LINK", &c.RoomLink)
	str("DURAK_LOCATOR", &c.Locator)
	str("DURAK_LOCATOR_PATH", &c.LocatorPath)
	str("DURAK_REDIS_URL", &c.RedisURL)
	str("DURAK_JOURNAL_DSN", &c.JournalDSN)
	dur("DURAK_ERROR_TTL", &c.ErrorTTL)
	dur("DURAK_INFO_TTL", &c.InfoTTL)

	if v, ok := lookup("DURAK_AUTO_START"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("DURAK_AUTO_START: %w", err))
		}
		c.AutoStart = b
	}

	if errs != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, errs)
	}
	return c, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs error
	add := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf(format, args...))
	}

	if c.Nickname == "" {
		add("DURAK_NICKNAME is required")
	}
	if u, err := url.Parse(c.ServerURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		add("DURAK_SERVER_URL must be a ws:// or wss:// url, got %q", c.ServerURL)
	}
	if c.Env != "local" && c.Env != "production" {
		add("DURAK_ENV must be local or production, got %q", c.Env)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		add("DURAK_LOG_LEVEL: %v", err)
	}
	switch c.Locator {
	case "memory":
	case "file":
		if c.LocatorPath == "" {
			add("DURAK_LOCATOR_PATH is required for the file locator")
		}
	case "redis":
		if c.RedisURL == "" {
			add("DURAK_REDIS_URL is required for the redis locator")
		}
	default:
		add("DURAK_LOCATOR must be memory, file or redis, got %q", c.Locator)
	}
	if c.ErrorTTL <= 0 {
		add("DURAK_ERROR_TTL must be positive")
	}
	if c.InfoTTL <= 0 {
		add("DURAK_INFO_TTL must be positive")
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, errs)
	}
	return nil
}

func (c Config) Local() bool { return c.Env == "local" }
