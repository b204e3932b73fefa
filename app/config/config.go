package config

import (
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Environment keys.
const (
	KeyAddr          = "ADDR"
	KeyAPIBaseURL    = "API_BASE_URL"
	KeyAPITimeout    = "API_TIMEOUT"
	KeyRevalidate    = "REVALIDATE"
	KeyDBPath        = "DB_PATH"
	KeySessionTTL    = "SESSION_TTL"
	KeyRedirectDelay = "REDIRECT_DELAY"
	KeyLogLevel      = "LOG_LEVEL"
	KeyLogFormat     = "LOG_FORMAT"
	KeyLogFile       = "LOG_FILE"
	KeyCookieSecure  = "COOKIE_SECURE"
)

// Config holds all runtime settings.
type Config struct {
	Addr          string        `validate:"required"`
	APIBaseURL    string        `validate:"required,url"`
	APITimeout    time.Duration `validate:"min=0"`
	Revalidate    time.Duration `validate:"min=0"`
	DBPath        string        `validate:"required"`
	SessionTTL    time.Duration `validate:"min=0"`
	RedirectDelay time.Duration `validate:"min=0"`
	LogLevel      string        `validate:"oneof=debug info warn error"`
	LogFormat     string        `validate:"oneof=text json"`
	LogFile       string
	CookieSecure  bool
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Addr:          ":8080",
		APIBaseURL:    "http://localhost:3001",
		APITimeout:    10 * time.Second,
		Revalidate:    10 * time.Second,
		DBPath:        "data/badger",
		SessionTTL:    0,
		RedirectDelay: time.Second,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load builds the configuration from defaults, then the optional .env files,
// then the process environment, then overrides (keyed by environment name,
// usually from command-line flags). Missing .env files are ignored.
func Load(overrides map[string]string, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrapf(err, "load %s", file)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := overrides[key]; ok {
			return v, true
		}
		v, ok := os.LookupEnv(key)
		return v, ok && v != ""
	}

	cfg := Default()
	var err error
	setString(lookup, KeyAddr, &cfg.Addr)
	setString(lookup, KeyAPIBaseURL, &cfg.APIBaseURL)
	setString(lookup, KeyDBPath, &cfg.DBPath)
	setString(lookup, KeyLogLevel, &cfg.LogLevel)
	setString(lookup, KeyLogFormat, &cfg.LogFormat)
	setString(lookup, KeyLogFile, &cfg.LogFile)
	for key, dst := range map[string]*time.Duration{
		KeyAPITimeout:    &cfg.APITimeout,
		KeyRevalidate:    &cfg.Revalidate,
		KeySessionTTL:    &cfg.SessionTTL,
		KeyRedirectDelay: &cfg.RedirectDelay,
	} {
		if err = setDuration(lookup, key, dst); err != nil {
			return Config{}, err
		}
	}
	if v, ok := lookup(KeyCookieSecure); ok {
		if cfg.CookieSecure, err = strconv.ParseBool(v); err != nil {
			return Config{}, errors.Wrapf(err, "invalid %s", KeyCookieSecure)
		}
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fe.Field() + " (" + fe.Tag() + ")"
			}
			return errors.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

func setString(lookup func(string) (string, bool), key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setDuration(lookup func(string) (string, bool), key string, dst *time.Duration) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", key)
	}
	*dst = d
	return nil
}
