// Package config loads the client settings from a TOML file and the
// environment. Environment variables win over the file, which wins over
// DefaultConfig.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	APIURL         string        `toml:"api_url" env:"VOYAGE_API_URL"` // empty selects the in-memory backend
	RequestTimeout time.Duration `toml:"request_timeout" env:"VOYAGE_REQUEST_TIMEOUT"`
	DemoLatency    time.Duration `toml:"demo_latency" env:"VOYAGE_DEMO_LATENCY"`

	StatePath string `toml:"state_path" env:"VOYAGE_STATE_PATH"`

	LogPath          string `toml:"log_path" env:"VOYAGE_LOG_PATH"`
	LogLevel         string `toml:"log_level" env:"VOYAGE_LOG_LEVEL"`
	InternalLogLevel string `toml:"internal_log_level" env:"VOYAGE_INTERNAL_LOG_LEVEL"`

	Locales []string `toml:"locales" env:"VOYAGE_LOCALES" envSeparator:","`

	BackButtonDevice string `toml:"back_button_device" env:"VOYAGE_BACK_BUTTON_DEVICE"` // evdev path, empty disables
	BackButtonCode   uint16 `toml:"back_button_code" env:"VOYAGE_BACK_BUTTON_CODE"`

	SearchDebounce time.Duration `toml:"search_debounce" env:"VOYAGE_SEARCH_DEBOUNCE"`
}

func DefaultConfig() Config {
	return Config{
		RequestTimeout:   10 * time.Second,
		DemoLatency:      400 * time.Millisecond,
		StatePath:        defaultStatePath(),
		LogLevel:         "info",
		InternalLogLevel: "error",
		Locales:          defaultLocales(),
		BackButtonCode:   158, // KEY_BACK
		SearchDebounce:   300 * time.Millisecond,
	}
}

// DefaultPath is where Load looks when no file is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "voyage.toml"
	}
	return filepath.Join(dir, "voyage", "config.toml")
}

// Load reads path over the defaults and then applies the environment.
// A missing file is not an error; unknown keys in an existing file are.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				sort.Strings(keys)
				return Config{}, fmt.Errorf("parse %s: unknown keys %s", path, strings.Join(keys, ", "))
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.SearchDebounce < 0 {
		errs = append(errs, errors.New("search_debounce must not be negative"))
	}
	if c.DemoLatency < 0 {
		errs = append(errs, errors.New("demo_latency must not be negative"))
	}
	if c.APIURL != "" && !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		errs = append(errs, fmt.Errorf("api_url %q must be an http(s) URL", c.APIURL))
	}
	if c.StatePath == "" {
		errs = append(errs, errors.New("state_path is required"))
	}
	return errors.Join(errs...)
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "voyage.db"
	}
	return filepath.Join(home, ".local", "state", "voyage", "state.db")
}

func defaultLocales() []string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" && v != "C" && v != "POSIX" {
			// en_IN.UTF-8 -> en-IN
			v, _, _ = strings.Cut(v, ".")
			return []string{strings.ReplaceAll(v, "_", "-")}
		}
	}
	return []string{"en"}
}
