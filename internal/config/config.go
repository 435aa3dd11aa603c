package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/nissyi-gh/donewithit/internal/model"
	"github.com/nissyi-gh/donewithit/internal/todo"
)

const (
	AppName               = "donewithit"
	DefaultConfigFileName = "config.toml"
	DefaultLogFileName    = "donewithit.log"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const (
	OrderPinned = "pinned"
	OrderNewest = "newest"
)

type Storage struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
	DSN    string `toml:"dsn"`
	Table  string `toml:"table"`
}

type Config struct {
	DefaultCategory string   `toml:"default_category"`
	Categories      []string `toml:"categories"`
	Palette         []string `toml:"palette"`
	Order           string   `toml:"order"`
	DefaultTab      string   `toml:"default_tab"`
	LogFile         string   `toml:"log_file"`
	Verbose         bool     `toml:"verbose"`
	Storage         Storage  `toml:"storage"`
}

// ResolveConfigPath returns $XDG_CONFIG_HOME/donewithit/config.toml, falling
// back to ~/.config when XDG_CONFIG_HOME is unset.
func ResolveConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfigFileName
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist yet. Keys missing from the file keep their defaults.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = model.DefaultCategory
	}
	if cfg.Order == "" {
		cfg.Order = OrderPinned
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverSQLite
	}
	return cfg, cfg.Validate()
}

// Validate reports settings the program cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	if c.Order != OrderPinned && c.Order != OrderNewest {
		errs = append(errs, fmt.Errorf("unknown order %q", c.Order))
	}
	if len(c.Palette) == 0 {
		errs = append(errs, errors.New("palette is empty"))
	}
	if model.IsBuiltin(c.DefaultCategory) {
		errs = append(errs, fmt.Errorf("default_category %q is a reserved tab name", c.DefaultCategory))
	}
	return errors.Join(errs...)
}

// Ordering maps the order setting to a projection order.
func (c Config) Ordering() todo.Ordering {
	if c.Order == OrderNewest {
		return todo.NewestFirst
	}
	return todo.PinnedFirst
}

// InitialTab returns the tab to open on. Unknown names fall back to All.
func (c Config) InitialTab() model.Tab {
	for _, t := range model.BuiltinTabs {
		if strings.EqualFold(string(t), c.DefaultTab) {
			return t
		}
	}
	if c.DefaultTab != "" {
		return model.Tab(c.DefaultTab)
	}
	return model.TabAll
}

// LogPath returns the log file location, defaulting to the XDG state directory.
func (c Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultLogFileName
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, AppName, DefaultLogFileName)
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DefaultCategory: model.DefaultCategory,
		Categories:      []string{model.DefaultCategory, "Work", "Personal"},
		Palette:         append([]string(nil), todo.DefaultPalette...),
		Order:           OrderPinned,
		DefaultTab:      string(model.TabAll),
		Storage: Storage{
			Driver: DriverSQLite,
			Table:  "donewithit_blobs",
		},
	}
}
