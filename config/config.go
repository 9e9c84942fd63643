package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config is the tool's configuration surface, loaded from a
// liquidvars.config JSON file in the theme directory.
type Config struct {
	ThemeDir          string   `json:"theme_dir"`
	ListenAddr        string   `json:"listen_addr"`
	IncludePatterns   []string `json:"include_patterns,omitempty"`
	ExcludePatterns   []string `json:"exclude_patterns,omitempty"`
	RemToPxConversion bool     `json:"rem_to_px_conversion"`
	BaseFontSize      float64  `json:"base_font_size"`
	OnlyRoot          bool     `json:"only_root"`
	WatchDebounceMS   int      `json:"watch_debounce_ms,omitempty"`
}

const fileName = "liquidvars.config"

func Default() Config {
	return Config{
		ThemeDir:          ".",
		ListenAddr:        ":8080",
		IncludePatterns:   []string{"**/*.liquid", "**/*.css"},
		ExcludePatterns:   []string{"node_modules/**"},
		RemToPxConversion: true,
		BaseFontSize:      16,
		OnlyRoot:          true,
		WatchDebounceMS:   300,
	}
}

func Load(themeDir string) (Config, error) {
	cfgPath := filepath.Join(themeDir, fileName)

	f, err := os.Open(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ThemeDir = themeDir
			return cfg, nil
		}
		return Config{}, err
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, err
	}

	def := Default()
	if cfg.ThemeDir == "" {
		cfg.ThemeDir = themeDir
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	if len(cfg.IncludePatterns) == 0 {
		cfg.IncludePatterns = def.IncludePatterns
	}
	if cfg.BaseFontSize <= 0 {
		cfg.BaseFontSize = def.BaseFontSize
	}
	if cfg.WatchDebounceMS <= 0 {
		cfg.WatchDebounceMS = def.WatchDebounceMS
	}

	return cfg, nil
}

func Save(cfg Config) error {
	cfgPath := filepath.Join(cfg.ThemeDir, fileName)

	if err := os.MkdirAll(cfg.ThemeDir, 0o755); err != nil {
		return err
	}

	tmp := cfgPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, cfgPath)
}
