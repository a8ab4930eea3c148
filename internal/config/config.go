// Package config loads llvmls.toml. Every key is optional; missing keys keep
// their defaults and command-line flags override what the file sets.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"llvmls/internal/trace"
)

// FileName is the name searched for by Find.
const FileName = "llvmls.toml"

// Config mirrors the sections of llvmls.toml.
type Config struct {
	Index IndexConfig `toml:"index"`
	Cache CacheConfig `toml:"cache"`
	Trace TraceConfig `toml:"trace"`
	LSP   LSPConfig   `toml:"lsp"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

type IndexConfig struct {
	Jobs       int      `toml:"jobs"`
	Extensions []string `toml:"extensions"`
}

type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

type LSPConfig struct {
	MetricsAddr string `toml:"metrics_addr"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Index: IndexConfig{
			Jobs:       runtime.GOMAXPROCS(0),
			Extensions: []string{".ll"},
		},
		Trace: TraceConfig{Level: "off"},
	}
}

// Find walks up from startDir looking for llvmls.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if meta.IsDefined("index", "jobs") && cfg.Index.Jobs < 1 {
		return Config{}, fmt.Errorf("%s: [index].jobs must be at least 1", path)
	}
	if meta.IsDefined("index", "extensions") {
		if len(cfg.Index.Extensions) == 0 {
			return Config{}, fmt.Errorf("%s: [index].extensions must not be empty", path)
		}
		for i, ext := range cfg.Index.Extensions {
			ext = strings.TrimSpace(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			cfg.Index.Extensions[i] = ext
		}
	}
	if meta.IsDefined("trace", "level") {
		if _, err := trace.ParseLevel(cfg.Trace.Level); err != nil {
			return Config{}, fmt.Errorf("%s: [trace].level: %w", path, err)
		}
	}
	cfg.Path = path
	return cfg, nil
}

// Resolve loads explicit when it is set, otherwise the nearest llvmls.toml
// above startDir, otherwise the defaults.
func Resolve(explicit, startDir string) (Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// CacheDir returns the disk cache directory, defaulting to the user cache
// directory.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		if !filepath.IsAbs(c.Cache.Dir) && c.Path != "" {
			return filepath.Join(filepath.Dir(c.Path), c.Cache.Dir), nil
		}
		return c.Cache.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return filepath.Join(base, "llvmls"), nil
}
