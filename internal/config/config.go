// Package config loads decaf.toml, the project file that carries analysis
// and output settings. The file is looked up from the working directory
// upward; command-line flags override what it says.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"decaf/internal/sema"
)

// FileName is the project file searched for by Find.
const FileName = "decaf.toml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Analysis Analysis `toml:"analysis"`
	Output   Output   `toml:"output"`
	Cache    Cache    `toml:"cache"`
}

type Analysis struct {
	ForCondition   string `toml:"for_condition"`
	EntryPoint     string `toml:"entry_point"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

type Output struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Manifest is a loaded project file.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Default returns the settings used when no decaf.toml exists.
func Default() Config {
	return Config{
		Analysis: Analysis{
			ForCondition:   sema.ForConditionBoolean.String(),
			EntryPoint:     sema.DefaultEntryPoint,
			MaxDiagnostics: 100,
		},
		Output: Output{
			Format: "pretty",
			Color:  "auto",
		},
	}
}

// Find walks from startDir up to the filesystem root looking for decaf.toml.
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

// Discover finds and loads the nearest decaf.toml. Without one it returns
// the defaults and ok=false.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return &Manifest{Config: Default()}, false, err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

// Load reads one file. Keys it does not set keep their defaults; unknown
// keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys %s: %w", path, strings.Join(keys, ", "), ErrInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values and limits.
func (c Config) Validate() error {
	var errs []error
	if _, err := sema.ParseForCondition(c.Analysis.ForCondition); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Analysis.EntryPoint) == "" {
		errs = append(errs, errors.New("[analysis].entry_point must not be empty"))
	}
	if c.Analysis.MaxDiagnostics < 0 {
		errs = append(errs, fmt.Errorf("[analysis].max_diagnostics must be >= 0, got %d", c.Analysis.MaxDiagnostics))
	}
	switch c.Output.Format {
	case "pretty", "short", "json":
	default:
		errs = append(errs, fmt.Errorf("[output].format %q (expected: pretty|short|json)", c.Output.Format))
	}
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		errs = append(errs, fmt.Errorf("[output].color %q (expected: auto|on|off)", c.Output.Color))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// ForCondition returns the parsed for-condition rule.
func (c Config) ForCondition() sema.ForCondition {
	rule, err := sema.ParseForCondition(c.Analysis.ForCondition)
	if err != nil {
		return sema.ForConditionBoolean
	}
	return rule
}

// CacheDir resolves the cache directory: the configured one, relative to
// root when not absolute, or the user cache dir.
func (c Config) CacheDir(root string) (string, error) {
	if dir := strings.TrimSpace(c.Cache.Dir); dir != "" {
		if filepath.IsAbs(dir) || root == "" {
			return dir, nil
		}
		return filepath.Join(root, dir), nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(base, "decafc"), nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
