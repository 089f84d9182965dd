// Package config loads the tidy configuration: classification rule
// sets, size tiers, temp-file patterns and engine defaults. Values are
// layered with koanf: built-in defaults, then an optional config file
// (TOML or YAML), then TIDY_* environment variables.
package config

import (
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/tidy/pkg/errors"
	"github.com/arthur-debert/tidy/pkg/logging"
)

// Config holds all engine settings.
type Config struct {
	// DryRun is the session default; individual requests may override it.
	DryRun bool `koanf:"dry_run"`

	// Root, when set, confines every operation to this directory tree.
	Root string `koanf:"root"`

	// Categories maps a destination folder name to the extensions it
	// collects, used by the by-type sort mode.
	Categories map[string][]string `koanf:"categories"`

	// FallbackCategory receives files no rule matches.
	FallbackCategory string `koanf:"fallback_category"`

	// DateSource selects which timestamp by-date sorting uses.
	DateSource string `koanf:"date_source"` // "modified" (default) or "created"

	// SizeTiers are evaluated in order; a file belongs to the first tier
	// whose max (in bytes) it does not exceed. MaxBytes 0 means no limit.
	SizeTiers []SizeTier `koanf:"size_tiers"`

	// Patterns is the ordered regex rule list for by-pattern sorting.
	Patterns []PatternRule `koanf:"patterns"`

	// Keywords for by-keyword sorting, checked in order.
	Keywords []string `koanf:"keywords"`

	// KeywordScanLimit bounds how many bytes of a file the by-keyword
	// mode reads.
	KeywordScanLimit int64 `koanf:"keyword_scan_limit"`

	// TempPatterns are the glob patterns cleanup-temp removes.
	TempPatterns []string `koanf:"temp_patterns"`

	// TrashDirName is the name of the per-parent soft-delete directory.
	TrashDirName string `koanf:"trash_dir_name"`

	// JournalPath, when set, makes the operation log durable by
	// appending each record to this file as a JSON line.
	JournalPath string `koanf:"journal_path"`
}

// SizeTier labels a size range for by-size sorting.
type SizeTier struct {
	Label    string `koanf:"label"`
	MaxBytes int64  `koanf:"max_bytes"`
}

// PatternRule associates a regex with a destination label.
type PatternRule struct {
	Pattern string `koanf:"pattern"`
	Label   string `koanf:"label"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		FallbackCategory: "Other",
		DateSource:       "modified",
		Categories: map[string][]string{
			"Documents": {"pdf", "doc", "docx", "txt", "rtf", "odt", "md"},
			"Images":    {"jpg", "jpeg", "png", "gif", "bmp", "webp", "heic", "svg"},
			"Videos":    {"mp4", "mov", "mkv", "avi", "webm"},
			"Audio":     {"mp3", "wav", "flac", "ogg", "m4a"},
			"Archives":  {"zip", "tar", "gz", "bz2", "rar", "7z", "xz"},
			"Code":      {"go", "py", "js", "ts", "c", "h", "sh", "rb", "rs"},
		},
		SizeTiers: []SizeTier{
			{Label: "small", MaxBytes: 1 << 20},
			{Label: "medium", MaxBytes: 100 << 20},
			{Label: "large", MaxBytes: 0},
		},
		KeywordScanLimit: 4 << 20,
		TempPatterns: []string{
			"*.tmp", "*.temp", "*.bak", "*.swp", "*~", "*.cache",
			".DS_Store", "Thumbs.db",
		},
		TrashDirName: ".tidy-trash",
	}
}

// Load builds the configuration from defaults, an optional config file
// and TIDY_* environment variables, in that order of precedence.
func Load(configPath string) (Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	if configPath != "" {
		parser, err := parserFor(configPath)
		if err != nil {
			return Config{}, err
		}
		if err := k.Load(file.Provider(configPath), parser); err != nil {
			return Config{}, errors.Wrapf(err, errors.ErrConfigLoad,
				"failed to load config from %s", configPath)
		}
		logger.Debug().Str("path", configPath).Msg("Loaded config file")
	}

	// TIDY_DRY_RUN=true, TIDY_TRASH_DIR_NAME=..., etc.
	if err := k.Load(env.Provider("TIDY_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "TIDY_"))
	}), nil); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigParse, "failed to parse configuration")
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultsMap flattens Defaults into a koanf confmap so file and env
// layers can override individual keys.
func defaultsMap() map[string]interface{} {
	d := Defaults()
	return map[string]interface{}{
		"dry_run":            d.DryRun,
		"fallback_category":  d.FallbackCategory,
		"date_source":        d.DateSource,
		"categories":         d.Categories,
		"size_tiers":         d.SizeTiers,
		"keyword_scan_limit": d.KeywordScanLimit,
		"temp_patterns":      d.TempPatterns,
		"trash_dir_name":     d.TrashDirName,
	}
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigLoad,
			"unsupported config format: %s", filepath.Ext(path))
	}
}

func validate(cfg Config) error {
	if cfg.DateSource != "modified" && cfg.DateSource != "created" {
		return errors.Newf(errors.ErrConfigValid,
			"date_source must be \"modified\" or \"created\", got %q", cfg.DateSource)
	}
	if cfg.TrashDirName == "" || strings.ContainsAny(cfg.TrashDirName, "/\\") {
		return errors.Newf(errors.ErrConfigValid,
			"trash_dir_name must be a bare directory name, got %q", cfg.TrashDirName)
	}
	for i, tier := range cfg.SizeTiers {
		if tier.Label == "" {
			return errors.Newf(errors.ErrConfigValid, "size tier %d has empty label", i)
		}
	}
	// Keywords double as destination folder names
	for _, keyword := range cfg.Keywords {
		if strings.ContainsAny(keyword, `/\`) {
			return errors.Newf(errors.ErrConfigValid,
				"keyword %q must not contain path separators", keyword)
		}
	}
	return nil
}
