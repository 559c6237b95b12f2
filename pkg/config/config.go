package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for vestige.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis"`

	// Import specifier resolution
	Resolve ResolveConfig `koanf:"resolve"`

	// Reporting policy knobs
	Policy PolicyConfig `koanf:"policy"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Output settings
	Output OutputConfig `koanf:"output"`
}

// AnalysisConfig controls the analysis passes.
type AnalysisConfig struct {
	Workers       int   `koanf:"workers"`
	MaxPasses     int   `koanf:"max_passes"`
	MaxFileSize   int64 `koanf:"max_file_size"`
	UnusedImports bool  `koanf:"unused_imports"`
	UnusedSymbols bool  `koanf:"unused_symbols"`
}

// ResolveConfig controls how import specifiers map to files.
type ResolveConfig struct {
	RootAlias   string   `koanf:"root_alias"`
	AliasTarget string   `koanf:"alias_target"`
	Extensions  []string `koanf:"extensions"`
}

// PolicyConfig controls which findings are exempt from reporting.
type PolicyConfig struct {
	BarrelMode     string   `koanf:"barrel_mode"` // lenient or strict
	PageDirs       []string `koanf:"page_dirs"`
	ExemptSuffixes []string `koanf:"exempt_suffixes"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns"`
	Extensions []string `koanf:"extensions"`
	Dirs       []string `koanf:"dirs"`
	Gitignore  bool     `koanf:"gitignore"`
	IgnoreFile string   `koanf:"ignore_file"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Workers:       0, // 2x NumCPU
			MaxPasses:     10,
			MaxFileSize:   0,
			UnusedImports: true,
			UnusedSymbols: true,
		},
		Resolve: ResolveConfig{
			RootAlias:   "~/",
			AliasTarget: "src",
			Extensions:  []string{".ts", ".tsx", ".js", ".jsx"},
		},
		Policy: PolicyConfig{
			BarrelMode:     "lenient",
			PageDirs:       []string{"pages", "app", "routes"},
			ExemptSuffixes: []string{"Props", "Config"},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.d.ts",
			},
			Extensions: []string{
				".lock",
				".map",
			},
			Dirs: []string{
				"node_modules",
				".git",
				".vestige",
				"dist",
				"build",
				"coverage",
				".next",
			},
			Gitignore:  true,
			IgnoreFile: ".vestigeignore",
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	// Load the config file
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	// Unmarshal into config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"vestige.toml",
		"vestige.yaml",
		"vestige.yml",
		"vestige.json",
		".vestige.toml",
		".vestige.yaml",
		".vestige.yml",
		".vestige.json",
	}

	searchDirs := []string{".", ".vestige"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Check extension exclusions
	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	// Check pattern exclusions
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
