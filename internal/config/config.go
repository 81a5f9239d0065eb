package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for modelfuse.
type Config struct {
	CacheDir string          `mapstructure:"cache_dir" yaml:"cache_dir"`
	CacheTTL string          `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	NoCache  bool            `mapstructure:"no_cache" yaml:"no_cache"`
	LogLevel string          `mapstructure:"log_level" yaml:"log_level"`
	AA       AAConfig        `mapstructure:"artificialanalysis" yaml:"artificialanalysis"`
	MDev     ModelsDevConfig `mapstructure:"modelsdev" yaml:"modelsdev"`
	Remote   RemoteConfig    `mapstructure:"remote" yaml:"remote"`
}

// AAConfig holds Artificial Analysis API settings.
type AAConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// ModelsDevConfig holds models.dev settings.
type ModelsDevConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// RemoteConfig holds hosted-data release settings.
type RemoteConfig struct {
	Owner string `mapstructure:"owner" yaml:"owner"`
	Repo  string `mapstructure:"repo" yaml:"repo"`
	Tag   string `mapstructure:"tag" yaml:"tag"`
	Token string `mapstructure:"token" yaml:"token,omitempty"`
}

// Load reads configuration from file, environment, and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("cache_dir", defaultCacheDir())
	v.SetDefault("cache_ttl", "1h")
	v.SetDefault("no_cache", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("artificialanalysis.base_url", "https://artificialanalysis.ai/api/v2")
	v.SetDefault("modelsdev.url", "https://models.dev/api.json")
	v.SetDefault("remote.owner", "everstacklabs")
	v.SetDefault("remote.repo", "modelfuse")
	v.SetDefault("remote.tag", "data/latest")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/modelfuse")
	}

	// Environment variables
	v.SetEnvPrefix("MODELFUSE")
	v.AutomaticEnv()

	// Bind specific env vars
	_ = v.BindEnv("artificialanalysis.api_key", "AA_API_KEY")
	_ = v.BindEnv("artificialanalysis.base_url", "MODELFUSE_AA_BASE_URL")
	_ = v.BindEnv("modelsdev.url", "MODELFUSE_MODELSDEV_URL")
	_ = v.BindEnv("remote.token", "GITHUB_TOKEN")
	_ = v.BindEnv("cache_dir", "MODELFUSE_CACHE_DIR")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// WriteDefault writes a starter config file with the default settings.
// Fails if the file already exists.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	cfg := Config{
		CacheDir: defaultCacheDir(),
		CacheTTL: "1h",
		LogLevel: "info",
		AA:       AAConfig{BaseURL: "https://artificialanalysis.ai/api/v2"},
		MDev:     ModelsDevConfig{URL: "https://models.dev/api.json"},
		Remote: RemoteConfig{
			Owner: "everstacklabs",
			Repo:  "modelfuse",
			Tag:   "data/latest",
		},
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	// API keys may land in this file later.
	return os.WriteFile(path, data, 0o600)
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/modelfuse-cache"
	}
	return filepath.Join(home, ".cache", "modelfuse")
}
