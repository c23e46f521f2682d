/*
Package config manages the TOML config of the newsserve services.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/newsinsight/newsserve/internal/utils"
)

// EnvPrefix prefixes every environment override, e.g. NEWSINSIGHT_STORE_PATH.
const EnvPrefix = "NEWSINSIGHT"

// Config holds the entire config structure
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Store   StoreConfig   `toml:"store"`
	Matcher MatcherConfig `toml:"matcher"`
	Proxy   ProxyConfig   `toml:"proxy"`
	Cache   CacheConfig   `toml:"cache"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig has HTTP options. MinDate and MaxDate bound the dates
// clients may query; empty disables the bound.
type ServerConfig struct {
	Addr          string   `toml:"addr"`
	ReadTimeout   Duration `toml:"read_timeout"`
	WriteTimeout  Duration `toml:"write_timeout"`
	MinDate       string   `toml:"min_date"`
	MaxDate       string   `toml:"max_date"`
	AllowedOrigin string   `toml:"allowed_origin"`
	MaxPrefixLen  int      `toml:"max_prefix_len"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// MatcherConfig holds autocomplete options.
type MatcherConfig struct {
	MaxCachedPrefixLen int  `toml:"max_cached_prefix_len"`
	Preload            bool `toml:"preload"`
}

// ProxyConfig holds the analysis model endpoint.
type ProxyConfig struct {
	Endpoint   string   `toml:"endpoint"`
	APIKey     string   `toml:"api_key"`
	Model      string   `toml:"model"`
	Timeout    Duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"`
}

type CacheConfig struct {
	NewsCacheSize int `toml:"news_cache_size"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration is a time.Duration written as "15s" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// DateBounds parses MinDate and MaxDate. Empty values yield zero times.
func (s ServerConfig) DateBounds() (min, max time.Time, err error) {
	if s.MinDate != "" {
		if min, err = utils.ParseDate(s.MinDate); err != nil {
			return min, max, fmt.Errorf("server.min_date: %w", err)
		}
	}
	if s.MaxDate != "" {
		if max, err = utils.ParseDate(s.MaxDate); err != nil {
			return min, max, fmt.Errorf("server.max_date: %w", err)
		}
	}
	if !min.IsZero() && !max.IsZero() && max.Before(min) {
		return min, max, fmt.Errorf("server.max_date %s is before min_date %s", s.MaxDate, s.MinDate)
	}
	return min, max, nil
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/newsserve
// 2. ~/Library/Application Support/newsserve (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "newsserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "newsserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/newsserve/config.toml
// 3. Builtin defaults
//
// Environment overrides are applied last in every case.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path := loadFile(customConfigPath)
	if err := ApplyEnv(config); err != nil {
		return nil, path, err
	}
	return config, path, nil
}

func loadFile(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		customConfigPath = utils.ExpandHome(customConfigPath)
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          "127.0.0.1:5000",
			ReadTimeout:   Duration{15 * time.Second},
			WriteTimeout:  Duration{90 * time.Second},
			MinDate:       "2019-06-13",
			MaxDate:       "2019-07-03",
			AllowedOrigin: "http://localhost:5173",
			MaxPrefixLen:  60,
		},
		Store: StoreConfig{
			Path: "~/.local/share/newsserve/news.db",
		},
		Matcher: MatcherConfig{
			MaxCachedPrefixLen: 3,
			Preload:            false,
		},
		Proxy: ProxyConfig{
			Endpoint:   "https://ark.cn-beijing.volces.com/api/v3/chat/completions",
			Model:      "deepseek-v3-250324",
			Timeout:    Duration{60 * time.Second},
			MaxRetries: 3,
		},
		Cache: CacheConfig{
			NewsCacheSize: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. A file that does not decode as a whole
// is parsed section by section, keeping every value that is well formed.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		log.Warnf("Config %s did not decode cleanly: %v. Recovering valid values...", configPath, err)
		return tryPartialParse(configPath)
	}
	return config, nil
}

func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	raw, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(raw, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(raw, "store"); ok {
		if val, ok := utils.ExtractString(section, "path"); ok {
			config.Store.Path = val
		}
	}
	if section, ok := utils.ExtractSection(raw, "matcher"); ok {
		if val, ok := utils.ExtractInt(section, "max_cached_prefix_len"); ok {
			config.Matcher.MaxCachedPrefixLen = val
		}
		if val, ok := utils.ExtractBool(section, "preload"); ok {
			config.Matcher.Preload = val
		}
	}
	if section, ok := utils.ExtractSection(raw, "proxy"); ok {
		extractProxyConfig(section, &config.Proxy)
	}
	if section, ok := utils.ExtractSection(raw, "cache"); ok {
		if val, ok := utils.ExtractInt(section, "news_cache_size"); ok {
			config.Cache.NewsCacheSize = val
		}
	}
	if section, ok := utils.ExtractSection(raw, "log"); ok {
		if val, ok := utils.ExtractString(section, "level"); ok {
			config.Log.Level = val
		}
		if val, ok := utils.ExtractString(section, "format"); ok {
			config.Log.Format = val
		}
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractString(data, "addr"); ok {
		server.Addr = val
	}
	if val, ok := extractDuration(data, "read_timeout"); ok {
		server.ReadTimeout = val
	}
	if val, ok := extractDuration(data, "write_timeout"); ok {
		server.WriteTimeout = val
	}
	if val, ok := utils.ExtractString(data, "min_date"); ok {
		server.MinDate = val
	}
	if val, ok := utils.ExtractString(data, "max_date"); ok {
		server.MaxDate = val
	}
	if val, ok := utils.ExtractString(data, "allowed_origin"); ok {
		server.AllowedOrigin = val
	}
	if val, ok := utils.ExtractInt(data, "max_prefix_len"); ok {
		server.MaxPrefixLen = val
	}
}

func extractProxyConfig(data map[string]any, proxy *ProxyConfig) {
	if val, ok := utils.ExtractString(data, "endpoint"); ok {
		proxy.Endpoint = val
	}
	if val, ok := utils.ExtractString(data, "api_key"); ok {
		proxy.APIKey = val
	}
	if val, ok := utils.ExtractString(data, "model"); ok {
		proxy.Model = val
	}
	if val, ok := extractDuration(data, "timeout"); ok {
		proxy.Timeout = val
	}
	if val, ok := utils.ExtractInt(data, "max_retries"); ok {
		proxy.MaxRetries = val
	}
}

func extractDuration(data map[string]any, key string) (Duration, bool) {
	s, ok := utils.ExtractString(data, key)
	if !ok {
		return Duration{}, false
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Warnf("Ignoring invalid duration %s = %q: %v", key, s, err)
		return Duration{}, false
	}
	return Duration{d}, true
}

// envKeys lists every setting that can be overridden from the environment.
var envKeys = []string{
	"server.addr", "server.read_timeout", "server.write_timeout",
	"server.min_date", "server.max_date", "server.allowed_origin", "server.max_prefix_len",
	"store.path",
	"matcher.max_cached_prefix_len", "matcher.preload",
	"proxy.endpoint", "proxy.api_key", "proxy.model", "proxy.timeout", "proxy.max_retries",
	"cache.news_cache_size",
	"log.level", "log.format",
}

// ApplyEnv overrides config values from NEWSINSIGHT_* variables, for
// example NEWSINSIGHT_PROXY_API_KEY for proxy.api_key.
func ApplyEnv(c *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	dur := func(key string, dst *Duration) error {
		if !v.IsSet(key) {
			return nil
		}
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return fmt.Errorf("%s_%s: %w", EnvPrefix, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), err)
		}
		dst.Duration = d
		return nil
	}

	str("server.addr", &c.Server.Addr)
	str("server.min_date", &c.Server.MinDate)
	str("server.max_date", &c.Server.MaxDate)
	str("server.allowed_origin", &c.Server.AllowedOrigin)
	num("server.max_prefix_len", &c.Server.MaxPrefixLen)
	str("store.path", &c.Store.Path)
	num("matcher.max_cached_prefix_len", &c.Matcher.MaxCachedPrefixLen)
	if v.IsSet("matcher.preload") {
		c.Matcher.Preload = v.GetBool("matcher.preload")
	}
	str("proxy.endpoint", &c.Proxy.Endpoint)
	str("proxy.api_key", &c.Proxy.APIKey)
	str("proxy.model", &c.Proxy.Model)
	num("proxy.max_retries", &c.Proxy.MaxRetries)
	num("cache.news_cache_size", &c.Cache.NewsCacheSize)
	str("log.level", &c.Log.Level)
	str("log.format", &c.Log.Format)

	for key, dst := range map[string]*Duration{
		"server.read_timeout":  &c.Server.ReadTimeout,
		"server.write_timeout": &c.Server.WriteTimeout,
		"proxy.timeout":        &c.Proxy.Timeout,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
