package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fortuna/propline/internal/store"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "PROPLINE"

// AppConfig holds the complete configuration for the application
type AppConfig struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	OutputDir   string           `mapstructure:"output_dir"`
	Strict      bool             `mapstructure:"strict"`
	Mock        bool             `mapstructure:"mock"`
	PrizePicks  PrizePicksConfig `mapstructure:"prizepicks"`
	Stats       StatsConfig      `mapstructure:"stats"`
	HTTP        HTTPConfig       `mapstructure:"http"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Postgres    PostgresConfig   `mapstructure:"postgres"`
	Server      ServerConfig     `mapstructure:"server"`
	Schedule    ScheduleConfig   `mapstructure:"schedule"`
}

type PrizePicksConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIEndpoints []string      `mapstructure:"api_endpoints"`
	Render       bool          `mapstructure:"render"`
	PageTimeout  time.Duration `mapstructure:"page_timeout"`
}

type StatsConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Season      string `mapstructure:"season"`
	PlayersFile string `mapstructure:"players_file"`
}

type HTTPConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgents []string      `mapstructure:"user_agents"`
}

type RedisConfig struct {
	URL    string `mapstructure:"url"`
	Stream string `mapstructure:"stream"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// ScheduleConfig enables the daily scrape while serving.
type ScheduleConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Hour    int  `mapstructure:"hour"` // US Eastern
}

// DefaultUserAgents are rotated between fetch attempts.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

var envKeys = []string{
	"environment",
	"log_level",
	"output_dir",
	"strict",
	"mock",
	"prizepicks.base_url",
	"prizepicks.api_endpoints",
	"prizepicks.render",
	"prizepicks.page_timeout",
	"stats.base_url",
	"stats.season",
	"stats.players_file",
	"http.timeout",
	"http.user_agents",
	"redis.url",
	"redis.stream",
	"postgres.dsn",
	"server.addr",
	"schedule.enabled",
	"schedule.hour",
}

// Load loads configuration from file and environment variables.
// Environment variables are the upper-cased key with dots replaced by
// underscores and a PROPLINE_ prefix, e.g. PROPLINE_STATS_SEASON.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	// Default values
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("output_dir", "data")
	v.SetDefault("strict", false)
	v.SetDefault("mock", false)
	v.SetDefault("prizepicks.base_url", "https://www.prizepicks.com")
	v.SetDefault("prizepicks.api_endpoints", []string{
		"/api/projections",
		"/api/leagues/NBA/projections",
		"/projections/NBA",
	})
	v.SetDefault("prizepicks.render", false)
	v.SetDefault("prizepicks.page_timeout", 15*time.Second)
	v.SetDefault("stats.base_url", "https://stats.nba.com/stats")
	v.SetDefault("stats.season", "")
	v.SetDefault("stats.players_file", "")
	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("http.user_agents", DefaultUserAgents)
	v.SetDefault("redis.stream", "props.daily.basketball_nba")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("schedule.enabled", false)
	v.SetDefault("schedule.hour", 9)

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	// Config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Lists set through the environment arrive as one string. User agents
	// contain commas, so they are separated by "|".
	if raw, ok := os.LookupEnv(envName("prizepicks.api_endpoints")); ok {
		config.PrizePicks.APIEndpoints = splitList(raw, ",")
	}
	if raw, ok := os.LookupEnv(envName("http.user_agents")); ok {
		config.HTTP.UserAgents = splitList(raw, "|")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output_dir is required")
	}
	if c.PrizePicks.BaseURL == "" {
		return errors.New("prizepicks.base_url is required")
	}
	if c.Stats.BaseURL == "" {
		return errors.New("stats.base_url is required")
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if c.PrizePicks.PageTimeout <= 0 {
		return errors.New("prizepicks.page_timeout must be positive")
	}
	if len(c.HTTP.UserAgents) == 0 {
		return errors.New("http.user_agents must not be empty")
	}
	if c.Schedule.Hour < 0 || c.Schedule.Hour > 23 {
		return errors.New("schedule.hour must be between 0 and 23")
	}
	if c.Stats.Season != "" {
		if _, err := store.ParseSeason(c.Stats.Season); err != nil {
			return fmt.Errorf("stats.season: %w", err)
		}
	}
	return nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func splitList(raw, sep string) []string {
	var out []string
	for _, part := range strings.Split(raw, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
