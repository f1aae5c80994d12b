// Package config provides configuration management for the bot.
//
// Values are resolved in three layers: built-in defaults, an optional
// config.yaml (with ${VAR} and ${VAR:-default} expansion), and finally a set
// of well-known environment variables. A .env file in the working directory
// is loaded into the environment first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBodySizeLimit is the default maximum request body size for the command API (64KB).
const DefaultBodySizeLimit int64 = 64 * 1024

// DefaultMaxMessageBytes is the per-message byte limit of most IRC networks
// once the prefix and command are accounted for.
const DefaultMaxMessageBytes = 400

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	IRC     IRCConfig     `yaml:"irc"`
	Console ConsoleConfig `yaml:"console"`
	Logging LogConfig     `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	HTTP    HTTPConfig    `yaml:"http"`
	Chat    ChatConfig    `yaml:"chat"`
	Storage StorageConfig `yaml:"storage"`
	Plugins PluginsConfig `yaml:"plugins"`
}

// ServerConfig holds the HTTP command API configuration
type ServerConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Port          string `yaml:"port"`
	MasterKey     string `yaml:"master_key"`
	BodySizeLimit int64  `yaml:"body_size_limit"`
}

// IRCConfig holds the IRC transport configuration
type IRCConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Server   string   `yaml:"server"`
	TLS      bool     `yaml:"tls"`
	Nick     string   `yaml:"nick"`
	User     string   `yaml:"user"`
	RealName string   `yaml:"real_name"`
	Password string   `yaml:"password"`
	Channels []string `yaml:"channels"`

	// MessagesPerSecond and Burst bound outgoing PRIVMSG traffic.
	MessagesPerSecond float64 `yaml:"messages_per_second"`
	Burst             int     `yaml:"burst"`
}

// ConsoleConfig holds the local console transport configuration
type ConsoleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Nick    string `yaml:"nick"`
	Prompt  string `yaml:"prompt"`
}

// LogConfig controls the process logger.
// Format is one of "auto", "pretty" or "json".
type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// HTTPConfig holds outbound HTTP client settings shared by all data providers
type HTTPConfig struct {
	Timeout               time.Duration `yaml:"timeout"`
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout"`
	UserAgent             string        `yaml:"user_agent"`
}

// ChatConfig holds output shaping rules shared by all plugins
type ChatConfig struct {
	MaxMessageBytes int    `yaml:"max_message_bytes"`
	MaxItems        int    `yaml:"max_items"`
	Location        string `yaml:"location"`
}

// StorageConfig selects the backend for persisted bot state (last-seen events).
// Type is one of "memory", "sqlite", "postgresql", "mongodb" or "redis".
type StorageConfig struct {
	Type       string           `yaml:"type"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	PostgreSQL PostgreSQLConfig `yaml:"postgresql"`
	MongoDB    MongoDBConfig    `yaml:"mongodb"`
	Redis      RedisConfig      `yaml:"redis"`
}

// SQLiteConfig holds SQLite-specific storage configuration
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgreSQLConfig holds PostgreSQL-specific storage configuration
type PostgreSQLConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

// MongoDBConfig holds MongoDB-specific storage configuration
type MongoDBConfig struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
}

// RedisConfig holds Redis-specific storage configuration
type RedisConfig struct {
	URL string        `yaml:"url"`
	Key string        `yaml:"key"`
	TTL time.Duration `yaml:"ttl"`
}

// PluginsConfig groups per-plugin settings
type PluginsConfig struct {
	Games       GamesConfig       `yaml:"games"`
	Elo         EloConfig         `yaml:"elo"`
	LeagueTable LeagueTableConfig `yaml:"leaguetable"`
	Fantasy     FantasyConfig     `yaml:"fantasy"`
	Seen        ToggleConfig      `yaml:"seen"`
	Time        ToggleConfig      `yaml:"time"`
	Units       ToggleConfig      `yaml:"units"`
	SimpleReply SimpleReplyConfig `yaml:"simplereply"`
}

// ToggleConfig is used by plugins whose only setting is on/off
type ToggleConfig struct {
	Enabled bool `yaml:"enabled"`
}

// GamesConfig configures the football fixtures plugin
type GamesConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	BaseURL string        `yaml:"base_url"`

	// WindowBefore and WindowAfter bound the default sliding time window around now.
	WindowBefore time.Duration `yaml:"window_before"`
	WindowAfter  time.Duration `yaml:"window_after"`

	Leagues []LeagueFeedConfig `yaml:"leagues"`

	// Aliases maps a bare trigger such as "!epl" to the games query it stands for.
	Aliases map[string]string `yaml:"aliases"`
}

// LeagueFeedConfig maps one scoreboard feed onto the country/competition tree
type LeagueFeedConfig struct {
	Slug        string `yaml:"slug"`
	Country     string `yaml:"country"`
	Competition string `yaml:"competition"`
}

// EloConfig configures the club Elo plugin
type EloConfig struct {
	Enabled  bool          `yaml:"enabled"`
	URL      string        `yaml:"url"`
	TTL      time.Duration `yaml:"ttl"`
	TopCount int           `yaml:"top_count"`
}

// LeagueTableConfig configures the league table plugin
type LeagueTableConfig struct {
	Enabled      bool                         `yaml:"enabled"`
	TTL          time.Duration                `yaml:"ttl"`
	Leagues      map[string]TableSourceConfig `yaml:"leagues"`
	Competitions map[string]CompetitionConfig `yaml:"competitions"`
}

// TableSourceConfig is a single league table page
type TableSourceConfig struct {
	Alias []string `yaml:"alias"`
	URL   string   `yaml:"url"`
}

// CompetitionConfig is a competition made of several group tables
type CompetitionConfig struct {
	Alias  []string          `yaml:"alias"`
	Groups map[string]string `yaml:"groups"`
}

// FantasyConfig configures the fantasy and predictor leaderboards
type FantasyConfig struct {
	Enabled   bool              `yaml:"enabled"`
	TTL       time.Duration     `yaml:"ttl"`
	TopCount  int               `yaml:"top_count"`
	Fantasy   LeaderboardConfig `yaml:"fantasy"`
	Predictor LeaderboardConfig `yaml:"predictor"`
}

// LeaderboardConfig describes how to reach one private league leaderboard
type LeaderboardConfig struct {
	WarmupURL string            `yaml:"warmup_url"`
	URL       string            `yaml:"url"`
	Cookie    string            `yaml:"cookie"`
	Headers   map[string]string `yaml:"headers"`
}

// SimpleReplyConfig configures canned replies
type SimpleReplyConfig struct {
	Enabled bool              `yaml:"enabled"`
	Rules   []ReplyRuleConfig `yaml:"rules"`
}

// ReplyRuleConfig maps trigger phrases to a set of possible replies
type ReplyRuleConfig struct {
	Triggers []string `yaml:"triggers"`
	Replies  []string `yaml:"replies"`
}

// LoadResult is returned by Load
type LoadResult struct {
	Config *Config
	// Path is the config file that was read, empty when running on defaults.
	Path string
}

// Load reads the configuration from the path in BUTLER_CONFIG, or from
// config.yaml / config/config.yaml when unset.
func Load() (*LoadResult, error) {
	if path := os.Getenv("BUTLER_CONFIG"); path != "" {
		return LoadFile(path)
	}
	for _, candidate := range []string{"config.yaml", "config/config.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return LoadFile(candidate)
		}
	}
	return LoadFile("")
}

// LoadFile reads configuration from the given YAML file. An empty path
// skips the file layer.
func LoadFile(path string) (*LoadResult, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := buildDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal([]byte(expandString(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &LoadResult{Config: cfg, Path: path}, nil
}

func buildDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Enabled:       false,
			Port:          "8080",
			BodySizeLimit: DefaultBodySizeLimit,
		},
		IRC: IRCConfig{
			Server:            "irc.libera.chat:6697",
			TLS:               true,
			Nick:              "butler",
			User:              "butler",
			RealName:          "butler",
			MessagesPerSecond: 1,
			Burst:             4,
		},
		Console: ConsoleConfig{
			Nick:   "console",
			Prompt: "> ",
		},
		Logging: LogConfig{
			Format: "auto",
			Level:  "info",
		},
		Metrics: MetricsConfig{
			Endpoint: "/metrics",
		},
		HTTP: HTTPConfig{
			Timeout:               20 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
			UserAgent:             "butler-bot/1.0",
		},
		Chat: ChatConfig{
			MaxMessageBytes: DefaultMaxMessageBytes,
			MaxItems:        20,
			Location:        "UTC",
		},
		Storage: StorageConfig{
			Type:       "memory",
			SQLite:     SQLiteConfig{Path: "data/butler.db"},
			PostgreSQL: PostgreSQLConfig{MaxConns: 4},
			MongoDB:    MongoDBConfig{Database: "butler"},
			Redis:      RedisConfig{Key: "butler:seen", TTL: 30 * 24 * time.Hour},
		},
		Plugins: PluginsConfig{
			Games: GamesConfig{
				Enabled:      true,
				TTL:          2 * time.Minute,
				BaseURL:      "https://site.api.espn.com/apis/site/v2/sports",
				WindowBefore: 10 * time.Hour,
				WindowAfter:  16 * time.Hour,
				Leagues: []LeagueFeedConfig{
					{Slug: "eng.1", Country: "England", Competition: "Premier League"},
					{Slug: "esp.1", Country: "Spain", Competition: "LaLiga"},
					{Slug: "ger.1", Country: "Germany", Competition: "Bundesliga"},
					{Slug: "ita.1", Country: "Italy", Competition: "Serie A"},
					{Slug: "bel.1", Country: "Belgium", Competition: "Jupiler Pro League"},
					{Slug: "usa.1", Country: "USA", Competition: "MLS"},
					{Slug: "uefa.champions", Country: "Champions League", Competition: "Champions League"},
					{Slug: "uefa.europa", Country: "Europa League", Competition: "Europa League"},
					{Slug: "uefa.europa.conf", Country: "Europa Conference League", Competition: "Europa Conference League"},
				},
				Aliases: map[string]string{
					"!epl":  "--country England --competition Premier League",
					"!genk": "genk",
				},
			},
			Elo: EloConfig{
				Enabled:  true,
				URL:      "http://api.clubelo.com",
				TTL:      12 * time.Hour,
				TopCount: 15,
			},
			LeagueTable: LeagueTableConfig{
				TTL: time.Hour,
			},
			Fantasy: FantasyConfig{
				TTL:      3 * time.Minute,
				TopCount: 15,
			},
			Seen:        ToggleConfig{Enabled: true},
			Time:        ToggleConfig{Enabled: true},
			Units:       ToggleConfig{Enabled: true},
			SimpleReply: SimpleReplyConfig{Enabled: true},
		},
	}
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString replaces ${VAR} and ${VAR:-default} placeholders.
// An unset or empty variable without a default is left verbatim.
func expandString(s string) string {
	if s == "" {
		return s
	}
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envPattern.FindStringSubmatch(match)
		name, hasDefault, def := parts[1], parts[2] != "", parts[3]
		if value := os.Getenv(name); value != "" {
			return value
		}
		if hasDefault {
			return def
		}
		return match
	})
}

// applyEnvOverrides overlays well-known environment variables onto cfg.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("BUTLER_MASTER_KEY"); v != "" {
		cfg.Server.MasterKey = v
	}
	if v := os.Getenv("IRC_SERVER"); v != "" {
		cfg.IRC.Server = v
	}
	if v := os.Getenv("IRC_NICK"); v != "" {
		cfg.IRC.Nick = v
	}
	if v := os.Getenv("IRC_PASSWORD"); v != "" {
		cfg.IRC.Password = v
	}
	if v := os.Getenv("IRC_CHANNELS"); v != "" {
		cfg.IRC.Channels = splitList(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLite.Path = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Storage.PostgreSQL.URL = v
	}
	if v := os.Getenv("MONGODB_URL"); v != "" {
		cfg.Storage.MongoDB.URL = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		cfg.Storage.MongoDB.Database = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Storage.Redis.URL = v
	}

	var errs []error
	for name, dst := range map[string]*bool{
		"METRICS_ENABLED": &cfg.Metrics.Enabled,
		"SERVER_ENABLED":  &cfg.Server.Enabled,
		"IRC_ENABLED":     &cfg.IRC.Enabled,
		"CONSOLE_ENABLED": &cfg.Console.Enabled,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", name, v, err))
			continue
		}
		*dst = b
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid POSTGRES_MAX_CONNS %q: %w", v, err))
		}
		cfg.Storage.PostgreSQL.MaxConns = n
	}
	if v := os.Getenv("MAX_MESSAGE_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid MAX_MESSAGE_BYTES %q: %w", v, err))
		}
		cfg.Chat.MaxMessageBytes = n
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", v, err))
		}
		cfg.HTTP.Timeout = d
	}
	return errors.Join(errs...)
}

// parseDuration accepts plain integers as seconds, or Go duration strings.
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) validate() error {
	if c.Chat.MaxMessageBytes <= 0 {
		return fmt.Errorf("chat.max_message_bytes must be positive, got %d", c.Chat.MaxMessageBytes)
	}
	if c.Chat.MaxItems <= 0 {
		return fmt.Errorf("chat.max_items must be positive, got %d", c.Chat.MaxItems)
	}
	if _, err := time.LoadLocation(c.Chat.Location); err != nil {
		return fmt.Errorf("invalid chat.location %q: %w", c.Chat.Location, err)
	}
	switch c.Logging.Format {
	case "auto", "pretty", "json":
	default:
		return fmt.Errorf("invalid logging.format %q (valid: auto, pretty, json)", c.Logging.Format)
	}
	return nil
}
