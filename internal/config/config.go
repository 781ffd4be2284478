// Package config resolves runtime settings from flags, environment, an
// optional config file and the keychain.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jdelaire/dodobot/core/schedule"
	"github.com/jdelaire/dodobot/internal/logger"
)

// EnvPrefix is prepended to every automatic environment lookup.
const EnvPrefix = "DODOBOT"

// Defaults.
const (
	DefaultChatID             int64 = 231642019
	DefaultCommand                  = "dodo"
	DefaultCommandDescription       = "Polls for dota availability"
	DefaultCatalogPath              = "resources/punlines.json"
	DefaultDoubtReaction            = "resources/i_daut_it.gif"
	DefaultPollTimeout              = 30 // seconds
	DefaultMaxRate                  = 5.0
	DefaultHandlerTimeout           = 30 * time.Second
	DefaultWatchInterval            = 30 * time.Second
)

// ErrConfig marks configuration the process cannot start with.
var ErrConfig = errors.New("config error")

var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]{20,}$`)

// Config is the resolved runtime configuration.
type Config struct {
	Bot      BotConfig
	Schedule ScheduleConfig
	Catalog  CatalogConfig
	// Assets maps asset names (e.g. "doubt-reaction") to file paths.
	Assets  map[string]string
	Poll    PollConfig
	Logging logger.Config
}

type BotConfig struct {
	Token              string
	TokenSource        string
	ChatID             int64
	Command            string
	CommandDescription string
	Triggers           []string
	AllowedChats       []int64
	MaxMessageAge      time.Duration
}

type ScheduleConfig struct {
	Weekday  time.Weekday
	Location *time.Location
}

type CatalogConfig struct {
	Path          string
	WatchInterval time.Duration
}

type PollConfig struct {
	Timeout        time.Duration
	MaxRate        float64
	HandlerTimeout time.Duration
}

// TokenLookup returns a token stored outside viper, such as in the keychain.
type TokenLookup func() (string, error)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("bot.chat_id", DefaultChatID)
	v.SetDefault("bot.command", DefaultCommand)
	v.SetDefault("bot.command_description", DefaultCommandDescription)
	v.SetDefault("bot.triggers", []string{"doubt", "daut"})
	v.SetDefault("bot.allowed_chats", []string{})
	v.SetDefault("bot.max_message_age", time.Duration(0))
	v.SetDefault("schedule.weekday", "thursday")
	v.SetDefault("schedule.timezone", "Local")
	v.SetDefault("catalog.path", DefaultCatalogPath)
	v.SetDefault("catalog.watch_interval", DefaultWatchInterval)
	v.SetDefault("assets.doubt_reaction", DefaultDoubtReaction)
	v.SetDefault("poll.timeout", DefaultPollTimeout)
	v.SetDefault("poll.max_rate", DefaultMaxRate)
	v.SetDefault("poll.handler_timeout", DefaultHandlerTimeout)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.add_source", false)
}

// BindEnv enables DODOBOT_* lookups for every key. The token is also read
// from the bare BOT_TOKEN variable.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("bot.token", EnvPrefix+"_BOT_TOKEN", "BOT_TOKEN")
}

// ReadFile merges a YAML, TOML or JSON config file into v.
func ReadFile(v *viper.Viper, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrConfig, path, err)
	}
	return nil
}

// Load resolves and validates the configuration held by v. When no token is
// configured, lookup (if non-nil) is consulted.
func Load(v *viper.Viper, lookup TokenLookup) (*Config, error) {
	var cfg Config

	token, source, err := resolveToken(v, lookup)
	if err != nil {
		return nil, err
	}
	cfg.Bot.Token = token
	cfg.Bot.TokenSource = source

	cfg.Bot.ChatID = v.GetInt64("bot.chat_id")
	if cfg.Bot.ChatID == 0 {
		return nil, fmt.Errorf("%w: bot.chat_id is required", ErrConfig)
	}
	cfg.Bot.Command = strings.TrimPrefix(strings.TrimSpace(v.GetString("bot.command")), "/")
	if cfg.Bot.Command == "" {
		return nil, fmt.Errorf("%w: bot.command is empty", ErrConfig)
	}
	cfg.Bot.CommandDescription = strings.TrimSpace(v.GetString("bot.command_description"))
	for _, t := range v.GetStringSlice("bot.triggers") {
		if t != "" {
			cfg.Bot.Triggers = append(cfg.Bot.Triggers, t)
		}
	}
	chats, err := parseChatIDs(v.GetStringSlice("bot.allowed_chats"))
	if err != nil {
		return nil, err
	}
	cfg.Bot.AllowedChats = chats
	cfg.Bot.MaxMessageAge = v.GetDuration("bot.max_message_age")
	if cfg.Bot.MaxMessageAge < 0 {
		return nil, fmt.Errorf("%w: bot.max_message_age must not be negative", ErrConfig)
	}

	cfg.Schedule.Weekday, err = schedule.ParseWeekday(v.GetString("schedule.weekday"))
	if err != nil {
		return nil, fmt.Errorf("%w: schedule.weekday: %w", ErrConfig, err)
	}
	cfg.Schedule.Location, err = loadLocation(v.GetString("schedule.timezone"))
	if err != nil {
		return nil, err
	}

	cfg.Catalog.Path = strings.TrimSpace(v.GetString("catalog.path"))
	if cfg.Catalog.Path == "" {
		return nil, fmt.Errorf("%w: catalog.path is empty", ErrConfig)
	}
	cfg.Catalog.WatchInterval = v.GetDuration("catalog.watch_interval")
	if cfg.Catalog.WatchInterval < 0 {
		cfg.Catalog.WatchInterval = 0
	}

	cfg.Assets = make(map[string]string)
	for name := range v.GetStringMapString("assets") {
		// Re-read by full key so environment overrides apply.
		cfg.Assets[strings.ReplaceAll(name, "_", "-")] = v.GetString("assets." + name)
	}

	secs := v.GetInt("poll.timeout")
	if secs <= 0 {
		return nil, fmt.Errorf("%w: poll.timeout must be positive", ErrConfig)
	}
	cfg.Poll.Timeout = time.Duration(secs) * time.Second
	cfg.Poll.MaxRate = v.GetFloat64("poll.max_rate")
	if cfg.Poll.MaxRate < 0 {
		return nil, fmt.Errorf("%w: poll.max_rate must not be negative", ErrConfig)
	}
	cfg.Poll.HandlerTimeout = v.GetDuration("poll.handler_timeout")
	if cfg.Poll.HandlerTimeout <= 0 {
		cfg.Poll.HandlerTimeout = DefaultHandlerTimeout
	}

	cfg.Logging = logger.Config{
		Level:     v.GetString("logging.level"),
		Format:    v.GetString("logging.format"),
		AddSource: v.GetBool("logging.add_source"),
	}
	if _, err := logger.ParseLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Format)) {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("%w: unknown logging.format %q", ErrConfig, cfg.Logging.Format)
	}

	return &cfg, nil
}

// ValidToken reports whether s looks like a Bot API token.
func ValidToken(s string) bool {
	return tokenPattern.MatchString(s)
}

func resolveToken(v *viper.Viper, lookup TokenLookup) (string, string, error) {
	token := strings.TrimSpace(v.GetString("bot.token"))
	source := "config"
	var lookupErr error
	if token == "" && lookup != nil {
		token, lookupErr = lookup()
		token = strings.TrimSpace(token)
		source = "keychain"
	}
	if token == "" {
		if lookupErr != nil {
			return "", "", fmt.Errorf("%w: bot token missing (set BOT_TOKEN or run `dodobot token set`): %w", ErrConfig, lookupErr)
		}
		return "", "", fmt.Errorf("%w: bot token missing (set BOT_TOKEN or run `dodobot token set`)", ErrConfig)
	}
	if !ValidToken(token) {
		return "", "", fmt.Errorf("%w: bot token from %s is malformed", ErrConfig, source)
	}
	return token, source, nil
}

func parseChatIDs(raw []string) ([]int64, error) {
	var ids []int64
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bot.allowed_chats: invalid chat id %q", ErrConfig, s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func loadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule.timezone: %w", ErrConfig, err)
	}
	return loc, nil
}
