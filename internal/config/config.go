package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/bnema/portainer-notifier/internal/logging"
	"github.com/bnema/portainer-notifier/internal/ports"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	envPrefix  = "PN"
	appDirName = "pn"

	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	AuthSchemeAPIKey = "api_key"
	AuthSchemeBearer = "bearer"
)

const (
	keyPortainerURL                = "portainer.url"
	keyPortainerToken              = "portainer.token"
	keyPortainerTokenRef           = "portainer.token_ref"
	keyPortainerEndpointID         = "portainer.endpoint_id"
	keyPortainerAuthScheme         = "portainer.auth_scheme"
	keyPortainerInsecureSkipVerify = "portainer.insecure_skip_verify"
	keyPortainerTimeout            = "portainer.timeout"
	keyDiscordToken                = "discord.token"
	keyDiscordTokenRef             = "discord.token_ref"
	keyDiscordChannelID            = "discord.channel_id"
	keyDiscordGuildID              = "discord.guild_id"
	keyPollInterval                = "poll.interval"
	keyPollTimeout                 = "poll.timeout"
	keyStateBackend                = "state.backend"
	keyStateDataDir                = "state.data_dir"
	keyStatePruneMissing           = "state.prune_missing"
	keyLogLevel                    = "log.level"
	keyLogFormat                   = "log.format"
)

// Scope selects which sections Validate requires.
type Scope int

const (
	ScopePortainer Scope = 1 << iota
	ScopeDiscord
	ScopeGateway
)

type Config struct {
	Portainer PortainerConfig
	Discord   DiscordConfig
	Poll      PollConfig
	State     StateConfig
	Log       LogConfig
	Status    domain.StatusTable

	// File is the config file that was read, empty when running on defaults and env only.
	File string
}

type PortainerConfig struct {
	URL                string
	Token              string
	TokenRef           string
	EndpointID         int
	AuthScheme         string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

type DiscordConfig struct {
	Token     string
	TokenRef  string
	ChannelID string
	GuildID   string
}

type PollConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

type StateConfig struct {
	Backend      string
	DataDir      string
	PruneMissing bool
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads config.toml from explicitPath or the search paths, then applies PN_* env overrides.
// A missing file is only an error when explicitPath is set.
func Load(v *viper.Viper, explicitPath string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		for _, dir := range SearchPaths() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if explicitPath != "" || !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	statuses, err := statusTable(v)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Portainer: PortainerConfig{
			URL:                strings.TrimSpace(v.GetString(keyPortainerURL)),
			Token:              strings.TrimSpace(v.GetString(keyPortainerToken)),
			TokenRef:           strings.TrimSpace(v.GetString(keyPortainerTokenRef)),
			EndpointID:         v.GetInt(keyPortainerEndpointID),
			AuthScheme:         strings.ToLower(strings.TrimSpace(v.GetString(keyPortainerAuthScheme))),
			InsecureSkipVerify: v.GetBool(keyPortainerInsecureSkipVerify),
			Timeout:            v.GetDuration(keyPortainerTimeout),
		},
		Discord: DiscordConfig{
			Token:     strings.TrimSpace(v.GetString(keyDiscordToken)),
			TokenRef:  strings.TrimSpace(v.GetString(keyDiscordTokenRef)),
			ChannelID: strings.TrimSpace(v.GetString(keyDiscordChannelID)),
			GuildID:   strings.TrimSpace(v.GetString(keyDiscordGuildID)),
		},
		Poll: PollConfig{
			Interval: v.GetDuration(keyPollInterval),
			Timeout:  v.GetDuration(keyPollTimeout),
		},
		State: StateConfig{
			Backend:      strings.ToLower(strings.TrimSpace(v.GetString(keyStateBackend))),
			DataDir:      v.GetString(keyStateDataDir),
			PruneMissing: v.GetBool(keyStatePruneMissing),
		},
		Log: LogConfig{
			Level:  v.GetString(keyLogLevel),
			Format: v.GetString(keyLogFormat),
		},
		Status: statuses,
		File:   v.ConfigFileUsed(),
	}, nil
}

func setDefaults(v *viper.Viper) {
	defaults := defaultSchema()

	v.SetDefault(keyPortainerURL, "")
	v.SetDefault(keyPortainerToken, "")
	v.SetDefault(keyPortainerTokenRef, "")
	v.SetDefault(keyPortainerEndpointID, defaults.Portainer.EndpointID)
	v.SetDefault(keyPortainerAuthScheme, defaults.Portainer.AuthScheme)
	v.SetDefault(keyPortainerInsecureSkipVerify, false)
	v.SetDefault(keyPortainerTimeout, defaults.Portainer.Timeout)
	v.SetDefault(keyDiscordToken, "")
	v.SetDefault(keyDiscordTokenRef, "")
	v.SetDefault(keyDiscordChannelID, "")
	v.SetDefault(keyDiscordGuildID, "")
	v.SetDefault(keyPollInterval, defaults.Poll.Interval)
	v.SetDefault(keyPollTimeout, defaults.Poll.Timeout)
	v.SetDefault(keyStateBackend, defaults.State.Backend)
	v.SetDefault(keyStateDataDir, defaults.State.DataDir)
	v.SetDefault(keyStatePruneMissing, defaults.State.PruneMissing)
	v.SetDefault(keyLogLevel, defaults.Log.Level)
	v.SetDefault(keyLogFormat, defaults.Log.Format)

	for code, style := range defaults.Status {
		v.SetDefault("status."+code+".label", style.Label)
		v.SetDefault("status."+code+".emoji", style.Emoji)
		v.SetDefault("status."+code+".color", style.Color)
	}
}

// SearchPaths lists the directories scanned for config.toml, most specific first.
func SearchPaths() []string {
	paths := []string{"."}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, appDirName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appDirName))
	}

	return paths
}

// DefaultPath is where config init writes when no --config flag is given.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName, configName+"."+configType), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".config", appDirName, configName+"."+configType), nil
}

func statusCode(code domain.StackStatus) string {
	return strings.ToLower(string(code))
}

func statusKey(code domain.StackStatus, field string) string {
	return "status." + statusCode(code) + "." + field
}

func statusTable(v *viper.Viper) (domain.StatusTable, error) {
	table := domain.StatusTable{}
	for _, code := range []domain.StackStatus{domain.StatusRunning, domain.StatusPartiallyRunning, domain.StatusOffline} {
		color, err := parseColor(v.GetString(statusKey(code, "color")))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", statusKey(code, "color"), err)
		}

		table[code] = domain.StatusStyle{
			Label: v.GetString(statusKey(code, "label")),
			Emoji: v.GetString(statusKey(code, "emoji")),
			Color: color,
		}
	}

	return table, nil
}

// parseColor accepts "#RRGGBB", "0xRRGGBB" or a decimal integer.
func parseColor(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}

	var (
		value int64
		err   error
	)
	if hex, ok := strings.CutPrefix(trimmed, "#"); ok {
		value, err = strconv.ParseInt(hex, 16, 32)
	} else {
		value, err = strconv.ParseInt(trimmed, 0, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", raw)
	}
	if value < 0 || value > 0xFFFFFF {
		return 0, fmt.Errorf("color %q out of range", raw)
	}

	return int(value), nil
}

// ResolveSecrets fills the empty tokens of scope from their *_ref references. Inline tokens win.
func (c *Config) ResolveSecrets(ctx context.Context, resolver ports.SecretResolver, scope Scope) error {
	if scope&ScopePortainer != 0 && c.Portainer.Token == "" && c.Portainer.TokenRef != "" {
		token, err := resolver.Resolve(ctx, c.Portainer.TokenRef)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", keyPortainerTokenRef, err)
		}
		c.Portainer.Token = token
	}

	if scope&(ScopeDiscord|ScopeGateway) != 0 && c.Discord.Token == "" && c.Discord.TokenRef != "" {
		token, err := resolver.Resolve(ctx, c.Discord.TokenRef)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", keyDiscordTokenRef, err)
		}
		c.Discord.Token = token
	}

	return nil
}

// SecretRoot is the directory relative file: references resolve against.
func (c Config) SecretRoot() string {
	if c.File == "" {
		return "."
	}

	return filepath.Dir(c.File)
}

// Validate reports every missing or invalid setting of the requested scope in one error.
func (c Config) Validate(scope Scope) error {
	var problems []error
	missing := func(key string) {
		problems = append(problems, fmt.Errorf("%s is required", key))
	}

	if scope&ScopePortainer != 0 {
		if c.Portainer.URL == "" {
			missing(keyPortainerURL)
		}
		if c.Portainer.Token == "" {
			missing(keyPortainerToken + " (or " + keyPortainerTokenRef + ")")
		}
		if c.Portainer.EndpointID <= 0 {
			problems = append(problems, fmt.Errorf("%s must be positive, got %d", keyPortainerEndpointID, c.Portainer.EndpointID))
		}
		if c.Portainer.AuthScheme != AuthSchemeAPIKey && c.Portainer.AuthScheme != AuthSchemeBearer {
			problems = append(problems, fmt.Errorf("%s must be %s or %s, got %q", keyPortainerAuthScheme, AuthSchemeAPIKey, AuthSchemeBearer, c.Portainer.AuthScheme))
		}
		if c.Portainer.Timeout <= 0 {
			problems = append(problems, fmt.Errorf("%s must be positive", keyPortainerTimeout))
		}
	}

	if scope&(ScopeDiscord|ScopeGateway) != 0 {
		if c.Discord.Token == "" {
			missing(keyDiscordToken + " (or " + keyDiscordTokenRef + ")")
		}
		if c.Discord.ChannelID == "" {
			missing(keyDiscordChannelID)
		}
	}

	if scope&ScopeGateway != 0 {
		if c.Discord.GuildID == "" {
			missing(keyDiscordGuildID)
		}
		if c.Poll.Interval <= 0 {
			problems = append(problems, fmt.Errorf("%s must be positive", keyPollInterval))
		}
		if c.Poll.Timeout <= 0 {
			problems = append(problems, fmt.Errorf("%s must be positive", keyPollTimeout))
		}
	}

	if c.State.Backend != BackendJSON && c.State.Backend != BackendSQLite {
		problems = append(problems, fmt.Errorf("%s must be %s or %s, got %q", keyStateBackend, BackendJSON, BackendSQLite, c.State.Backend))
	}
	if strings.TrimSpace(c.State.DataDir) == "" {
		missing(keyStateDataDir)
	}
	if _, err := logging.New(c.Log.Level, c.Log.Format, io.Discard); err != nil {
		problems = append(problems, err)
	}
	if err := c.Status.Validate(); err != nil {
		problems = append(problems, err)
	}

	if len(problems) == 0 {
		return nil
	}

	return fmt.Errorf("invalid configuration: %w", errors.Join(problems...))
}
