package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/portainer-notifier/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".config-*.toml.tmp"
)

var ErrConfigExists = errors.New("config file already exists")

type fileSchema struct {
	Portainer portainerSchema  `toml:"portainer"`
	Discord   discordSchema    `toml:"discord"`
	Poll      pollSchema       `toml:"poll"`
	State     stateSchema      `toml:"state"`
	Log       logSchema        `toml:"log"`
	Status    map[string]style `toml:"status"`
}

type portainerSchema struct {
	URL                string `toml:"url"`
	Token              string `toml:"token"`
	TokenRef           string `toml:"token_ref"`
	EndpointID         int    `toml:"endpoint_id"`
	AuthScheme         string `toml:"auth_scheme"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
	Timeout            string `toml:"timeout"`
}

type discordSchema struct {
	Token     string `toml:"token"`
	TokenRef  string `toml:"token_ref"`
	ChannelID string `toml:"channel_id"`
	GuildID   string `toml:"guild_id"`
}

type pollSchema struct {
	Interval string `toml:"interval"`
	Timeout  string `toml:"timeout"`
}

type stateSchema struct {
	Backend      string `toml:"backend"`
	DataDir      string `toml:"data_dir"`
	PruneMissing bool   `toml:"prune_missing"`
}

type logSchema struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// style is one [status.<code>] table; codes are lowercase and colors are "#RRGGBB".
type style struct {
	Label string `toml:"label"`
	Emoji string `toml:"emoji"`
	Color string `toml:"color"`
}

func defaultSchema() fileSchema {
	statuses := map[string]style{}
	for code, s := range domain.DefaultStatusTable() {
		statuses[statusCode(code)] = style{Label: s.Label, Emoji: s.Emoji, Color: fmt.Sprintf("#%06X", s.Color)}
	}

	return fileSchema{
		Portainer: portainerSchema{
			EndpointID: 1,
			AuthScheme: AuthSchemeAPIKey,
			Timeout:    "10s",
		},
		Poll: pollSchema{
			Interval: "60s",
			Timeout:  "30s",
		},
		State: stateSchema{
			Backend:      BackendJSON,
			DataDir:      "data",
			PruneMissing: true,
		},
		Log: logSchema{
			Level:  "info",
			Format: "text",
		},
		Status: statuses,
	}
}

func (s fileSchema) encode() ([]byte, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode config file: %w", err)
	}

	return data, nil
}

// DefaultTOML returns the content config init writes.
func DefaultTOML() ([]byte, error) {
	return defaultSchema().encode()
}

// WriteDefault writes the default configuration to path. An existing file is kept unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	data, err := DefaultTOML()
	if err != nil {
		return err
	}

	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}
