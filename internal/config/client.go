package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the client configuration directory name.
	AppName = "smartkanban"

	// ClientFile is the terminal board configuration filename.
	ClientFile = "board.toml"

	DefaultServerURL    = "http://localhost:3001"
	DefaultPollInterval = 5 * time.Second
)

// Client is the terminal board configuration.
type Client struct {
	ServerURL string `toml:"server_url"`
	// Mode is open, shared or account and must match the server's AUTH_MODE.
	Mode        string `toml:"mode"`
	Email       string `toml:"email"`
	Username    string `toml:"username"`
	PasswordEnv string `toml:"password_env"`
	// PollInterval is a Go duration string such as "5s".
	PollInterval string `toml:"poll_interval"`

	// Password is resolved from PasswordEnv or KANBAN_PASSWORD, never from the file.
	Password string `toml:"-"`
}

// DefaultClientDir returns $XDG_CONFIG_HOME/smartkanban, or
// $HOME/.config/smartkanban when XDG_CONFIG_HOME is unset.
func DefaultClientDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func DefaultClientPath() string {
	return filepath.Join(DefaultClientDir(), ClientFile)
}

// LoadClient reads the TOML file at path, if it exists, and applies the
// environment overrides. A missing file yields the defaults.
func LoadClient(path string) (*Client, error) {
	cfg := &Client{
		ServerURL:    DefaultServerURL,
		Mode:         "account",
		PasswordEnv:  "KANBAN_PASSWORD",
		PollInterval: DefaultPollInterval.String(),
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if url := os.Getenv("KANBAN_SERVER_URL"); url != "" {
		cfg.ServerURL = url
	}
	if cfg.PasswordEnv != "" {
		cfg.Password = os.Getenv(cfg.PasswordEnv)
	}
	if pw := os.Getenv("KANBAN_PASSWORD"); pw != "" && cfg.Password == "" {
		cfg.Password = pw
	}

	if _, err := cfg.Interval(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Interval parses PollInterval. An empty value means the default.
func (c *Client) Interval() (time.Duration, error) {
	if c.PollInterval == "" {
		return DefaultPollInterval, nil
	}
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid poll_interval %q", c.PollInterval)
	}
	return d, nil
}

// Login returns the identifier to log in with for the configured mode.
func (c *Client) Login() string {
	if strings.EqualFold(strings.TrimSpace(c.Mode), "shared") {
		return c.Username
	}
	return c.Email
}
