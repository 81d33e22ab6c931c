package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

const (
	AppName     = "mailarc"
	EnvPassword = "MAILARC_PASSWORD"
)

// AccountEntry is one account in the config file. Only the DSN is
// required; the name defaults to whatever the DSN resolves to.
type AccountEntry struct {
	Name string `yaml:"name,omitempty"`
	DSN  string `yaml:"dsn"`
}

type OptionsConfig struct {
	Days        int    `yaml:"days"`
	LocalFolder string `yaml:"local_folder"`
	Wkhtmltopdf string `yaml:"wkhtmltopdf,omitempty"`
}

type Config struct {
	Accounts []AccountEntry `yaml:"accounts"`
	Options  OptionsConfig  `yaml:"options"`
}

func DefaultConfig() *Config {
	return &Config{
		Options: OptionsConfig{
			Days:        0,
			LocalFolder: "archive",
		},
	}
}

func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, AppName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s - run 'mailarc config init' to create one", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// ResolvePassword finds the password for an account, trying the DSN,
// the MAILARC_PASSWORD environment variable and the system keyring in
// that order.
func (a *Account) ResolvePassword() (string, error) {
	if a.Password != "" {
		return a.Password, nil
	}
	if pw := os.Getenv(EnvPassword); pw != "" {
		return pw, nil
	}
	pw, err := keyring.Get(AppName, a.Name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("no password for account %s - put one in the DSN or run 'mailarc auth %s'", a.Name, a.Name)
		}
		return "", fmt.Errorf("failed to get password from keyring: %w", err)
	}
	return pw, nil
}

// SetPassword stores an account password in the system keyring.
func SetPassword(name, password string) error {
	return keyring.Set(AppName, name, password)
}

func DeletePassword(name string) error {
	return keyring.Delete(AppName, name)
}
