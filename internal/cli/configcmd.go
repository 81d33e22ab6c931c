package cli

import (
	"fmt"
	"net/url"

	"gopkg.in/yaml.v3"

	"github.com/mailarc/mailarc/internal/config"
)

type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a starter config file"`
	Show ConfigShowCmd `cmd:"" help:"Display the current configuration"`
}

type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing config file"`
}

type ConfigShowCmd struct{}

func (c *ConfigInitCmd) Run(ctx *Context) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if config.Exists() && !c.Force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	cfg.Accounts = []config.AccountEntry{
		{Name: "example", DSN: "imaps://user@imap.example.com/INBOX"},
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	ctx.Formatter.PrintSuccess("Config written to " + path)
	return nil
}

func (c *ConfigShowCmd) Run(ctx *Context) error {
	shown := *ctx.Config
	shown.Accounts = make([]config.AccountEntry, len(ctx.Config.Accounts))
	for i, entry := range ctx.Config.Accounts {
		entry.DSN = redactDSN(entry.DSN)
		shown.Accounts[i] = entry
	}

	if ctx.Formatter.JSON {
		return ctx.Formatter.PrintJSON(shown)
	}

	data, err := yaml.Marshal(shown)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	ctx.Formatter.Printf("%s", data)
	return nil
}

// redactDSN masks the password in a connection descriptor for display.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); !ok {
		return dsn
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}
