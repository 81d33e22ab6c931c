package cli

import (
	"fmt"

	"github.com/mailarc/mailarc/internal/config"
	"github.com/mailarc/mailarc/internal/imap"
)

type FoldersCmd struct {
	DSN     string `help:"IMAP connection descriptor" name:"dsn"`
	Account string `help:"Use the named configured account" short:"a"`
}

func (c *FoldersCmd) Run(ctx *Context) error {
	account, err := singleAccount(ctx, c.DSN, c.Account)
	if err != nil {
		return err
	}

	password, err := account.ResolvePassword()
	if err != nil {
		return err
	}

	client := imap.NewClient(account, password)
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Close()

	folders, err := client.ListFolders()
	if err != nil {
		return err
	}

	if ctx.Formatter.JSON {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"account": account.Name,
			"count":   len(folders),
			"folders": folders,
		})
	}

	for _, folder := range folders {
		ctx.Formatter.Println(folder)
	}
	return nil
}

// singleAccount resolves exactly one account from a DSN flag or the
// config file. With neither flag and exactly one configured account,
// that account is used.
func singleAccount(ctx *Context, dsn, name string) (*config.Account, error) {
	if dsn != "" {
		return config.ParseDSN(dsn, name)
	}

	entries := ctx.Config.Accounts
	if name != "" {
		for _, entry := range entries {
			if entry.Name == name {
				return config.ParseDSN(entry.DSN, entry.Name)
			}
		}
		return nil, fmt.Errorf("no configured account named %q", name)
	}

	switch len(entries) {
	case 0:
		return nil, fmt.Errorf("no accounts configured - pass --dsn or run 'mailarc config init'")
	case 1:
		return config.ParseDSN(entries[0].DSN, entries[0].Name)
	default:
		return nil, fmt.Errorf("several accounts configured - pick one with --account")
	}
}
