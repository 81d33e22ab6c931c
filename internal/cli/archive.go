package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mailarc/mailarc/internal/archive"
	"github.com/mailarc/mailarc/internal/config"
	"github.com/mailarc/mailarc/internal/imap"
)

type ArchiveCmd struct {
	DSN         string `help:"IMAP connection descriptor (imap[s]://user:pass@host[:port]/folder)" name:"dsn"`
	Account     string `help:"Archive only the named configured account" short:"a"`
	Days        int    `help:"Only archive messages sent within the last N days (0 = all)" short:"d" default:"-1"`
	LocalFolder string `help:"Local archive root (overrides config)" short:"l" type:"path"`
	Wkhtmltopdf string `help:"Path to a wkhtmltopdf binary for PDF rendering (overrides config)" type:"path"`
}

func (c *ArchiveCmd) Run(ctx *Context) error {
	accounts, err := c.resolveAccounts(ctx)
	if err != nil {
		return err
	}

	days := c.Days
	if days < 0 {
		days = ctx.Config.Options.Days
	}
	root := c.LocalFolder
	if root == "" {
		root = ctx.Config.Options.LocalFolder
	}
	renderer := c.Wkhtmltopdf
	if renderer == "" {
		renderer = ctx.Config.Options.Wkhtmltopdf
	}

	var total archive.Result
	failedAccounts := 0
	for _, account := range accounts {
		// Each account gets its own subtree when several share a root.
		accountRoot := root
		if len(accounts) > 1 {
			accountRoot = filepath.Join(root, account.Name)
		}

		res, err := archiveAccount(ctx, account, days, accountRoot, renderer)
		total.Add(res)
		if err != nil {
			failedAccounts++
			ctx.Formatter.PrintError(fmt.Errorf("account %s: %w", account.Name, err))
		}
	}

	if ctx.Formatter.JSON {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"saved":           total.Saved,
			"exists":          total.Exists,
			"failed":          total.Failed,
			"accounts":        len(accounts),
			"accounts_failed": failedAccounts,
		})
	}

	ctx.Formatter.Printf("%d emails created, %d already existed, %d failed\n", total.Saved, total.Exists, total.Failed)
	if failedAccounts > 0 {
		return fmt.Errorf("%d of %d accounts failed", failedAccounts, len(accounts))
	}
	return nil
}

// resolveAccounts turns the --dsn flag or the configured account list
// into resolved connection descriptors.
func (c *ArchiveCmd) resolveAccounts(ctx *Context) ([]*config.Account, error) {
	if c.DSN != "" {
		account, err := config.ParseDSN(c.DSN, c.Account)
		if err != nil {
			return nil, err
		}
		return []*config.Account{account}, nil
	}

	if len(ctx.Config.Accounts) == 0 {
		return nil, fmt.Errorf("no accounts configured - pass --dsn or run 'mailarc config init'")
	}

	var accounts []*config.Account
	for _, entry := range ctx.Config.Accounts {
		if c.Account != "" && entry.Name != c.Account {
			continue
		}
		account, err := config.ParseDSN(entry.DSN, entry.Name)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", entry.Name, err)
		}
		accounts = append(accounts, account)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no configured account named %q", c.Account)
	}
	return accounts, nil
}

func archiveAccount(ctx *Context, account *config.Account, days int, root, renderer string) (archive.Result, error) {
	var total archive.Result

	password, err := account.ResolvePassword()
	if err != nil {
		return total, err
	}

	client := imap.NewClient(account, password)
	if err := client.Connect(); err != nil {
		return total, err
	}
	defer client.Close()

	folders := account.Folders()
	if containsAllFolders(folders) {
		folders, err = client.ListFolders()
		if err != nil {
			return total, err
		}
	}

	store := archive.NewStore(root)
	mat := &archive.Materializer{Renderer: renderer}
	archiver := archive.NewArchiver(client, store, mat, ctx.Formatter)

	for _, folder := range folders {
		ctx.Formatter.Verbosef("archiving %s from %s", folder, account.Name)

		res, err := archiver.ArchiveFolder(folder, days)
		total.Add(res)
		if err != nil {
			// Selection or search failure: skip this folder, keep going.
			ctx.Formatter.PrintError(err)
			continue
		}

		if ctx.Formatter.JSON || ctx.Formatter.Quiet {
			continue
		}
		if res.Saved == 0 && res.Exists == 0 && res.Failed == 0 {
			ctx.Formatter.Printf("Folder %s is empty\n", folder)
		} else {
			ctx.Formatter.Printf("%s: %d saved, %d already existed, %d failed\n", folder, res.Saved, res.Exists, res.Failed)
		}
	}

	return total, nil
}

func containsAllFolders(folders []string) bool {
	for _, f := range folders {
		if f == config.AllFolders {
			return true
		}
	}
	return false
}
