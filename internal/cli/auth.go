package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/mailarc/mailarc/internal/config"
)

type AuthCmd struct {
	Account string `arg:"" help:"Account name to store a password for"`
	Delete  bool   `help:"Remove the stored password instead"`
}

func (c *AuthCmd) Run(ctx *Context) error {
	if c.Delete {
		if err := config.DeletePassword(c.Account); err != nil {
			return fmt.Errorf("failed to delete password: %w", err)
		}
		ctx.Formatter.PrintSuccess(fmt.Sprintf("Password for %s removed from keyring", c.Account))
		return nil
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", c.Account)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return fmt.Errorf("empty password")
	}

	if err := config.SetPassword(c.Account, string(password)); err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}

	ctx.Formatter.PrintSuccess(fmt.Sprintf("Password for %s stored in keyring", c.Account))
	return nil
}
