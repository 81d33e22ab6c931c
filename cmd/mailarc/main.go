package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/mailarc/mailarc/internal/cli"
)

func main() {
	_ = godotenv.Load()

	var c cli.CLI

	parser := kong.Must(&c,
		kong.Name("mailarc"),
		kong.Description("Archive IMAP mailboxes into a local directory tree"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		parser.FatalIfErrorf(err)
	}

	execCtx, err := cli.NewContext(&c.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(execCtx); err != nil {
		execCtx.Formatter.PrintError(err)
		os.Exit(1)
	}
}
