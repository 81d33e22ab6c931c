package cli

import (
	"runtime"
)

type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *Context) error {
	if ctx.Formatter.JSON {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"name":       "mailarc",
			"version":    Version,
			"go_version": runtime.Version(),
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
		})
	}

	ctx.Formatter.Printf("mailarc version %s\n", Version)
	ctx.Formatter.Printf("Go version: %s\n", runtime.Version())
	ctx.Formatter.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}
