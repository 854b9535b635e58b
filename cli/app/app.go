package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/zkp-registry/cli/registry"
	"github.com/nspcc-dev/zkp-registry/cli/server"
	"github.com/nspcc-dev/zkp-registry/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "ZKReg\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a ZKReg instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "zkreg"
	ctl.Version = config.Version
	ctl.Usage = "Fee-gated zero-knowledge proof registry"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, server.NewCommands()...)
	ctl.Commands = append(ctl.Commands, registry.NewCommands()...)
	return ctl
}
