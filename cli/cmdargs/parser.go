/*
Package cmdargs contains helpers for positional command arguments.
*/
package cmdargs

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"
)

// EnsureNone returns an error if there are any positional arguments present.
// It can be used to check for them in commands that don't accept arguments.
func EnsureNone(ctx *cli.Context) *cli.ExitError {
	if ctx.Args().Present() {
		return cli.NewExitError("additional arguments given while this command expects none", 1)
	}
	return nil
}

// GetExactly returns positional arguments if there are exactly as many of
// them as names given. Names are only used for error messages.
func GetExactly(ctx *cli.Context, names ...string) ([]string, *cli.ExitError) {
	args := ctx.Args()
	if len(args) < len(names) {
		return nil, cli.NewExitError(fmt.Sprintf("missing %s", strings.Join(names[len(args):], ", ")), 1)
	}
	if len(args) > len(names) {
		return nil, cli.NewExitError(fmt.Sprintf("unexpected arguments: %s", strings.Join(args[len(names):], " ")), 1)
	}
	return args, nil
}
