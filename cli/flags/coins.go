package flags

import (
	"flag"
	"fmt"
	"strings"

	"github.com/nspcc-dev/zkp-registry/pkg/core/state"
	"github.com/urfave/cli"
)

// Coins is a wrapper for a list of state.Coin with flag.Value methods.
type Coins struct {
	Value state.Coins
}

// CoinsFlag is a flag with a comma-separated coin list like "10token,5other".
type CoinsFlag struct {
	Name  string
	Usage string
	Value Coins
}

var (
	_ flag.Value = (*Coins)(nil)
	_ cli.Flag   = CoinsFlag{}
)

// String implements the fmt.Stringer interface.
func (c Coins) String() string {
	return c.Value.String()
}

// Set implements the flag.Value interface.
func (c *Coins) Set(s string) error {
	cs, err := state.ParseCoins(s)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	c.Value = cs
	return nil
}

// String returns a readable representation of this value
// (for usage defaults).
func (f CoinsFlag) String() string {
	var names []string
	for _, name := range flagNames(f.Name) {
		names = append(names, getNameHelp(name))
	}

	return strings.Join(names, ", ") + "\t" + f.Usage
}

func getNameHelp(name string) string {
	if len(name) == 1 {
		return fmt.Sprintf("-%s value", name)
	}
	return fmt.Sprintf("--%s value", name)
}

// GetName returns the name of the flag.
func (f CoinsFlag) GetName() string {
	return f.Name
}

// Apply populates the flag given the flag set and environment.
// Ignores errors.
func (f CoinsFlag) Apply(set *flag.FlagSet) {
	for _, name := range flagNames(f.Name) {
		set.Var(&f.Value, name, f.Usage)
	}
}

// CoinsFromContext returns parsed coins provided flag name, nil when the
// flag is not set.
func CoinsFromContext(ctx *cli.Context, name string) state.Coins {
	c, ok := ctx.Generic(name).(*Coins)
	if !ok || c == nil {
		return nil
	}
	return c.Value
}
