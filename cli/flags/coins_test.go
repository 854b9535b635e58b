package flags

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func TestCoins_Set(t *testing.T) {
	c := Coins{}

	require.Error(t, c.Set("token"))
	require.NoError(t, c.Set("10token,2other"))
	require.Len(t, c.Value, 2)
	require.Equal(t, "10token,2other", c.String())
}

func TestCoinsFlag_String(t *testing.T) {
	flag := CoinsFlag{
		Name:  "funds, f",
		Usage: "Funds to send",
	}

	require.Equal(t, "--funds value, -f value\tFunds to send", flag.String())
}

func TestCoinsFlag(t *testing.T) {
	f := flag.NewFlagSet("", flag.ContinueOnError)
	f.SetOutput(io.Discard)
	funds := CoinsFlag{Name: "funds, f"}
	funds.Apply(f)
	require.NoError(t, f.Parse([]string{"--funds", "3token"}))
	require.Equal(t, "3token", f.Lookup("f").Value.String())

	ctx := cli.NewContext(cli.NewApp(), f, nil)
	cs := CoinsFromContext(ctx, "funds")
	require.Len(t, cs, 1)
	require.Equal(t, "3token", cs[0].String())
	require.Nil(t, CoinsFromContext(ctx, "unknown"))

	require.Error(t, f.Parse([]string{"--funds", "kek"}))
}
