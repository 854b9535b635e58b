/*
Package registry implements commands querying and updating a remote
registry node via its RPC interface.
*/
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nspcc-dev/zkp-registry/cli/cmdargs"
	"github.com/nspcc-dev/zkp-registry/cli/flags"
	"github.com/nspcc-dev/zkp-registry/cli/options"
	"github.com/nspcc-dev/zkp-registry/pkg/neorpc"
	"github.com/nspcc-dev/zkp-registry/pkg/neorpc/result"
	"github.com/nspcc-dev/zkp-registry/pkg/rpcclient"
	"github.com/urfave/cli"
)

// Stdin is where messages given as '-' are read from.
var Stdin io.Reader = os.Stdin

var (
	fundsFlag = flags.CoinsFlag{
		Name:  "funds, f",
		Usage: "Comma-separated funds sent with the request, like '10token,5other'",
	}
	inFlag = cli.StringFlag{
		Name:     "in, i",
		Usage:    "File with the JSON message ('-' for stdin)",
		Required: true,
	}
)

// NewCommands returns 'registry' command.
func NewCommands() []cli.Command {
	withIn := func(fs ...cli.Flag) []cli.Flag {
		res := make([]cli.Flag, 0, len(options.RPC)+len(fs))
		res = append(res, options.RPC...)
		return append(res, fs...)
	}
	rpcFlags := withIn()
	watchFlags := withIn(
		cli.StringFlag{
			Name:  "events, e",
			Value: neorpc.KeyRegisteredEventID.String() + "," + neorpc.ProofVerifiedEventID.String(),
			Usage: "Comma-separated event streams to subscribe to",
		},
		cli.StringFlag{Name: "scheme", Usage: "Only show events of the given scheme"},
		cli.StringFlag{Name: "issuer", Usage: "Only show events of the given issuer"},
		cli.StringFlag{Name: "prover", Usage: "Only show proof events of the given prover"},
		cli.StringFlag{Name: "valid", Usage: "Only show proof events with the given outcome (true/false)"},
		cli.IntFlag{Name: "count, c", Usage: "Exit after receiving the given number of events (0 is unlimited)"},
	)
	return []cli.Command{{
		Name:  "registry",
		Usage: "Query and update a registry node",
		Subcommands: []cli.Command{
			{
				Name:      "version",
				Usage:     "Show node version and protocol settings",
				UsageText: "zkreg registry version -r endpoint [-s timeout]",
				Action:    getVersion,
				Flags:     rpcFlags,
			},
			{
				Name:      "config",
				Usage:     "Show scheme fees",
				UsageText: "zkreg registry config -r endpoint [-s timeout] <scheme>",
				Action:    getConfig,
				Flags:     rpcFlags,
			},
			{
				Name:      "register-key",
				Usage:     "Register (or replace) sender's verifying key",
				UsageText: "zkreg registry register-key -r endpoint [-s timeout] -i key.json [-f funds] <scheme> <sender>",
				Action:    registerKey,
				Flags:     withIn(inFlag, fundsFlag),
			},
			{
				Name:      "submit-proof",
				Usage:     "Submit a proof to be verified against issuer's key",
				UsageText: "zkreg registry submit-proof -r endpoint [-s timeout] -i proof.json [-f funds] <scheme> <sender> <issuer>",
				Action:    submitProof,
				Flags:     withIn(inFlag, fundsFlag),
			},
			{
				Name:      "issuer-key",
				Usage:     "Show issuer's verifying key",
				UsageText: "zkreg registry issuer-key -r endpoint [-s timeout] <scheme> <issuer>",
				Action:    getIssuerKey,
				Flags:     rpcFlags,
			},
			{
				Name:      "issuers",
				Usage:     "List issuers with registered keys",
				UsageText: "zkreg registry issuers -r endpoint [-s timeout] <scheme>",
				Action:    getIssuers,
				Flags:     rpcFlags,
			},
			{
				Name:      "proof-result",
				Usage:     "Show the latest proof outcome of prover against issuer's key",
				UsageText: "zkreg registry proof-result -r endpoint [-s timeout] <scheme> <issuer> <prover>",
				Action:    getProofResult,
				Flags:     rpcFlags,
			},
			{
				Name:      "prover-latest",
				Usage:     "Show the latest proof outcome of prover",
				UsageText: "zkreg registry prover-latest -r endpoint [-s timeout] <scheme> <prover>",
				Action:    getProverLatest,
				Flags:     rpcFlags,
			},
			{
				Name:      "validate-address",
				Usage:     "Check address against node's address format",
				UsageText: "zkreg registry validate-address -r endpoint [-s timeout] <address>",
				Action:    validateAddress,
				Flags:     rpcFlags,
			},
			{
				Name:  "watch",
				Usage: "Print registry events as they happen",
				UsageText: "zkreg registry watch -r ws://host:port/ws [-e events] [--scheme s] [--issuer a] " +
					"[--prover a] [--valid bool] [-c count]",
				Action: watch,
				Flags:  watchFlags,
			},
		},
	}}
}

// call wraps an RPC action with client creation and result printing.
func call(ctx *cli.Context, names []string, f func(c *rpcclient.Client, args []string) (any, error)) error {
	args, exitErr := cmdargs.GetExactly(ctx, names...)
	if exitErr != nil {
		return exitErr
	}
	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()

	c, ec := options.GetRPCClient(gctx, ctx)
	if ec != nil {
		return ec
	}
	defer c.Close()

	res, err := f(c, args)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return printJSON(ctx, res)
}

func printJSON(ctx *cli.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	_, _ = fmt.Fprintln(ctx.App.Writer, string(b))
	return nil
}

// readMessage reads the JSON key or proof message given with --in flag.
func readMessage(ctx *cli.Context) (json.RawMessage, error) {
	var (
		path = ctx.String("in")
		data []byte
		err  error
	)
	switch path {
	case "":
		return nil, errors.New("no message file given")
	case "-":
		data, err = io.ReadAll(Stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("can't read message: %w", err)
	}
	if !json.Valid(data) {
		return nil, errors.New("message is not a valid JSON")
	}
	return data, nil
}


func getVersion(ctx *cli.Context) error {
	return call(ctx, nil, func(c *rpcclient.Client, _ []string) (any, error) {
		return c.GetVersion()
	})
}

func getConfig(ctx *cli.Context) error {
	return call(ctx, []string{"scheme"}, func(c *rpcclient.Client, args []string) (any, error) {
		return c.GetConfig(args[0])
	})
}

func registerKey(ctx *cli.Context) error {
	msg, err := readMessage(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	funds := rpcclient.Funds(flags.CoinsFromContext(ctx, "funds"))
	return call(ctx, []string{"scheme", "sender"}, func(c *rpcclient.Client, args []string) (any, error) {
		return true, c.RegisterKey(args[0], args[1], funds, msg)
	})
}

func submitProof(ctx *cli.Context) error {
	msg, err := readMessage(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	funds := rpcclient.Funds(flags.CoinsFromContext(ctx, "funds"))
	return call(ctx, []string{"scheme", "sender", "issuer"}, func(c *rpcclient.Client, args []string) (any, error) {
		return c.SubmitProof(args[0], args[1], funds, args[2], msg)
	})
}

func getIssuerKey(ctx *cli.Context) error {
	return call(ctx, []string{"scheme", "issuer"}, func(c *rpcclient.Client, args []string) (any, error) {
		return c.GetIssuerKey(args[0], args[1])
	})
}

func getIssuers(ctx *cli.Context) error {
	return call(ctx, []string{"scheme"}, func(c *rpcclient.Client, args []string) (any, error) {
		return c.GetIssuers(args[0])
	})
}

func getProofResult(ctx *cli.Context) error {
	return call(ctx, []string{"scheme", "issuer", "prover"}, func(c *rpcclient.Client, args []string) (any, error) {
		return c.GetProofResult(args[0], args[1], args[2])
	})
}

func getProverLatest(ctx *cli.Context) error {
	return call(ctx, []string{"scheme", "prover"}, func(c *rpcclient.Client, args []string) (any, error) {
		return c.GetProverLatest(args[0], args[1])
	})
}

func validateAddress(ctx *cli.Context) error {
	return call(ctx, []string{"address"}, func(c *rpcclient.Client, args []string) (any, error) {
		if err := c.ValidateAddress(args[0]); err != nil {
			return nil, fmt.Errorf("%s is not valid: %w", args[0], err)
		}
		return result.ValidateAddress{Address: args[0], IsValid: true}, nil
	})
}

// parseWatchFilter builds an event filter from watch command flags.
func parseWatchFilter(ctx *cli.Context) (*neorpc.EventFilter, error) {
	var (
		f   neorpc.EventFilter
		set bool
	)
	for name, dst := range map[string]**string{
		"scheme": &f.Scheme,
		"issuer": &f.Issuer,
		"prover": &f.Prover,
	} {
		if v := ctx.String(name); v != "" {
			s := v
			*dst = &s
			set = true
		}
	}
	if v := ctx.String("valid"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("bad --valid value: %w", err)
		}
		f.IsValid = &b
		set = true
	}
	if !set {
		return nil, nil
	}
	return &f, nil
}

func watch(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	filter, err := parseWatchFilter(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	var events []neorpc.EventID
	for _, name := range strings.Split(ctx.String("events"), ",") {
		e, err := neorpc.GetEventIDFromString(strings.TrimSpace(name))
		if err != nil || e == neorpc.MissedEventID {
			return cli.NewExitError(fmt.Errorf("unsupported event stream %q", name), 1)
		}
		if filter != nil {
			if err := filter.IsValidFor(e); err != nil {
				return cli.NewExitError(err, 1)
			}
		}
		events = append(events, e)
	}
	count := ctx.Int("count")
	if count < 0 {
		return cli.NewExitError(errors.New("negative count"), 1)
	}

	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()
	c, ec := options.GetWSClient(gctx, ctx)
	if ec != nil {
		return ec
	}
	defer c.Close()

	for _, e := range events {
		var err error
		switch e {
		case neorpc.KeyRegisteredEventID:
			_, err = c.ReceiveKeyRegistered(filter)
		case neorpc.ProofVerifiedEventID:
			_, err = c.ReceiveProofVerified(filter)
		}
		if err != nil {
			return cli.NewExitError(fmt.Errorf("failed to subscribe to %s: %w", e, err), 1)
		}
	}

	var received int
	for n := range c.Notifications {
		if err := printJSON(ctx, n); err != nil {
			return err
		}
		received++
		if count != 0 && received >= count {
			return nil
		}
	}
	if err := c.GetError(); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}
