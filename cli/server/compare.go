package server

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/nspcc-dev/zkp-registry/cli/cmdargs"
	"github.com/urfave/cli"
)

func (d *dump) normalize() {
	sort.Slice(d.Storage, func(i, j int) bool {
		return d.Storage[i].Key < d.Storage[j].Key
	})
}

// compare reports every mismatching value to w and fails on the first
// structural difference.
func compare(w io.Writer, a, b *dump) error {
	a.normalize()
	b.normalize()
	if a.Version != b.Version {
		return fmt.Errorf("version mismatch: %s vs %s", a.Version, b.Version)
	}
	if a.Size != b.Size {
		return fmt.Errorf("records number mismatch: %d vs %d", a.Size, b.Size)
	}
	if len(a.Storage) != len(b.Storage) {
		return fmt.Errorf("records length mismatch: %d vs %d", len(a.Storage), len(b.Storage))
	}
	fail := false
	for i := range a.Storage {
		if a.Storage[i].Key != b.Storage[i].Key {
			return fmt.Errorf("key mismatch: %s vs %s", a.Storage[i].Key, b.Storage[i].Key)
		}
		if a.Storage[i].Value != b.Storage[i].Value {
			fail = true
			_, _ = fmt.Fprintf(w, "value mismatch for key %s: %s vs %s\n", a.Storage[i].Key, a.Storage[i].Value, b.Storage[i].Value)
		}
	}
	if fail {
		return errors.New("dumps differ")
	}
	return nil
}

func compareDumps(ctx *cli.Context) error {
	args, exitErr := cmdargs.GetExactly(ctx, "first dump", "second dump")
	if exitErr != nil {
		return exitErr
	}
	if args[0] == "" || args[1] == "" {
		return cli.NewExitError("dump file names can't be empty", 1)
	}
	a, err := readDumpFile(args[0])
	if err != nil {
		return cli.NewExitError(fmt.Errorf("reading file %s: %w", args[0], err), 1)
	}
	b, err := readDumpFile(args[1])
	if err != nil {
		return cli.NewExitError(fmt.Errorf("reading file %s: %w", args[1], err), 1)
	}
	if err := compare(ctx.App.Writer, a, b); err != nil {
		return cli.NewExitError(err, 1)
	}
	_, _ = fmt.Fprintln(ctx.App.Writer, "dumps are equal")
	return nil
}
