package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/nspcc-dev/zkp-registry/cli/cmdargs"
	"github.com/nspcc-dev/zkp-registry/cli/options"
	"github.com/nspcc-dev/zkp-registry/pkg/config"
	"github.com/nspcc-dev/zkp-registry/pkg/core"
	"github.com/nspcc-dev/zkp-registry/pkg/core/dao"
	"github.com/nspcc-dev/zkp-registry/pkg/core/state"
	"github.com/nspcc-dev/zkp-registry/pkg/core/storage"
	"github.com/nspcc-dev/zkp-registry/pkg/services/metrics"
	"github.com/nspcc-dev/zkp-registry/pkg/services/rpcsrv"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewCommands returns 'node' and 'db' commands.
func NewCommands() []cli.Command {
	var cfgFlags = []cli.Flag{options.Config, options.ConfigFile, options.Debug}
	var cfgWithOutFlags = make([]cli.Flag, len(cfgFlags), len(cfgFlags)+1)
	copy(cfgWithOutFlags, cfgFlags)
	cfgWithOutFlags = append(cfgWithOutFlags, cli.StringFlag{
		Name:  "out, o",
		Usage: "Output file (stdout if not given)",
	})
	var cfgWithInFlags = make([]cli.Flag, len(cfgFlags), len(cfgFlags)+1)
	copy(cfgWithInFlags, cfgFlags)
	cfgWithInFlags = append(cfgWithInFlags, cli.StringFlag{
		Name:  "in, i",
		Usage: "Input file (stdin if not given)",
	})
	return []cli.Command{
		{
			Name:      "node",
			Usage:     "Start a registry node",
			UsageText: "zkreg node [--config-path path] [-d] [--config-file file]",
			Action:    startServer,
			Flags:     cfgFlags,
		},
		{
			Name:  "db",
			Usage: "Database manipulations",
			Subcommands: []cli.Command{
				{
					Name:      "info",
					Usage:     "Show registry state summary",
					UsageText: "zkreg db info [--config-path path] [--config-file file]",
					Action:    infoDB,
					Flags:     cfgFlags,
				},
				{
					Name:      "dump",
					Usage:     "Dump all registry records into a file",
					UsageText: "zkreg db dump [-o file] [--config-path path] [--config-file file]",
					Action:    dumpDB,
					Flags:     cfgWithOutFlags,
				},
				{
					Name:      "restore",
					Usage:     "Restore registry records from a dump into an empty DB",
					UsageText: "zkreg db restore [-i file] [--config-path path] [--config-file file]",
					Action:    restoreDB,
					Flags:     cfgWithInFlags,
				},
				{
					Name:      "compare",
					Usage:     "Compare two registry dumps",
					UsageText: "zkreg db compare <dumpA> <dumpB>",
					Action:    compareDumps,
				},
			},
		},
	}
}

func newGraceContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()
	return ctx
}

// initHost opens the configured store and creates a Host over it. The store
// is closed if Host can't be created.
func initHost(cfg config.Config, log *zap.Logger) (*core.Host, error) {
	store, err := storage.NewStore(cfg.ApplicationConfiguration.DBConfiguration)
	if err != nil {
		return nil, fmt.Errorf("could not initialize storage: %w", err)
	}

	host, err := core.NewHost(store, cfg.ProtocolConfiguration, cfg.ApplicationConfiguration.KeyCacheSize, log)
	if err != nil {
		closeErr := store.Close()
		if closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close the DB: %w", closeErr))
		}
		return nil, fmt.Errorf("could not initialize registry: %w", err)
	}
	return host, nil
}

func initHostWithMetrics(cfg config.Config, log *zap.Logger) (*core.Host, *metrics.Service, *metrics.Service, error) {
	host, err := initHost(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	prometheus := metrics.NewPrometheusService(cfg.ApplicationConfiguration.Prometheus, log)
	pprof := metrics.NewPprofService(cfg.ApplicationConfiguration.Pprof, log)

	if err = prometheus.Start(); err != nil {
		_ = host.Close()
		return nil, nil, nil, fmt.Errorf("failed to start Prometheus service: %w", err)
	}
	if err = pprof.Start(); err != nil {
		prometheus.ShutDown()
		_ = host.Close()
		return nil, nil, nil, fmt.Errorf("failed to start Pprof service: %w", err)
	}
	return host, prometheus, pprof, nil
}

func startServer(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}

	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	log, logLevel, logCloser, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if logCloser != nil {
		defer func() { _ = logCloser() }()
	}

	grace, cancel := context.WithCancel(newGraceContext())
	defer cancel()

	host, prometheus, pprof, err := initHostWithMetrics(cfg, log)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() {
		pprof.ShutDown()
		prometheus.ShutDown()
		if err := host.Close(); err != nil {
			log.Error("failed to close the DB", zap.Error(err))
		}
	}()

	errChan := make(chan error, len(cfg.ApplicationConfiguration.RPC.Addresses))
	rpcServer := rpcsrv.New(host, cfg.ProtocolConfiguration, cfg.ApplicationConfiguration.RPC, log, errChan)
	if err = rpcServer.Start(); err != nil {
		return cli.NewExitError(fmt.Errorf("failed to start RPC server: %w", err), 1)
	}
	log.Info("node started",
		zap.String("version", config.Version),
		zap.Strings("schemes", cfg.ProtocolConfiguration.Schemes),
		zap.String("db", cfg.ApplicationConfiguration.DBConfiguration.Type))

	sighupCh := make(chan os.Signal, 1)
	signal.Notify(sighupCh, sighup)

	var shutdownErr error
Main:
	for {
		select {
		case err := <-errChan:
			shutdownErr = fmt.Errorf("server error: %w", err)
			cancel()
		case sig := <-sighupCh:
			log.Info("signal received", zap.Stringer("name", sig))
			newCfg, err := options.GetConfigFromContext(ctx)
			if err != nil {
				log.Warn("can't reread the config file, signal ignored", zap.Error(err))
				break
			}
			reloadLogLevel(ctx.Bool("debug"), logLevel, newCfg.ApplicationConfiguration, log)
		case <-grace.Done():
			signal.Stop(sighupCh)
			rpcServer.Shutdown()
			break Main
		}
	}

	if shutdownErr != nil {
		return cli.NewExitError(shutdownErr, 1)
	}
	return nil
}

// reloadLogLevel applies the log level from the new configuration unless
// debug mode is forced from the command line.
func reloadLogLevel(debug bool, level *zap.AtomicLevel, cfg config.ApplicationConfiguration, log *zap.Logger) {
	if debug || cfg.LogLevel == "" {
		return
	}
	lvl, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn("wrong LogLevel in the new config, not changing it", zap.Error(err))
		return
	}
	if lvl != level.Level() {
		log.Info("changing log level", zap.Stringer("old", level.Level()), zap.Stringer("new", lvl))
		level.SetLevel(lvl)
	}
}

// getConfigAndLogger is shared by the offline db commands.
func getConfigAndLogger(ctx *cli.Context) (config.Config, *zap.Logger, func(), error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return config.Config{}, nil, nil, cli.NewExitError(err, 1)
	}
	log, _, logCloser, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return config.Config{}, nil, nil, cli.NewExitError(err, 1)
	}
	return cfg, log, func() {
		_ = log.Sync()
		if logCloser != nil {
			_ = logCloser()
		}
	}, nil
}

func infoDB(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, log, closer, err := getConfigAndLogger(ctx)
	if err != nil {
		return err
	}
	defer closer()

	host, err := initHost(cfg, log)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = host.Close() }()

	tw := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "DB version:\t%s\n", core.Version)
	for _, id := range host.Schemes() {
		schemeCfg, err := host.Config(id)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("%s: %w", id, err), 1)
		}
		issuers, err := host.Issuers(id)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("%s: %w", id, err), 1)
		}
		_, _ = fmt.Fprintf(tw, "%s:\tissuers: %d\tkey fee: %s\tproof fee: %s\n", id, len(issuers),
			feeString(schemeCfg.KeyRegistrationFee), feeString(schemeCfg.ProofSubmissionFee))
	}
	_ = tw.Flush()
	return nil
}

func feeString(c *state.Coin) string {
	if c == nil {
		return "free"
	}
	return c.String()
}

func dumpDB(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, log, closer, err := getConfigAndLogger(ctx)
	if err != nil {
		return err
	}
	defer closer()

	store, err := storage.NewStore(cfg.ApplicationConfiguration.DBConfiguration)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("could not initialize storage: %w", err), 1)
	}
	defer func() { _ = store.Close() }()

	d, err := storeToDump(store)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	out := ctx.App.Writer
	if outPath := ctx.String("out"); outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("can't create output file: %w", err), 1)
		}
		defer f.Close()
		out = f
	}
	if err = writeDump(out, d); err != nil {
		return cli.NewExitError(err, 1)
	}
	log.Info("dump completed", zap.Int("records", d.Size))
	return nil
}

func restoreDB(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, log, closer, err := getConfigAndLogger(ctx)
	if err != nil {
		return err
	}
	defer closer()

	d, err := readDumpFile(ctx.String("in"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("can't read dump: %w", err), 1)
	}
	if d.Version != core.Version {
		return cli.NewExitError(fmt.Errorf("%w: dump has %s, expected %s", dao.ErrIncompatibleVersion, d.Version, core.Version), 1)
	}
	puts, err := d.changeSet()
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid dump: %w", err), 1)
	}

	store, err := storage.NewStore(cfg.ApplicationConfiguration.DBConfiguration)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("could not initialize storage: %w", err), 1)
	}
	defer func() { _ = store.Close() }()

	var empty = true
	store.Seek(storage.SeekRange{}, func(_, _ []byte) bool {
		empty = false
		return false
	})
	if !empty {
		return cli.NewExitError(errors.New("DB is not empty"), 1)
	}
	if err = store.PutChangeSet(puts); err != nil {
		return cli.NewExitError(fmt.Errorf("failed to restore: %w", err), 1)
	}
	log.Info("restore completed", zap.Int("records", d.Size))
	return nil
}
