package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/narsvm/internal/bus"
	"github.com/danielpatrickdp/narsvm/internal/config"
	"github.com/danielpatrickdp/narsvm/internal/eval"
	"github.com/danielpatrickdp/narsvm/internal/logging"
	"github.com/danielpatrickdp/narsvm/internal/metrics"
	"github.com/danielpatrickdp/narsvm/internal/runtime"
	"github.com/danielpatrickdp/narsvm/internal/snapshot"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand shares.
type app struct {
	in  io.Reader
	out io.Writer

	configPath string
	dbPath     string
	logLevel   string
	jsonLogs   bool

	cfg    *config.Config
	logger *zap.Logger
}

// #region root

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out}

	root := &cobra.Command{
		Use:   "narsvm",
		Short: "A resource-bounded NARS reasoner driven by NAVM commands",
		Long: `narsvm runs a Non-Axiomatic Reasoning System behind a small command set:
NSE (input Narsese), CYC (run cycles), VOL, RES, INF, HLP, SAV, LOA, REM and EXI.

Run without a subcommand to start the interactive shell.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShell(cmd.Context())
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&a.dbPath, "db", "", "sqlite database path (overrides storage.path)")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides logging.level)")
	flags.BoolVar(&a.jsonLogs, "json-logs", false, "log as JSON")

	root.AddCommand(
		a.shellCmd(),
		a.batchCmd(),
		a.serveCmd(),
		a.replayCmd(),
		a.inspectCmd(),
		a.exportCmd(),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	if a.configPath != "" {
		loaded, err := config.LoadFromFile(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("db") {
		cfg.Storage.Path = a.dbPath
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.jsonLogs {
		cfg.Logging.JSON = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.JSON)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// #endregion root

// #region session

// newSession builds a session from the configuration. Outputs go to out
// and to the configured record and bus channels. The returned func
// releases the store and the bus connection.
func (a *app) newSession(out io.Writer, m *metrics.Metrics) (*runtime.Session, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	opts := runtime.Options{Logger: a.logger, Metrics: m}
	if a.cfg.Runtime.CheckInvariants {
		opts.Harness = eval.NewEvalHarness(eval.DefaultEvalConfig())
	}
	if a.cfg.Storage.Path != "" {
		store, err := snapshot.Open(a.cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open store %s: %w", a.cfg.Storage.Path, err)
		}
		closers = append(closers, func() { store.Close() })
		opts.Store = store
	}

	s, err := runtime.New(a.cfg.Reasoner, a.cfg.Engine, opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if v := a.cfg.Runtime.Volume; v != 0 {
		s.Execute(fmt.Sprintf("VOL %d", v))
	}

	if out != nil {
		s.AddChannel(runtime.NewWriterChannel(out))
	}
	if a.cfg.Runtime.Record {
		s.AddChannel(runtime.NewRecordChannel(opts.Store.DB()))
	}
	if a.cfg.Bus.URL != "" {
		p, err := bus.Connect(a.cfg.Bus.URL, a.cfg.Bus.Subject)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, p.Close)
		s.AddChannel(runtime.NewBusChannel(p))
	}

	a.logger.Info("session started",
		zap.String("session", s.ID()),
		zap.String("engine", a.cfg.Engine),
		zap.String("db", a.cfg.Storage.Path),
		zap.Bool("record", a.cfg.Runtime.Record),
	)
	return s, cleanup, nil
}

// #endregion session
