package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"BookShelf/internal/catalog"
	"BookShelf/internal/config"
	"BookShelf/internal/storage"
	"BookShelf/pkg/kit"
)

const service = "bookshelf"

type flags struct {
	configPath  string
	dataFile    string
	logLevel    string
	metricsFile string
	json        bool
}

// App wires config, logging, metrics and the catalog for one invocation.
type App struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	flags flags

	cfg     config.Config
	log     *zap.Logger
	reg     *prometheus.Registry
	svc     *catalog.Service
	loadErr error
}

func New(in io.Reader, out, errOut io.Writer) *App {
	return &App{in: in, out: out, errOut: errOut}
}

func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           service,
		Short:         "Keep a personal book catalog in a local JSON file",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.reportLoad(true)
			return NewMenu(a.svc, a.in, a.out).Run(cmd.Context())
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "YAML config file (default "+config.DefaultPath+" if present)")
	pf.StringVar(&a.flags.dataFile, "data-file", "", "catalog JSON file (default "+config.DefaultDataFile+")")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	pf.BoolVar(&a.flags.json, "json", false, "print results as JSON")

	root.AddCommand(
		a.addCmd(),
		a.removeCmd(),
		a.findCmd(),
		a.listCmd(),
		a.saveCmd(),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}

	fs := cmd.Flags()
	if fs.Changed("data-file") {
		cfg.DataFile = a.flags.dataFile
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = a.flags.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := kit.NewLogger(service, cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log = log.With(zap.String("session_id", uuid.NewString()))

	a.reg = prometheus.NewRegistry()
	a.svc = catalog.NewService(
		catalog.NewMemStore(),
		storage.NewJSONFile(cfg.DataFile, a.log),
		a.log,
		kit.NewMetrics(a.reg),
	)
	a.loadErr = a.svc.Load(cmd.Context())
	return nil
}

// Close flushes metrics and logs. It is safe to call when setup never ran.
func (a *App) Close() error {
	if a.log == nil {
		return nil
	}
	err := kit.WriteTextfile(a.cfg.MetricsFile, a.reg)
	if err != nil {
		a.log.Warn("write metrics failed", zap.String("path", a.cfg.MetricsFile), zap.Error(err))
	}
	_ = a.log.Sync()
	return err
}

func (a *App) reportLoad(interactive bool) {
	switch {
	case a.loadErr == nil:
		if interactive {
			fmt.Fprintf(a.out, "Loaded %d books from %s.\n", a.svc.Store.Len(), a.cfg.DataFile)
		}
	case errors.Is(a.loadErr, catalog.ErrNoData):
		if interactive {
			fmt.Fprintf(a.out, "No saved catalog at %s, starting empty.\n", a.cfg.DataFile)
		}
	default:
		fmt.Fprintf(a.errOut, "Warning: could not load %s, starting empty: %v\n", a.cfg.DataFile, a.loadErr)
	}
}
