package main

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/the-maldridge/ntx/pkg/config"
	"github.com/the-maldridge/ntx/pkg/dispatch"
	"github.com/the-maldridge/ntx/pkg/dispatch/nomad"
	"github.com/the-maldridge/ntx/pkg/planner"
	"github.com/the-maldridge/ntx/pkg/repo"
	"github.com/the-maldridge/ntx/pkg/storage"

	_ "github.com/the-maldridge/ntx/pkg/dispatch/local"
	_ "github.com/the-maldridge/ntx/pkg/storage/bc"
	_ "github.com/the-maldridge/ntx/pkg/storage/mem"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	ConfigPath string
	LogLevel   string
}

func (o *rootOptions) AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.ConfigPath, "config", o.ConfigPath, "Path to a JSON config file")
	flags.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level (trace, debug, info, warn, error)")
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{LogLevel: "INFO"}

	cmd := &cobra.Command{
		Use:          "ntx",
		Short:        "Plan and order package transactions",
		SilenceUsage: true,
	}
	opts.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(newPlanCmd(opts), newServeCmd(opts), newHistoryCmd(opts))
	return cmd
}

// env is everything a subcommand needs once config and logging are
// set up.
type env struct {
	l     hclog.Logger
	cfg   *config.Config
	store storage.Storage
	p     *planner.Planner
}

func (e *env) Close() {
	if e.store != nil {
		e.store.Close()
	}
}

func setup(o *rootOptions, withIndexes bool) (*env, error) {
	appLogger := hclog.New(&hclog.LoggerOptions{
		Name:  "ntx",
		Level: hclog.LevelFromString(o.LogLevel),
	})
	appLogger.Debug("ntx is initializing")

	cfg := config.NewConfig()
	if o.ConfigPath != "" {
		if err := cfg.LoadFromFile(o.ConfigPath); err != nil {
			appLogger.Error("Error loading config", "path", o.ConfigPath, "error", err)
			return nil, err
		}
	}

	storage.SetLogger(appLogger)
	storage.DoCallbacks()
	store, err := storage.Initialize(cfg.Storage, cfg.StoragePath)
	if err != nil {
		appLogger.Error("Couldn't initialize storage", "error", err)
		return nil, err
	}

	dispatch.SetLogger(appLogger)
	dispatch.DoCallbacks()
	nomad.JobID = cfg.NomadJob
	disp, err := dispatch.Construct(cfg.Dispatcher)
	if err != nil {
		appLogger.Error("Couldn't initialize dispatcher", "error", err)
		store.Close()
		return nil, err
	}
	disp.SetSlots(cfg.Slots)

	idx := repo.NewIndexService(appLogger, cfg.Arch)
	if withIndexes {
		for _, id := range cfg.RepoIDs() {
			if err := idx.LoadIndex(id, cfg.Repos[id]); err != nil {
				appLogger.Warn("Error loading repodata", "repo", id, "error", err)
			}
		}
		if err := idx.LoadPkgDB(cfg.PkgDB); err != nil {
			appLogger.Warn("Error loading pkgdb, assuming nothing is installed", "path", cfg.PkgDB, "error", err)
		}
		appLogger.Info("Package sack loaded", "available", idx.PkgCount())
	}

	p := planner.New(appLogger, idx,
		planner.WithArch(cfg.Arch),
		planner.WithConditionals(cfg.Conditionals),
		planner.WithStorage(store),
		planner.WithDispatcher(disp),
	)

	return &env{l: appLogger, cfg: cfg, store: store, p: p}, nil
}
