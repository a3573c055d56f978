package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"continuum-hq/continuum/pkg/cli"
	"continuum-hq/continuum/pkg/config"
	"continuum-hq/continuum/pkg/decision"
	"continuum-hq/continuum/pkg/engine"
	"continuum-hq/continuum/pkg/evidence"
	"continuum-hq/continuum/pkg/evidence/recorder"
	"continuum-hq/continuum/pkg/evidence/storage"
	"continuum-hq/continuum/pkg/gateway/handlers"
	"continuum-hq/continuum/pkg/license"
	"continuum-hq/continuum/pkg/server"
	"continuum-hq/continuum/pkg/telemetry/health"
	"continuum-hq/continuum/pkg/telemetry/logging"
	"continuum-hq/continuum/pkg/telemetry/metrics"
	"continuum-hq/continuum/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Continuum audit gateway",
	Long: `Start the Continuum audit gateway with the specified configuration.

The gateway listens on the configured address, forwards analysis
requests to the decision engine, normalizes the decision state, and
records content-free evidence for every request.

Examples:
  # Start with default config
  continuum run

  # Start with custom config
  continuum run --config /etc/continuum/config.yaml

  # Override listen address
  continuum run --listen 0.0.0.0:8090

  # Validate config without starting the gateway
  continuum run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the gateway")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	lg, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Redact:    cfg.Telemetry.Logging.Redact,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	lg.InstallDefault()
	log := lg.Slog()

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	// License plumbing: usage counter, offline validator, watchdog.
	usageStore, err := license.NewUsageStore(cfg.License.UsageDBPath)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("open usage store: %w", err))
	}
	defer usageStore.Close()

	validator, err := license.NewValidator(cfg.License.Key, cfg.License.PublicKey, usageStore, log)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("license validator: %w", err))
	}
	watchdog, err := license.NewWatchdog(validator, license.WatchdogConfig{
		Interval: cfg.License.CheckInterval,
		Mode:     license.EnforcementMode(cfg.License.Mode),
	}, log)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	if err := watchdog.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer watchdog.Stop()

	eng, err := buildEngine(cfg, log)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	// Evidence pipeline: builder, local stores, remote writer, mirror.
	builder := recorder.NewBuilder(cfg.Evidence.Salt)

	var (
		rec       *recorder.Recorder
		statsFrom handlers.StatsSource
	)
	if cfg.Evidence.Enabled {
		locals, remote, statsSource, cleanup, err := buildStorages(ctx, cfg, log)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer cleanup()
		statsFrom = statsSource

		rec = recorder.NewRecorder(locals, remote, &recorder.Config{
			Enabled:      true,
			AsyncBuffer:  cfg.Evidence.AsyncBuffer,
			WriteTimeout: cfg.Evidence.WriteTimeout,
		})
		defer rec.Close()
	}

	var prom *metrics.PromMetrics
	if cfg.Telemetry.Metrics.Prometheus {
		prom = metrics.NewPromMetrics()
	}
	agg := metrics.NewAggregator(cfg.Telemetry.Metrics.WindowSize, prom)

	tracer, err := tracing.New(tracing.Config{
		Enabled:     cfg.Telemetry.Tracing.Enabled,
		Endpoint:    cfg.Telemetry.Tracing.Endpoint,
		Insecure:    cfg.Telemetry.Tracing.Insecure,
		SampleRatio: cfg.Telemetry.Tracing.SampleRatio,
		ServiceName: cfg.Telemetry.Tracing.ServiceName,
	})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("tracing: %w", err))
	}
	defer tracer.Shutdown(context.Background())

	checker := health.New(0)
	checker.Register("license", func(ctx context.Context) error {
		if st := watchdog.Status(); !st.Valid() && st.State != license.StateUnchecked {
			return fmt.Errorf("license %s: %s", st.State, st.Reason)
		}
		return nil
	})
	if statsFrom != nil {
		statsSource := statsFrom
		checker.Register("evidence", func(ctx context.Context) error {
			_, err := statsSource.Stats(ctx)
			return err
		})
	}

	api := &handlers.API{
		Engine:          eng,
		Normalizer:      decision.NewNormalizer(log),
		Builder:         builder,
		Usage:           usageStore,
		Watchdog:        watchdog,
		Metrics:         agg,
		Health:          checker,
		Tracer:          tracer,
		Logger:          log,
		EvidenceEnabled: cfg.Evidence.Enabled,
	}
	if rec != nil {
		api.Evidence = rec
	}
	api.StatsFrom = statsFrom

	var promHandler http.Handler
	if prom != nil {
		promHandler = prom.Handler()
	}
	srv := server.NewServer(&cfg.Server, api, promHandler, log)

	// Hot reload: log level and license enforcement mode follow the
	// config file without a restart.
	watcher := config.NewWatcher(cfgFile, log)
	go func() {
		if err := watcher.Watch(ctx, func(newCfg *config.Config) {
			if err := lg.SetLevel(newCfg.Telemetry.Logging.Level); err != nil {
				log.Warn("reload: bad log level", "error", err)
			}
			if err := watchdog.SetMode(license.EnforcementMode(newCfg.License.Mode)); err != nil {
				log.Warn("reload: bad license mode", "error", err)
			}
		}); err != nil {
			log.Warn("config watcher stopped", "error", err)
		}
	}()

	log.Info("continuum starting",
		"version", Version,
		"listen", cfg.Server.ListenAddress,
		"engine", eng.Name(),
		"evidence_enabled", cfg.Evidence.Enabled,
		"license_mode", cfg.License.Mode,
	)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// buildEngine constructs the configured decision engine.
func buildEngine(cfg *config.Config, log *slog.Logger) (engine.Engine, error) {
	switch cfg.Engine.Type {
	case "http":
		return engine.NewClient(engine.ClientConfig{
			BaseURL: cfg.Engine.BaseURL,
			APIKey:  cfg.Engine.APIKey,
			Timeout: cfg.Engine.Timeout,
		}, log)
	case "static":
		// Pass-through verdict for local development.
		return &engine.StaticEngine{Verdict: engine.Verdict{
			FreqType: "Unknown",
			Mode:     "no-op",
		}}, nil
	default:
		return nil, fmt.Errorf("unsupported engine type: %s", cfg.Engine.Type)
	}
}

// buildStorages assembles the local stores and the optional remote
// writer. The returned cleanup closes everything that was opened.
func buildStorages(ctx context.Context, cfg *config.Config, log *slog.Logger) (locals []evidence.Storage, remote evidence.Storage, statsFrom handlers.StatsSource, cleanup func(), err error) {
	var closers []func() error
	cleanup = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}
	fail := func(err error) ([]evidence.Storage, evidence.Storage, handlers.StatsSource, func(), error) {
		cleanup()
		return nil, nil, nil, func() {}, err
	}

	mem := storage.NewMemoryStorage(0)
	locals = append(locals, mem)
	statsFrom = mem

	if cfg.Evidence.LogDir != "" {
		jsonl, err := storage.NewJSONLStorage(cfg.Evidence.LogDir)
		if err != nil {
			return fail(fmt.Errorf("jsonl store: %w", err))
		}
		closers = append(closers, jsonl.Close)
		locals = append(locals, jsonl)
		// The JSONL log keeps no counters, so it never serves stats.
		log.Debug("jsonl evidence store enabled", "dir", cfg.Evidence.LogDir)

		if cfg.Evidence.Mirror.Enabled {
			mirror, err := storage.NewGitMirror(jsonl.Dir(), storage.GitMirrorConfig{
				Repository:   cfg.Evidence.Mirror.Repository,
				Token:        cfg.Evidence.Mirror.Token,
				Branch:       cfg.Evidence.Mirror.Branch,
				PushInterval: cfg.Evidence.Mirror.PushInterval,
			})
			if err != nil {
				return fail(fmt.Errorf("git mirror: %w", err))
			}
			if err := mirror.Start(ctx); err != nil {
				return fail(fmt.Errorf("git mirror start: %w", err))
			}
			closers = append(closers, mirror.Close)
			jsonl.SetWriteHook(mirror.Notify)
			log.Info("git mirror enabled", "branch", cfg.Evidence.Mirror.Branch)
		}
	}

	if cfg.Evidence.SQLitePath != "" {
		archive, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path: cfg.Evidence.SQLitePath,
		})
		if err != nil {
			return fail(fmt.Errorf("sqlite archive: %w", err))
		}
		closers = append(closers, archive.Close)
		locals = append(locals, archive)
		statsFrom = archive
		log.Debug("sqlite evidence archive enabled", "path", cfg.Evidence.SQLitePath)
	}

	if cfg.Evidence.GitHub.Enabled {
		gh, err := storage.NewGitHubStorage(storage.GitHubConfig{
			Repo:    cfg.Evidence.GitHub.Repo,
			Token:   cfg.Evidence.GitHub.Token,
			Branch:  cfg.Evidence.GitHub.Branch,
			Timeout: cfg.Evidence.GitHub.Timeout,
		})
		if err != nil {
			return fail(fmt.Errorf("github store: %w", err))
		}
		closers = append(closers, gh.Close)
		remote = gh
		log.Info("github evidence writer enabled", "repo", cfg.Evidence.GitHub.Repo)
	}

	return locals, remote, statsFrom, cleanup, nil
}
