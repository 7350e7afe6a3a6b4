package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pithecene-io/livedraw/art"
	"github.com/pithecene-io/livedraw/cli/config"
	"github.com/pithecene-io/livedraw/client"
	"github.com/pithecene-io/livedraw/control"
	"github.com/pithecene-io/livedraw/log"
	"github.com/pithecene-io/livedraw/metrics"
	"github.com/pithecene-io/livedraw/runtime"
	"github.com/pithecene-io/livedraw/types"
)

// DefaultControlURL is where the control service listens by default.
const DefaultControlURL = "http://localhost:4628"

// RunCommand returns the run command.
func RunCommand() *cli.Command {
	flags := artworkFlags()
	flags = append(flags,
		// Control service flags
		&cli.StringFlag{
			Name:  "control-url",
			Usage: "Control service base URL",
			Value: DefaultControlURL,
		},
		&cli.DurationFlag{
			Name:  "retry-interval",
			Usage: "Delay between control service attempts",
			Value: client.DefaultRetryInterval,
		},
		&cli.IntFlag{
			Name:  "max-attempts",
			Usage: "Attempts per control request (0 retries forever)",
		},
		&cli.DurationFlag{
			Name:  "control-timeout",
			Usage: "Per-attempt control service timeout",
			Value: client.DefaultTimeout,
		},
		&cli.DurationFlag{
			Name:  "poll-interval",
			Usage: "Wait-loop quantum for input polls and consumption checks",
			Value: runtime.DefaultPollInterval,
		},
		// Adapter flags
		&cli.StringFlag{
			Name:  "adapter",
			Usage: "Mirror plot events to an adapter: webhook or redis",
		},
		&cli.StringFlag{
			Name:  "adapter-url",
			Usage: "Adapter endpoint URL (webhook URL or redis://host:port)",
		},
		&cli.StringFlag{
			Name:  "adapter-channel",
			Usage: "Redis pub/sub channel (default: livedraw:plot_update)",
		},
		&cli.StringSliceFlag{
			Name:  "adapter-header",
			Usage: "Webhook header as key=value (repeatable)",
		},
		&cli.DurationFlag{
			Name:  "adapter-timeout",
			Usage: "Per-publish adapter timeout",
		},
		&cli.IntFlag{
			Name:  "adapter-retries",
			Usage: "Adapter retry attempts",
			Value: 3,
		},
		// Metrics
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Serve Prometheus metrics on this address (e.g. :9464)",
		},
	)

	return &cli.Command{
		Name:   "run",
		Usage:  "Run an artwork live against the control service and plotter",
		Flags:  flags,
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	gen, artName, err := buildArtwork(c, cfg)
	if err != nil {
		return err
	}

	runMeta := newRunMeta(c, artName, types.ModeLive)
	logger := log.NewLogger(runMeta)
	if w := c.App.ErrWriter; w != nil {
		logger = logger.WithOutput(w)
	}
	defer func() { _ = logger.Sync() }()
	collector := metrics.NewCollector(runMeta.Art, string(runMeta.Mode), runMeta.RunID)

	controlClient, err := client.New(client.Config{
		BaseURL: resolveString(c, "control-url", configVal(cfg, func(c *config.Config) string { return c.Control.URL })),
		Timeout: resolveDuration(c, "control-timeout", configVal(cfg, func(c *config.Config) time.Duration { return c.Control.Timeout.Duration })),
		Retry: client.RetryPolicy{
			Interval:    resolveDuration(c, "retry-interval", configVal(cfg, func(c *config.Config) time.Duration { return c.Control.RetryInterval.Duration })),
			MaxAttempts: resolveInt(c, "max-attempts", configVal(cfg, func(c *config.Config) int { return c.Control.MaxAttempts })),
		},
		Logger:    logger,
		Collector: collector,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid control config: %v", err), runtime.ExitCodeConfig)
	}
	defer func() { _ = controlClient.Close() }()

	pollerOpts := []control.PollerOption{
		control.WithPollerLogger(logger),
		control.WithPollerCollector(collector),
	}
	if v := art.Validator(gen); v != nil {
		pollerOpts = append(pollerOpts, control.WithValidator(v))
	}
	poller := control.NewPoller(controlClient, pollerOpts...)

	adapters, err := resolveAdapters(c, cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid adapter config: %v", err), runtime.ExitCodeConfig)
	}
	emitter, err := control.NewEmitter(control.EmitterConfig{
		Client:    controlClient,
		RunMeta:   runMeta,
		Adapters:  adapters,
		Logger:    logger,
		Collector: collector,
	})
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeConfig)
	}
	defer func() { _ = emitter.Close() }()

	store, err := openStore(c, cfg, logger)
	if err != nil {
		return err
	}

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Start time derives the archive day partition
	startTime := time.Now()
	arch, err := buildArchive(ctx, parseArchiveChoice(c, cfg), runMeta, startTime)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid archive config: %v", err), runtime.ExitCodeConfig)
	}

	schedCfg := runtime.Config{
		Generator:    gen,
		Inputs:       poller,
		Events:       emitter,
		Store:        store,
		PollInterval: resolveDuration(c, "poll-interval", configVal(cfg, func(c *config.Config) time.Duration { return c.PollInterval.Duration })),
		RunMeta:      runMeta,
		Logger:       logger,
		Collector:    collector,
	}
	if arch != nil {
		schedCfg.Archive = arch
	}
	sched, err := runtime.NewScheduler(schedCfg)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeConfig)
	}

	metricsAddr := resolveString(c, "metrics-addr", configVal(cfg, func(c *config.Config) string { return c.Metrics.Addr }))
	result, err := runWithMetrics(ctx, metricsAddr, sched, collector, logger)
	if err != nil {
		return err
	}
	return finishRun(ctx, c, result, collector, arch, logger)
}

// runner is the part of the scheduler runWithMetrics drives.
type runner interface {
	Run(ctx context.Context) (*runtime.RunResult, error)
}

// runWithMetrics runs the scheduler, serving /metrics alongside it when an
// address is configured. The metrics server stops when the run ends.
func runWithMetrics(ctx context.Context, addr string, sched runner, collector *metrics.Collector, logger *log.Logger) (*runtime.RunResult, error) {
	if addr == "" {
		return runScheduler(ctx, sched, logger), nil
	}

	ln, err := metrics.Listen(addr)
	if err != nil {
		return nil, cli.Exit(err.Error(), runtime.ExitCodeConfig)
	}
	logger.Info("serving metrics", map[string]any{"addr": ln.Addr().String(), "path": metrics.MetricsPath})

	serveCtx, stopServe := context.WithCancel(ctx)
	defer stopServe()

	var result *runtime.RunResult
	g, gctx := errgroup.WithContext(serveCtx)
	g.Go(func() error {
		return metrics.Serve(gctx, ln, metrics.NewRegistry(collector))
	})
	g.Go(func() error {
		defer stopServe()
		result = runScheduler(ctx, sched, logger)
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("metrics server failed", map[string]any{"error": err.Error()})
	}
	return result, nil
}

// runScheduler runs sched and logs why it stopped. The outcome in the
// result carries the exit code.
func runScheduler(ctx context.Context, sched runner, logger *log.Logger) *runtime.RunResult {
	result, err := sched.Run(ctx)
	logRunError(logger, err)
	return result
}

func logRunError(logger *log.Logger, err error) {
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		logger.Warn("run interrupted", map[string]any{"error": err.Error()})
	default:
		logger.Error("run failed", map[string]any{"error": err.Error()})
	}
}
