package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/livedraw/iox"
	"github.com/pithecene-io/livedraw/journal"
	"github.com/pithecene-io/livedraw/log"
	"github.com/pithecene-io/livedraw/metrics"
	"github.com/pithecene-io/livedraw/runtime"
	"github.com/pithecene-io/livedraw/types"
)

// SimulateCommand returns the simulate command.
func SimulateCommand() *cli.Command {
	flags := artworkFlags()
	flags = append(flags, &cli.StringFlag{
		Name:  "record",
		Usage: "Record every draw call to this journal file",
	})

	return &cli.Command{
		Name:   "simulate",
		Usage:  "Render a whole artwork offline into all.svg with simulated inputs",
		Flags:  flags,
		Action: simulateAction,
	}
}

func simulateAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	gen, artName, err := buildArtwork(c, cfg)
	if err != nil {
		return err
	}

	runMeta := newRunMeta(c, artName, types.ModeSimulation)
	logger := log.NewLogger(runMeta)
	if w := c.App.ErrWriter; w != nil {
		logger = logger.WithOutput(w)
	}
	defer func() { _ = logger.Sync() }()
	collector := metrics.NewCollector(runMeta.Art, string(runMeta.Mode), runMeta.RunID)

	store, err := openStore(c, cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	arch, err := buildArchive(ctx, parseArchiveChoice(c, cfg), runMeta, time.Now())
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid archive config: %v", err), runtime.ExitCodeConfig)
	}

	simCfg := runtime.SimulateConfig{
		Generator: gen,
		Store:     store,
		RunMeta:   runMeta,
		Logger:    logger,
		Collector: collector,
	}
	if arch != nil {
		simCfg.Archive = arch
	}

	closeJournal := func() error { return nil }
	if path := c.String("record"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("cannot create journal: %v", err), runtime.ExitCodeConfig)
		}
		defer iox.DiscardClose(f)
		bw := bufio.NewWriter(f)
		simCfg.Journal = journal.NewWriter(bw)
		closeJournal = func() error {
			if err := bw.Flush(); err != nil {
				return fmt.Errorf("failed to write journal %s: %w", path, err)
			}
			return f.Sync()
		}
	}

	result, err := runtime.Simulate(ctx, simCfg)
	if result == nil {
		return cli.Exit(err.Error(), runtime.ExitCodeConfig)
	}
	logRunError(logger, err)
	if err := closeJournal(); err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeFailure)
	}
	return finishRun(ctx, c, result, collector, arch, logger)
}
