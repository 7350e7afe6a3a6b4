package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/justapithecus/lode/lode"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/livedraw/archive"
	"github.com/pithecene-io/livedraw/art"
	"github.com/pithecene-io/livedraw/art/lines"
	"github.com/pithecene-io/livedraw/art/replay"
	"github.com/pithecene-io/livedraw/cli/config"
	"github.com/pithecene-io/livedraw/handshake"
	"github.com/pithecene-io/livedraw/log"
	"github.com/pithecene-io/livedraw/metrics"
	"github.com/pithecene-io/livedraw/runtime"
	"github.com/pithecene-io/livedraw/types"
)

// archiveTimeout bounds the report writes that follow a run.
const archiveTimeout = 30 * time.Second

// newArtRegistry returns the registry of built-in artworks.
func newArtRegistry() (*art.Registry, error) {
	reg := art.NewRegistry()
	builtins := []struct {
		name string
		ctor art.Constructor
	}{
		{lines.Name, lines.Constructor},
		{replay.Name, replay.Constructor},
	}
	for _, b := range builtins {
		if err := reg.Register(b.name, b.ctor); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// buildArtwork constructs the artwork named by --art or the config file.
func buildArtwork(c *cli.Context, cfg *config.Config) (art.Generator, string, error) {
	name := resolveString(c, "art", configVal(cfg, func(c *config.Config) string { return c.Art }))
	if name == "" {
		return nil, "", cli.Exit("--art is required (set via flag or config file art:)", runtime.ExitCodeConfig)
	}

	opts := art.Options{
		Width:   resolveFloat(c, "width", configVal(cfg, func(c *config.Config) *float64 { return c.Artwork.Width })),
		Height:  resolveFloat(c, "height", configVal(cfg, func(c *config.Config) *float64 { return c.Artwork.Height })),
		Padding: resolveFloat(c, "padding", configVal(cfg, func(c *config.Config) *float64 { return c.Artwork.Padding })),
		Seed:    resolveInt64(c, "seed", configVal(cfg, func(c *config.Config) *int64 { return c.Artwork.Seed })),
		Source:  resolveString(c, "source", configVal(cfg, func(c *config.Config) string { return c.Artwork.Source })),
	}

	reg, err := newArtRegistry()
	if err != nil {
		return nil, "", err
	}
	gen, err := reg.New(name, opts)
	if err != nil {
		return nil, "", cli.Exit(err.Error(), runtime.ExitCodeConfig)
	}
	return gen, name, nil
}

// newRunMeta uses --run-id or a fresh UUID.
func newRunMeta(c *cli.Context, artName string, mode types.Mode) *types.RunMeta {
	runID := c.String("run-id")
	if runID == "" {
		runID = uuid.NewString()
	}
	return &types.RunMeta{RunID: runID, Art: artName, Mode: mode}
}

// defaultHandshakeDir is ~/.livedraw/files.
func defaultHandshakeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	return filepath.Join(home, ".livedraw", "files"), nil
}

// resolveHandshakeDir applies flag, config, then the default.
func resolveHandshakeDir(c *cli.Context, cfg *config.Config) (string, error) {
	dir := resolveString(c, "handshake-dir", configVal(cfg, func(c *config.Config) string { return c.Handshake.Dir }))
	if dir != "" {
		return dir, nil
	}
	return defaultHandshakeDir()
}

func openStore(c *cli.Context, cfg *config.Config, logger *log.Logger) (*handshake.Store, error) {
	dir, err := resolveHandshakeDir(c, cfg)
	if err != nil {
		return nil, cli.Exit(err.Error(), runtime.ExitCodeConfig)
	}
	store, err := handshake.New(dir, logger)
	if err != nil {
		return nil, cli.Exit(err.Error(), runtime.ExitCodeConfig)
	}
	return store, nil
}

// archiveChoice holds the resolved archive configuration.
type archiveChoice struct {
	backend   string
	path      string
	region    string
	endpoint  string
	pathStyle bool
}

func parseArchiveChoice(c *cli.Context, cfg *config.Config) archiveChoice {
	return archiveChoice{
		backend:   resolveString(c, "archive-backend", configVal(cfg, func(c *config.Config) string { return c.Archive.Backend })),
		path:      resolveString(c, "archive-path", configVal(cfg, func(c *config.Config) string { return c.Archive.Path })),
		region:    resolveString(c, "archive-region", configVal(cfg, func(c *config.Config) string { return c.Archive.Region })),
		endpoint:  resolveString(c, "archive-endpoint", configVal(cfg, func(c *config.Config) string { return c.Archive.Endpoint })),
		pathStyle: resolveBool(c, "archive-s3-path-style", configVal(cfg, func(c *config.Config) bool { return c.Archive.S3PathStyle })),
	}
}

// configured reports whether an archive backend or path was given.
func (a archiveChoice) configured() bool {
	return a.backend != "" || a.path != ""
}

// storeFactory resolves the lode store factory for an archive choice.
func (a archiveChoice) storeFactory(ctx context.Context) (lode.StoreFactory, error) {
	if a.path == "" {
		return nil, fmt.Errorf("--archive-path is required when --archive-backend is %s", a.backend)
	}

	switch a.backend {
	case "fs", "":
		return lode.NewFSFactory(a.path), nil
	case "s3":
		bucket, prefix := archive.ParseS3Path(a.path)
		return archive.NewS3StoreFactory(ctx, archive.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       a.region,
			Endpoint:     a.endpoint,
			UsePathStyle: a.pathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown --archive-backend: %s (must be fs or s3)", a.backend)
	}
}

// buildArchive returns nil when no archive is configured.
func buildArchive(ctx context.Context, choice archiveChoice, meta *types.RunMeta, started time.Time) (*archive.Archive, error) {
	if !choice.configured() {
		return nil, nil
	}
	factory, err := choice.storeFactory(ctx)
	if err != nil {
		return nil, err
	}
	return archive.NewWithFactory(factory, meta, started)
}

// finishRun writes the report, archives it and maps the outcome to the
// process exit code.
func finishRun(ctx context.Context, c *cli.Context, result *runtime.RunResult, collector *metrics.Collector, arch *archive.Archive, logger *log.Logger) error {
	report := runtime.BuildRunReport(result, collector.Snapshot())

	if path := c.String("report"); path != "" {
		if err := runtime.WriteRunReport(report, path); err != nil {
			logger.Warn("failed to write run report", map[string]any{"path": path, "error": err.Error()})
		}
	}

	if arch != nil {
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		archiveReport(actx, arch, report, collector, logger)
		cancel()
	}

	if !c.Bool("quiet") {
		printRunResult(c.App.Writer, result)
	}

	return cli.Exit("", result.Outcome.ExitCode())
}

func archiveReport(ctx context.Context, arch *archive.Archive, report *runtime.RunReport, collector *metrics.Collector, logger *log.Logger) {
	data, err := report.Encode()
	if err == nil {
		err = arch.PutReport(ctx, data)
	}
	if err == nil {
		err = arch.RecordRun(ctx, archive.RunRecord{
			Outcome:    string(report.Outcome),
			Message:    report.Message,
			ExitCode:   report.ExitCode,
			DurationMs: report.DurationMs,
			DrawCalls:  report.Increments.DrawCalls,
			Published:  report.Increments.Published,
			Skipped:    report.Increments.Skipped,
		})
	}
	if err != nil {
		collector.IncArchiveFailure()
		logger.Warn("failed to archive run report", map[string]any{"prefix": arch.Prefix(), "error": err.Error()})
		return
	}
	collector.IncArchiveWrite()
}

func printRunResult(w io.Writer, result *runtime.RunResult) {
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "\nrun_id=%s, art=%s, mode=%s, outcome=%s, duration=%s\n",
		result.RunMeta.RunID,
		result.RunMeta.Art,
		result.RunMeta.Mode,
		result.Outcome.Status,
		result.Duration.Round(time.Millisecond),
	)

	fmt.Fprintf(w, "\n=== Run Result ===\n")
	fmt.Fprintf(w, "Run ID:       %s\n", result.RunMeta.RunID)
	fmt.Fprintf(w, "Art:          %s\n", result.RunMeta.Art)
	fmt.Fprintf(w, "Outcome:      %s\n", result.Outcome.Status)
	fmt.Fprintf(w, "Message:      %s\n", result.Outcome.Message)
	fmt.Fprintf(w, "Duration:     %s\n", result.Duration)

	fmt.Fprintf(w, "\n=== Increments ===\n")
	fmt.Fprintf(w, "Draw Calls:   %d\n", result.DrawCalls)
	fmt.Fprintf(w, "Published:    %d\n", result.Published)
	fmt.Fprintf(w, "Skipped:      %d\n", result.Skipped)
	fmt.Fprintf(w, "Terminal:     %t\n", result.Terminal)
}
