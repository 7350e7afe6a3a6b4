package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/livedraw/archive"
	"github.com/pithecene-io/livedraw/cli/config"
	"github.com/pithecene-io/livedraw/cli/render"
	"github.com/pithecene-io/livedraw/cli/tui"
	"github.com/pithecene-io/livedraw/handshake"
	"github.com/pithecene-io/livedraw/runtime"
	"github.com/pithecene-io/livedraw/types"
)

// StatusCommand returns the status command.
// It reads the handshake directory or the run history and never writes.
func StatusCommand() *cli.Command {
	flags := ReadOnlyFlags()
	flags = append(flags,
		&cli.StringFlag{
			Name:  "handshake-dir",
			Usage: "Directory shared with the plotter watcher (default: ~/.livedraw/files)",
		},
		&cli.DurationFlag{
			Name:  "poll-interval",
			Usage: "Refresh interval for --tui",
			Value: runtime.DefaultPollInterval,
		},
		&cli.BoolFlag{
			Name:  "last-run",
			Usage: "Show the newest run recorded in the archive instead of the handshake directory",
		},
		&cli.StringFlag{
			Name:  "art",
			Usage: "Filter --last-run by artwork",
		},
		&cli.StringFlag{
			Name:  "run-id",
			Usage: "Filter --last-run by run ID",
		},
		&cli.StringFlag{
			Name:  "archive-backend",
			Usage: "Run archive backend: fs or s3",
		},
		&cli.StringFlag{
			Name:  "archive-path",
			Usage: "Run archive path (fs: directory, s3: bucket/prefix)",
		},
		&cli.StringFlag{
			Name:  "archive-region",
			Usage: "AWS region for the s3 archive",
		},
		&cli.StringFlag{
			Name:  "archive-endpoint",
			Usage: "Custom S3 endpoint for S3-compatible providers",
		},
		&cli.BoolFlag{
			Name:  "archive-s3-path-style",
			Usage: "Force path-style S3 addressing",
		},
	)

	return &cli.Command{
		Name:   "status",
		Usage:  "Show the handshake directory or the last archived run",
		Flags:  flags,
		Action: statusAction,
	}
}

func statusAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("last-run") {
		return lastRunAction(c, cfg, r)
	}

	dir, err := resolveHandshakeDir(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeConfig)
	}

	if c.Bool("tui") && !r.Interactive() {
		st, err := handshake.Inspect(dir)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(r.Writer(), tui.RenderStatusStatic(st))
		return err
	}

	if c.Bool("tui") {
		interval := resolveDuration(c, "poll-interval", configVal(cfg, func(c *config.Config) time.Duration { return c.PollInterval.Duration }))
		return r.RenderTUI(tui.ViewStatus, tui.StatusFeed{
			Load:     func() (*handshake.Status, error) { return handshake.Inspect(dir) },
			Interval: interval,
		})
	}

	st, err := handshake.Inspect(dir)
	if err != nil {
		return err
	}
	return r.Render(statusView{Status: *st})
}

func lastRunAction(c *cli.Context, cfg *config.Config, r *render.Renderer) error {
	choice := parseArchiveChoice(c, cfg)
	if !choice.configured() {
		return cli.Exit("--last-run requires --archive-path (or archive.path in the config file)", runtime.ExitCodeConfig)
	}

	ctx := context.Background()
	factory, err := choice.storeFactory(ctx)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeConfig)
	}
	ds, err := archive.NewHistoryDataset(factory)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}

	rec, err := archive.QueryLatestRun(ctx, ds, c.String("art"), c.String("run-id"))
	if errors.Is(err, archive.ErrNoRunsFound) {
		return cli.Exit(err.Error(), runtime.ExitCodeFailure)
	}
	if err != nil {
		return fmt.Errorf("query run history: %w", err)
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewLastRun, rec)
	}
	return r.Render(rec)
}

// statusView renders a handshake status as one row per artifact.
type statusView struct {
	handshake.Status `yaml:",inline"`
}

func (v statusView) TableHeaders() []string {
	return []string{"ARTIFACT", "PRESENT", "SIZE", "MODIFIED", "PLOTDATA"}
}

func (v statusView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Artifacts))
	for _, a := range v.Artifacts {
		row := []string{a.Name, strconv.FormatBool(a.Present), "", "", formatPlot(a.Plot)}
		if a.Present {
			row[2] = strconv.FormatInt(a.Size, 10)
		}
		if a.ModTime != nil {
			row[3] = a.ModTime.Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return rows
}

func formatPlot(p *types.PenTravel) string {
	if p == nil {
		return ""
	}
	parts := make([]string, 0, len(p.Attributes))
	for _, attr := range p.Attributes {
		parts = append(parts, attr.Name+"="+attr.Value)
	}
	return strings.Join(parts, " ")
}
