// Package cmd provides CLI commands for the livedraw binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags for read-only commands.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	// Only valid for the status command.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (status only)",
	}

	// ConfigFlag points at a livedraw.yaml file. It is a global flag.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "Path to livedraw.yaml config file",
		EnvVars: []string{"LIVEDRAW_CONFIG"},
	}
)

// ReadOnlyFlags returns the shared flags for all read-only commands.
// Includes --tui so that unsupported commands can provide explicit error messages
// instead of generic "flag not defined" errors.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
		TUIFlag,
	}
}

// artworkFlags are shared by run and simulate.
func artworkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "art",
			Usage: "Registered artwork name (lines, replay)",
		},
		&cli.Float64Flag{
			Name:  "width",
			Usage: "Page width in mm (0 uses the artwork default)",
		},
		&cli.Float64Flag{
			Name:  "height",
			Usage: "Page height in mm (0 uses the artwork default)",
		},
		&cli.Float64Flag{
			Name:  "padding",
			Usage: "Page padding in mm (0 uses the artwork default)",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "Seed for simulated inputs",
		},
		&cli.StringFlag{
			Name:  "source",
			Usage: "Artwork source, e.g. the journal for replay",
		},
		&cli.StringFlag{
			Name:  "run-id",
			Usage: "Run ID (default: random UUID)",
		},
		&cli.StringFlag{
			Name:  "handshake-dir",
			Usage: "Directory shared with the plotter watcher (default: ~/.livedraw/files)",
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write a JSON run report to this path (- for stderr)",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Suppress result output",
		},
		// Archive flags
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
			Usage: "AWS region for the s3 archive (optional, uses default chain)",
		},
		&cli.StringFlag{
			Name:  "archive-endpoint",
			Usage: "Custom S3 endpoint for S3-compatible providers",
		},
		&cli.BoolFlag{
			Name:  "archive-s3-path-style",
			Usage: "Force path-style S3 addressing",
		},
	}
}
