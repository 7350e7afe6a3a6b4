package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/livedraw/cli/config"
	"github.com/pithecene-io/livedraw/runtime"
)

// loadConfig reads --config when given. A nil config means no file.
// Load and validation failures are configuration errors (exit 2).
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return nil, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, cli.Exit(err.Error(), runtime.ExitCodeConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Exit(fmt.Sprintf("invalid config %s: %v", path, err), runtime.ExitCodeConfig)
	}
	return cfg, nil
}

// configVal reads a value from cfg, returning the zero value for a nil config.
func configVal[T any](cfg *config.Config, get func(*config.Config) T) T {
	if cfg == nil {
		var zero T
		return zero
	}
	return get(cfg)
}

// resolveString returns the CLI value when set, else the config value when
// non-empty, else the flag default.
func resolveString(c *cli.Context, name, cfgVal string) string {
	if c.IsSet(name) || cfgVal == "" {
		return c.String(name)
	}
	return cfgVal
}

// resolveInt follows the same precedence as resolveString.
func resolveInt(c *cli.Context, name string, cfgVal int) int {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Int(name)
	}
	return cfgVal
}

// resolveBool returns the CLI value when set, else the config value.
func resolveBool(c *cli.Context, name string, cfgVal bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	return cfgVal || c.Bool(name)
}

// resolveDuration follows the same precedence as resolveString.
func resolveDuration(c *cli.Context, name string, cfgVal time.Duration) time.Duration {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Duration(name)
	}
	return cfgVal
}

// resolveFloat prefers the CLI, then a non-nil config value.
func resolveFloat(c *cli.Context, name string, cfgVal *float64) float64 {
	if c.IsSet(name) || cfgVal == nil {
		return c.Float64(name)
	}
	return *cfgVal
}

// resolveInt64 prefers the CLI, then a non-nil config value.
func resolveInt64(c *cli.Context, name string, cfgVal *int64) int64 {
	if c.IsSet(name) || cfgVal == nil {
		return c.Int64(name)
	}
	return *cfgVal
}
