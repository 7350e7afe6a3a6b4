package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/livedraw/cli/config"
	"github.com/pithecene-io/livedraw/runtime"
)

// newTestCLIContext builds a minimal *cli.Context with the given flags set.
// flagValues maps flag names to their string values. All listed flags are
// registered and marked as explicitly set (c.IsSet returns true).
// defaultFlags maps flag names to default values (not explicitly set).
func newTestCLIContext(t *testing.T, flagValues map[string]string, defaultFlags map[string]string) *cli.Context {
	t.Helper()
	app := cli.NewApp()

	allFlags := make(map[string]string)
	for k, v := range defaultFlags {
		allFlags[k] = v
	}
	for k, v := range flagValues {
		allFlags[k] = v
	}

	var cliFlags []cli.Flag
	for name, val := range allFlags {
		cliFlags = append(cliFlags, &cli.StringFlag{Name: name, Value: val})
	}
	app.Flags = cliFlags

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	for name, val := range allFlags {
		fs.String(name, val, "")
	}

	// Only set the flagValues (not defaults) so c.IsSet works
	for name, val := range flagValues {
		if err := fs.Set(name, val); err != nil {
			t.Fatalf("failed to set flag %s: %v", name, err)
		}
	}

	return cli.NewContext(app, fs, nil)
}

func TestResolveString_CLIWins(t *testing.T) {
	c := newTestCLIContext(t, map[string]string{"art": "lines"}, nil)
	got := resolveString(c, "art", "replay")
	if got != "lines" {
		t.Errorf("expected CLI to win, got %q", got)
	}
}

func TestResolveString_ConfigFallback(t *testing.T) {
	c := newTestCLIContext(t, nil, map[string]string{"art": ""})
	got := resolveString(c, "art", "replay")
	if got != "replay" {
		t.Errorf("expected config fallback, got %q", got)
	}
}

func TestResolveString_UrfaveDefault(t *testing.T) {
	c := newTestCLIContext(t, nil, map[string]string{"control-url": DefaultControlURL})
	got := resolveString(c, "control-url", "")
	if got != DefaultControlURL {
		t.Errorf("expected urfave default, got %q", got)
	}
}

func TestConfigVal_NilConfig(t *testing.T) {
	got := configVal(nil, func(c *config.Config) string { return c.Art })
	if got != "" {
		t.Errorf("expected empty for nil config, got %q", got)
	}
}

func TestConfigVal_NonNil(t *testing.T) {
	cfg := &config.Config{Art: "lines"}
	got := configVal(cfg, func(c *config.Config) string { return c.Art })
	if got != "lines" {
		t.Errorf("expected lines, got %q", got)
	}
}

func TestResolveInt_CLIWins(t *testing.T) {
	app := cli.NewApp()
	app.Flags = []cli.Flag{&cli.IntFlag{Name: "max-attempts"}}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Int("max-attempts", 0, "")
	_ = fs.Set("max-attempts", "3")
	c := cli.NewContext(app, fs, nil)

	if got := resolveInt(c, "max-attempts", 10); got != 3 {
		t.Errorf("expected CLI to win with 3, got %d", got)
	}
}

func TestResolveInt_ConfigFallback(t *testing.T) {
	app := cli.NewApp()
	app.Flags = []cli.Flag{&cli.IntFlag{Name: "max-attempts"}}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Int("max-attempts", 0, "")
	c := cli.NewContext(app, fs, nil)

	if got := resolveInt(c, "max-attempts", 10); got != 10 {
		t.Errorf("expected config fallback 10, got %d", got)
	}
}

func TestResolveBool(t *testing.T) {
	app := cli.NewApp()
	app.Flags = []cli.Flag{&cli.BoolFlag{Name: "archive-s3-path-style"}}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Bool("archive-s3-path-style", false, "")
	c := cli.NewContext(app, fs, nil)
	if !resolveBool(c, "archive-s3-path-style", true) {
		t.Error("expected config true when flag unset")
	}

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Bool("archive-s3-path-style", false, "")
	_ = fs.Set("archive-s3-path-style", "false")
	c = cli.NewContext(app, fs, nil)
	if resolveBool(c, "archive-s3-path-style", true) {
		t.Error("expected explicit CLI false to win over config")
	}
}

func TestResolveDuration(t *testing.T) {
	app := cli.NewApp()
	app.Flags = []cli.Flag{&cli.DurationFlag{Name: "poll-interval"}}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Duration("poll-interval", runtime.DefaultPollInterval, "")
	_ = fs.Set("poll-interval", "2s")
	c := cli.NewContext(app, fs, nil)
	if got := resolveDuration(c, "poll-interval", time.Second); got != 2*time.Second {
		t.Errorf("expected CLI 2s to win, got %v", got)
	}

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Duration("poll-interval", runtime.DefaultPollInterval, "")
	c = cli.NewContext(app, fs, nil)
	if got := resolveDuration(c, "poll-interval", time.Second); got != time.Second {
		t.Errorf("expected config 1s, got %v", got)
	}
	if got := resolveDuration(c, "poll-interval", 0); got != runtime.DefaultPollInterval {
		t.Errorf("expected default %v, got %v", runtime.DefaultPollInterval, got)
	}
}

func TestResolveFloatAndInt64(t *testing.T) {
	app := cli.NewApp()
	app.Flags = []cli.Flag{&cli.Float64Flag{Name: "width"}, &cli.Int64Flag{Name: "seed"}}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Float64("width", 0, "")
	fs.Int64("seed", 0, "")
	_ = fs.Set("width", "420")
	c := cli.NewContext(app, fs, nil)

	cfgWidth := 297.0
	cfgSeed := int64(42)
	if got := resolveFloat(c, "width", &cfgWidth); got != 420 {
		t.Errorf("width = %v, want CLI 420", got)
	}
	if got := resolveInt64(c, "seed", &cfgSeed); got != 42 {
		t.Errorf("seed = %d, want config 42", got)
	}
	if got := resolveInt64(c, "seed", nil); got != 0 {
		t.Errorf("seed = %d, want default 0", got)
	}
}

func TestLoadConfig(t *testing.T) {
	app := cli.NewApp()
	app.Flags = []cli.Flag{&cli.StringFlag{Name: "config"}}

	t.Run("no config", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.String("config", "", "")
		cfg, err := loadConfig(cli.NewContext(app, fs, nil))
		if err != nil || cfg != nil {
			t.Fatalf("loadConfig() = %v, %v; want nil, nil", cfg, err)
		}
	})

	t.Run("missing file is a config error", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.String("config", "", "")
		_ = fs.Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := loadConfig(cli.NewContext(app, fs, nil))
		if got := exitCode(err); got != runtime.ExitCodeConfig {
			t.Errorf("exit code = %d, want %d (err %v)", got, runtime.ExitCodeConfig, err)
		}
	})

	t.Run("invalid values are a config error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "livedraw.yaml")
		if err := os.WriteFile(path, []byte("archive:\n  backend: gcs\n  path: x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.String("config", "", "")
		_ = fs.Set("config", path)
		_, err := loadConfig(cli.NewContext(app, fs, nil))
		if got := exitCode(err); got != runtime.ExitCodeConfig {
			t.Errorf("exit code = %d, want %d (err %v)", got, runtime.ExitCodeConfig, err)
		}
	})
}
