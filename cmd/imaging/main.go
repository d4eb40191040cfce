package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	cli "github.com/jawher/mow.cli"

	"github.com/Mavwarf/imaging/internal/config"
	"github.com/Mavwarf/imaging/internal/history"
	"github.com/Mavwarf/imaging/internal/logging"
	"github.com/Mavwarf/imaging/internal/notify"
	"github.com/Mavwarf/imaging/internal/pipeline"
	"github.com/Mavwarf/imaging/internal/report"
	"github.com/Mavwarf/imaging/internal/transform"
)

// options holds the global command line options.
type options struct {
	dir     string
	config  string
	verbose bool
	engine  string
}

func main() {
	var o options

	app := cli.App("imaging", "Generate app icons, splash screens and store previews for a Cordova project")
	app.Version("V version", "imaging "+appVersion())
	app.StringOptPtr(&o.dir, "C dir", ".", "project directory")
	app.StringOptPtr(&o.config, "c config", "", "config override file (default: imaging.json, imaging.yaml or imaging.yml in the project)")
	app.BoolOptPtr(&o.verbose, "v verbose", false, "print every generated image and debug logs")
	app.StringPtr(&o.engine, cli.StringOpt{
		Name:   "engine",
		Desc:   "image backend: imagemagick or native",
		EnvVar: "IMAGING_ENGINE",
	})

	app.Before = func() {
		logging.Setup(o.verbose)
	}

	run := func() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		code := runOnce(ctx, o, os.Stdout)
		stop()
		cli.Exit(code)
	}
	app.Action = run

	app.Command("run", "generate all assets (default)", func(cmd *cli.Cmd) {
		cmd.Action = run
	})
	app.Command("plan", "list the images that would be generated", func(cmd *cli.Cmd) {
		cmd.Action = func() { cli.Exit(planCmd(o, os.Stdout)) }
	})
	app.Command("init", "write the default config to imaging.json", func(cmd *cli.Cmd) {
		force := cmd.BoolOpt("f force", false, "overwrite an existing file")
		cmd.Action = func() { cli.Exit(initCmd(o, *force, os.Stdout)) }
	})
	app.Command("watch", "generate, then regenerate whenever a source changes", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			cli.Exit(watchCmd(ctx, o, os.Stdout))
		}
	})
	app.Command("history", "show recent runs", historyCommand(&o))
	app.Command("version", "print the version", func(cmd *cli.Cmd) {
		cmd.Action = func() { fmt.Println("imaging " + appVersion()) }
	})

	app.Run(os.Args)
}

// loadConfig resolves the effective config for o and returns it with the
// absolute project directory and the override path used ("" for none).
func loadConfig(o options) (config.Config, string, string, error) {
	dir, err := filepath.Abs(o.dir)
	if err != nil {
		return config.Config{}, "", "", err
	}
	loadDotEnv(dir)

	override := o.config
	if override != "" {
		override = resolvePath(dir, override)
		if _, err := os.Stat(override); err != nil {
			return config.Config{}, "", "", fmt.Errorf("config override: %w", err)
		}
	} else {
		override = config.FindOverride(dir)
	}

	cfg := config.Resolve(config.Default(), override)
	if o.engine != "" {
		cfg.Backend.Engine = o.engine
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, dir, override, nil
}

// resolvePath makes a --config path absolute. Relative paths are taken
// from the current directory first, then from the project directory.
func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if _, err := os.Stat(p); err == nil {
		abs, _ := filepath.Abs(p)
		return abs
	}
	return filepath.Join(dir, p)
}

// runOnce performs one full generation and returns the exit code.
func runOnce(ctx context.Context, o options, out io.Writer) int {
	cfg, dir, _, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	backend, err := transform.New(cfg.Backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	console := report.NewConsole(out, report.ColorEnabled(os.Stdout), o.verbose, dir)
	res := pipeline.Run(ctx, pipeline.Pipeline{
		Config:   cfg,
		Dir:      dir,
		Backend:  backend,
		Observer: console,
	})
	console.Summary(res)

	recordHistory(cfg, res, dir)
	for _, err := range notify.Send(ctx, cfg.Notify, res, dir) {
		fmt.Fprintf(os.Stderr, "notify: %v\n", err)
	}
	return res.ExitCode()
}

// recordHistory stores the run. Failures are reported but never change
// the exit code.
func recordHistory(cfg config.Config, res pipeline.Result, dir string) {
	if cfg.History.Disabled {
		return
	}
	s, err := history.Open(historyPath(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		return
	}
	defer s.Close()
	if _, err := s.Record(history.FromResult(res, dir, cfg.Backend.Engine)); err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
	}
}

func historyPath(cfg config.Config) string {
	if cfg.History.Path != "" {
		return os.ExpandEnv(cfg.History.Path)
	}
	return history.DefaultPath()
}

func planCmd(o options, out io.Writer) int {
	cfg, dir, _, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	prep, res := pipeline.Prepare(pipeline.Pipeline{Config: cfg, Dir: dir})
	if res.State == pipeline.StateFailed {
		fmt.Fprintf(os.Stderr, "Error: %v\n", res.Err)
		return 1
	}
	fmt.Fprintf(out, "project %s, platforms %v, engine %s\n", prep.Input.Project.Name, res.Platforms, cfg.Backend.Engine)
	report.PrintPlan(out, prep, dir)
	return 0
}
