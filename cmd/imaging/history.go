package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/jawher/mow.cli"

	"github.com/Mavwarf/imaging/internal/config"
	"github.com/Mavwarf/imaging/internal/history"
	"github.com/Mavwarf/imaging/internal/report"
)

func historyCommand(o *options) func(cmd *cli.Cmd) {
	return func(cmd *cli.Cmd) {
		cmd.Spec = "[COUNT]"
		count := cmd.IntArg("COUNT", 10, "number of runs to show")
		cmd.Action = func() { cli.Exit(historyList(*o, *count, os.Stdout)) }

		cmd.Command("clear", "delete all recorded runs", func(sub *cli.Cmd) {
			sub.Action = func() { cli.Exit(historyClear(*o, os.Stdout)) }
		})
		cmd.Command("clean", "delete runs older than DAYS", func(sub *cli.Cmd) {
			sub.Spec = "[DAYS]"
			days := sub.IntArg("DAYS", 30, "age in days")
			sub.Action = func() { cli.Exit(historyClean(*o, *days, os.Stdout)) }
		})
	}
}

// historyStore opens the store named by the effective config. A broken
// project config falls back to the default location.
func historyStore(o options) (*history.Store, error) {
	cfg, _, _, err := loadConfig(o)
	if err != nil {
		cfg = config.Default()
	}
	return history.Open(historyPath(cfg))
}

func historyList(o options, count int, out io.Writer) int {
	if count <= 0 {
		fmt.Fprintf(os.Stderr, "Error: count must be a positive integer\n")
		return 1
	}
	s, err := historyStore(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer s.Close()

	runs, err := s.Recent(count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return 0
	}
	for _, r := range runs {
		printRun(out, r)
		if r.Failed > 0 {
			failures, err := s.Failures(r.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return 1
			}
			for _, f := range failures {
				fmt.Fprintf(out, "    %s %s: %s\n", f.Platform, f.Destination, f.Error)
			}
		}
	}
	return 0
}

func printRun(out io.Writer, r history.Run) {
	name := r.Project
	if name == "" {
		name = "-"
	}
	if r.Version != "" {
		name += " v" + r.Version
	}
	fmt.Fprintf(out, "#%d  %s  %s  %s  [%s]  %s\n",
		r.ID, r.Time.Local().Format("2006-01-02 15:04:05"), name, r.Outcome,
		strings.Join(r.Platforms, ","), report.FormatDuration(r.Duration))
	switch {
	case r.Error != "":
		fmt.Fprintf(out, "    %s\n", r.Error)
	case r.Jobs > 0:
		fmt.Fprintf(out, "    %d images, %d failed (%s) in %s\n", r.Jobs, r.Failed, r.Engine, r.Dir)
	}
}

func historyClear(o options, out io.Writer) int {
	s, err := historyStore(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer s.Close()
	if err := s.Clear(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "History cleared (%s)\n", s.Path())
	return 0
}

func historyClean(o options, days int, out io.Writer) int {
	if days <= 0 {
		fmt.Fprintf(os.Stderr, "Error: days must be a positive integer\n")
		return 1
	}
	s, err := historyStore(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer s.Close()
	n, err := s.Clean(days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Removed %d runs older than %d days\n", n, days)
	return 0
}
