package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Mavwarf/imaging/internal/config"
	"github.com/Mavwarf/imaging/internal/paths"
	"github.com/Mavwarf/imaging/internal/verify"
)

const debounceDelay = 500 * time.Millisecond

// watchSet describes what a watch session reacts to: the directories to
// subscribe to and a matcher for changed paths.
type watchSet struct {
	dirs      []string
	files     map[string]bool
	patterns  []string
	generated verify.Generated
}

// newWatchSet collects the inputs of a run: both sources, preview entries
// (paths or glob patterns), the override file, .env and the manifest.
// Parent directories are watched since editors often replace files.
// Outputs written under the asset directory never count as inputs.
func newWatchSet(cfg config.Config, dir, override string) watchSet {
	var specs []config.PlatformSpec
	for _, key := range cfg.Platforms {
		if s, ok := cfg.Spec(key); ok {
			specs = append(specs, s)
		}
	}
	ws := watchSet{
		files:     map[string]bool{},
		generated: verify.GeneratedOutputs(specs, cfg.AssetPath, dir),
	}
	dirs := map[string]bool{}
	add := func(p string) {
		if p == "" {
			return
		}
		p = paths.Resolve(dir, p)
		ws.files[filepath.Clean(p)] = true
		dirs[filepath.Dir(p)] = true
	}
	add(cfg.Sources.AppIcon.Path)
	add(cfg.Sources.Splashscreen.Path)
	add(cfg.ConfigXML)
	add(override)
	add(".env")
	for _, name := range paths.OverrideNames {
		add(name)
	}
	for _, p := range cfg.Sources.Previews {
		if !strings.ContainsAny(p, "*?[") {
			add(p)
			continue
		}
		abs := filepath.Clean(paths.Resolve(dir, p))
		ws.patterns = append(ws.patterns, abs)
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if paths.Exists(d) {
			ws.dirs = append(ws.dirs, d)
		}
	}
	sort.Strings(ws.dirs)
	return ws
}

// matches reports whether a change to p should trigger a rebuild.
func (ws watchSet) matches(p string) bool {
	p = filepath.Clean(p)
	if ws.generated.Contains(p) {
		return false
	}
	if ws.files[p] {
		return true
	}
	for _, pat := range ws.patterns {
		if ok, _ := filepath.Match(pat, p); ok {
			return true
		}
	}
	return false
}

// watchCmd runs once, then again after each burst of source changes,
// until ctx is canceled. The config is reloaded on every run.
func watchCmd(ctx context.Context, o options, out io.Writer) int {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer w.Close()

	trigger := make(chan struct{}, 1)
	var timer *time.Timer
	var ws watchSet

	rewatch := func() {
		cfg, dir, override, err := loadConfig(o)
		if err != nil {
			cfg, dir = config.Default(), o.dir
		}
		for _, d := range w.WatchList() {
			w.Remove(d)
		}
		ws = newWatchSet(cfg, dir, override)
		for _, d := range ws.dirs {
			if err := w.Add(d); err != nil {
				fmt.Fprintf(os.Stderr, "watch: %s: %v\n", d, err)
			}
		}
	}

	runOnce(ctx, o, out)
	rewatch()
	fmt.Fprintf(out, "watching %d directories, press Ctrl-C to stop\n", len(ws.dirs))

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return 0
		case ev, ok := <-w.Events:
			if !ok {
				return 0
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !ws.matches(ev.Name) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.Errors:
			if !ok {
				return 0
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		case <-trigger:
			fmt.Fprintf(out, "\nchange detected, regenerating\n")
			runOnce(ctx, o, out)
			rewatch()
		}
	}
}
