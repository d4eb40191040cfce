package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Mavwarf/imaging/internal/config"
	"github.com/Mavwarf/imaging/internal/paths"
)

// initCmd writes the built-in defaults as imaging.json in the project
// directory (or to --config), so they can be edited in place.
func initCmd(o options, force bool, out io.Writer) int {
	dir, err := filepath.Abs(o.dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	path := filepath.Join(dir, paths.OverrideNames[0])
	if o.config != "" {
		path = resolvePath(dir, o.config)
	}

	if paths.Exists(path) && !force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
		return 1
	}
	if err := writeConfig(path, config.Default()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Wrote default config to %s\n", path)
	fmt.Fprintln(out, "Edit it to change sources, platforms and output sizes.")
	return 0
}

func writeConfig(path string, cfg config.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return paths.AtomicWrite(path, append(data, '\n'))
}
