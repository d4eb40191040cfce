package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadDotEnv loads <dir>/.env so $VAR references in notification settings
// resolve. Variables already set in the environment win.
func loadDotEnv(dir string) {
	path := filepath.Join(dir, ".env")
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: %s: %v\n", path, err)
	}
}
