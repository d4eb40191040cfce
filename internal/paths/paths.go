package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	AppDirName      = "imaging"
	HistoryFileName = "history.db"
	ManifestName    = "config.xml"
	DirPerm         = 0755
	FilePerm        = 0644
)

// OverrideNames lists the project-local config override files, in lookup
// order.
var OverrideNames = []string{"imaging.json", "imaging.yaml", "imaging.yml"}

// AtomicWrite writes data to path via a temporary file + rename to avoid
// partial writes. The parent directory is created if needed.
func AtomicWrite(path string, data []byte) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FilePerm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// EnsureDir creates dir and any missing parents. A directory that already
// exists, including one created concurrently by a sibling job, is success.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		if fi, statErr := os.Stat(dir); statErr == nil && fi.IsDir() {
			return nil
		}
		return err
	}
	return nil
}

// Resolve joins p onto dir unless p is already absolute.
func Resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Exists reports whether p exists on disk (file or directory).
func Exists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}

// IsFile reports whether p exists and is a regular file.
func IsFile(p string) bool {
	if p == "" {
		return false
	}
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

// Stem returns the base name of p without its extension.
func Stem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DataDir returns the platform-specific data directory for imaging:
//   - Windows: %APPDATA%\imaging
//   - Unix:    ~/.config/imaging
//
// Falls back to os.TempDir()/imaging if neither is available.
func DataDir() string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, AppDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppDirName)
	}
	return filepath.Join(home, ".config", AppDirName)
}
