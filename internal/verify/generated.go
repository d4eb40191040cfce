package verify

import (
	"path/filepath"
	"strings"

	"github.com/Mavwarf/imaging/internal/config"
	"github.com/Mavwarf/imaging/internal/paths"
)

// Generated lists outputs a run writes next to its inputs under the asset
// directory: the app-store icons and the previews tree. Such paths are
// never treated as preview sources or as watch triggers.
type Generated struct {
	Files map[string]bool
	Dirs  []string
}

// GeneratedOutputs computes the asset-directory outputs of the given
// platforms for a project rooted at dir.
func GeneratedOutputs(platforms []config.PlatformSpec, assetPath, dir string) Generated {
	assets := dir
	if assetPath != "" {
		assets = paths.Resolve(dir, assetPath)
	}
	g := Generated{Files: map[string]bool{}}
	for _, p := range platforms {
		if p.GenerateIcons && p.AppstoreIcon != nil {
			g.Files[filepath.Clean(filepath.Join(assets, p.AppstoreIcon.Output))] = true
		}
		if p.GeneratePreviews && len(p.Previews) > 0 && len(g.Dirs) == 0 {
			g.Dirs = append(g.Dirs, filepath.Join(assets, "previews"))
		}
	}
	return g
}

// Contains reports whether p is a generated file or lies inside a
// generated directory.
func (g Generated) Contains(p string) bool {
	p = filepath.Clean(p)
	if g.Files[p] {
		return true
	}
	for _, d := range g.Dirs {
		if p == d || strings.HasPrefix(p, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
