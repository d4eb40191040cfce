package verify

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Mavwarf/imaging/internal/config"
	"github.com/Mavwarf/imaging/internal/paths"
)

// SourceSet holds the verified sources with paths resolved against the
// project directory. Previews has glob patterns expanded.
type SourceSet struct {
	AppIcon      config.Source
	Splashscreen config.Source
	Previews     []string
}

// Needs reports which source categories the active platforms require.
type Needs struct {
	Icon, Splash, Preview bool
}

// Required computes which sources the active platforms need. Previews are
// only needed when at least one preview source is configured.
func Required(active []config.PlatformSpec, sources config.Sources) Needs {
	var n Needs
	for _, p := range active {
		n.Icon = n.Icon || p.GenerateIcons
		n.Splash = n.Splash || p.GenerateSplashscreens
		n.Preview = n.Preview || p.GeneratePreviews
	}
	n.Preview = n.Preview && len(sources.Previews) > 0
	return n
}

// Sources checks that every source the active platforms need exists as a
// regular file. The first missing source is returned as a fatal error.
func Sources(active []config.PlatformSpec, sources config.Sources, dir string) (SourceSet, error) {
	return SourcesExcluding(active, sources, dir, Generated{})
}

// SourcesExcluding is Sources with glob matches inside skip dropped, so a
// pattern over the asset directory never picks up a previous run's output.
func SourcesExcluding(active []config.PlatformSpec, sources config.Sources, dir string, skip Generated) (SourceSet, error) {
	need := Required(active, sources)
	set := SourceSet{
		AppIcon:      resolveSource(dir, sources.AppIcon),
		Splashscreen: resolveSource(dir, sources.Splashscreen),
	}

	if need.Icon {
		if err := checkFile("app icon", sources.AppIcon.Path, set.AppIcon.Path); err != nil {
			return set, err
		}
	}
	if need.Splash {
		if err := checkFile("splashscreen", sources.Splashscreen.Path, set.Splashscreen.Path); err != nil {
			return set, err
		}
	}
	if need.Preview {
		files, err := expandPreviews(dir, sources.Previews, skip)
		if err != nil {
			return set, err
		}
		set.Previews = files
	}
	return set, nil
}

func resolveSource(dir string, s config.Source) config.Source {
	return config.Source{Path: paths.Resolve(dir, s.Path), Background: s.Background}
}

func checkFile(what, configured, resolved string) error {
	if configured == "" {
		return &ConfigError{Kind: KindMissingSource, Msg: what + " source not configured"}
	}
	if !paths.IsFile(resolved) {
		return &ConfigError{Kind: KindMissingSource, Path: resolved, Msg: what + " source file missing"}
	}
	return nil
}

// expandPreviews resolves each entry. Plain paths must be files; glob
// patterns must match at least one file outside skip. Results are de-duplicated and
// keep entry order, with each pattern's matches sorted. Two files whose
// base names differ only in directory, extension or case would be written
// to the same output, so that is an error.
func expandPreviews(dir string, entries []string, skip Generated) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, entry := range entries {
		if entry == "" {
			return nil, &ConfigError{Kind: KindMissingSource, Msg: "empty preview source entry"}
		}
		p := paths.Resolve(dir, entry)
		if !isGlob(entry) {
			if err := checkFile("preview", entry, p); err != nil {
				return nil, err
			}
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
			continue
		}
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, &ConfigError{Kind: KindMissingSource, Path: entry, Msg: fmt.Sprintf("bad preview pattern (%v)", err)}
		}
		sort.Strings(matches)
		n := 0
		for _, m := range matches {
			if !paths.IsFile(m) || skip.Contains(m) {
				continue
			}
			n++
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
		if n == 0 {
			return nil, &ConfigError{Kind: KindMissingSource, Path: p, Msg: "preview pattern matched no files"}
		}
	}
	if err := checkStems(out); err != nil {
		return nil, err
	}
	return out, nil
}

func checkStems(files []string) error {
	first := map[string]string{}
	for _, f := range files {
		stem := strings.ToLower(paths.Stem(f))
		if prev, ok := first[stem]; ok {
			return &ConfigError{
				Kind: KindDuplicatePreview,
				Path: f,
				Msg:  fmt.Sprintf("preview source has the same base name as %s", prev),
			}
		}
		first[stem] = f
	}
	return nil
}

func isGlob(s string) bool {
	return strings.ContainsAny(s, "*?[")
}
