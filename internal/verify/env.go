package verify

import (
	"log/slog"

	"github.com/Mavwarf/imaging/internal/config"
	"github.com/Mavwarf/imaging/internal/paths"
)

// PlatformCheck is the outcome of probing one requested platform.
type PlatformCheck struct {
	Key        string
	Path       string // resolved platform directory, "" when not configured
	Found      bool
	Configured bool // false when cfg.Platforms names a key with no spec
}

// EnvResult lists the platforms that will be processed, in the order
// they appear in cfg.Platforms, plus one check per requested key.
type EnvResult struct {
	Active []config.PlatformSpec
	Checks []PlatformCheck
}

// Environment determines which requested platforms exist in the project
// at dir. Each platform directory is checked exactly once. A requested key
// without a spec is skipped. Zero active platforms is a fatal error.
func Environment(cfg config.Config, dir string) (EnvResult, error) {
	var res EnvResult
	for _, key := range cfg.Platforms {
		spec, ok := cfg.Spec(key)
		if !ok {
			slog.Debug("platform requested but not configured", "platform", key)
			res.Checks = append(res.Checks, PlatformCheck{Key: key})
			continue
		}
		p := paths.Resolve(dir, spec.Path)
		found := paths.Exists(p)
		res.Checks = append(res.Checks, PlatformCheck{Key: key, Path: p, Found: found, Configured: true})
		if found {
			res.Active = append(res.Active, spec)
		}
	}
	if len(res.Active) == 0 {
		return res, &ConfigError{Kind: KindNoPlatforms, Msg: "no supported platforms found"}
	}
	return res, nil
}
