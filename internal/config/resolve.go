package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Mavwarf/imaging/internal/paths"
)

// FindOverride returns the first project-local override file found in dir
// (imaging.json, imaging.yaml, imaging.yml), or "" if there is none.
func FindOverride(dir string) string {
	for _, name := range paths.OverrideNames {
		p := filepath.Join(dir, name)
		if paths.IsFile(p) {
			return p
		}
	}
	return ""
}

// Resolve merges the override document at overridePath over defaults.
// A missing, unreadable or unparseable override is not an error: the
// defaults are returned as-is. defaults is never modified.
func Resolve(defaults Config, overridePath string) Config {
	if overridePath == "" {
		return clone(defaults)
	}
	override, err := readOverride(overridePath)
	if err != nil {
		slog.Debug("config override ignored", "path", overridePath, "err", err)
		return clone(defaults)
	}
	cfg, err := Merge(defaults, override)
	if err != nil {
		slog.Debug("config override ignored", "path", overridePath, "err", err)
		return clone(defaults)
	}
	slog.Debug("config override applied", "path", overridePath)
	return cfg
}

// Merge deep-merges override over defaults. Objects merge key by key with
// the override winning; arrays and scalars are replaced wholesale.
func Merge(defaults Config, override map[string]any) (Config, error) {
	base, err := toMap(defaults)
	if err != nil {
		return Config{}, err
	}
	merged := mergeMaps(liftSources(base), liftSources(override))

	data, err := json.Marshal(merged)
	if err != nil {
		return Config{}, fmt.Errorf("encoding merged config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding merged config: %w", err)
	}
	return cfg, nil
}

// Load reads a complete config document (no merging).
func Load(path string) (Config, error) {
	m, err := readOverride(path)
	if err != nil {
		return Config{}, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func readOverride(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var m map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if m == nil {
		return nil, fmt.Errorf("parsing config %s: empty document", path)
	}
	return normalize(m).(map[string]any), nil
}

func toMap(cfg Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// liftSources rewrites plain-path sources under m["sources"] into the
// {"path": ...} object form, so a background-only override merges into
// the default path instead of replacing it.
func liftSources(m map[string]any) map[string]any {
	src, ok := asMap(m["sources"])
	if !ok {
		return m
	}
	for _, key := range []string{"appicon", "splashscreen"} {
		if p, ok := src[key].(string); ok {
			src[key] = map[string]any{"path": p}
		}
	}
	return m
}

// mergeMaps writes src over dst recursively and returns dst. Only nested
// objects recurse; everything else, arrays included, is replaced.
func mergeMaps(dst, src map[string]any) map[string]any {
	for k, sv := range src {
		sm, srcIsMap := asMap(sv)
		dm, dstIsMap := asMap(dst[k])
		if srcIsMap && dstIsMap {
			dst[k] = mergeMaps(dm, sm)
			continue
		}
		dst[k] = sv
	}
	return dst
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// normalize rewrites the map[any]any values yaml.v3 produces for
// non-string keys so the tree can be re-encoded as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	}
	return v
}

func clone(cfg Config) Config {
	out, err := Merge(cfg, nil)
	if err != nil {
		return cfg
	}
	return out
}
