package verify

import "fmt"

// Kind classifies a fatal configuration problem.
type Kind int

const (
	KindNoPlatforms Kind = iota + 1
	KindMissingSource
	KindManifestMissing
	KindManifestInvalid
	KindDuplicatePreview
)

func (k Kind) String() string {
	switch k {
	case KindNoPlatforms:
		return "no platforms"
	case KindMissingSource:
		return "missing source"
	case KindManifestMissing:
		return "manifest missing"
	case KindManifestInvalid:
		return "manifest invalid"
	case KindDuplicatePreview:
		return "duplicate preview"
	}
	return "unknown"
}

// ConfigError is a fatal verification failure. No images are generated
// once one is returned.
type ConfigError struct {
	Kind Kind
	Path string // offending file or directory, may be empty
	Msg  string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, e.Path)
}

// Is matches any ConfigError of the same Kind, so the sentinels below work
// with errors.Is.
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNoPlatforms      = &ConfigError{Kind: KindNoPlatforms, Msg: "no supported platforms found"}
	ErrMissingSource    = &ConfigError{Kind: KindMissingSource, Msg: "source file missing"}
	ErrManifestMissing  = &ConfigError{Kind: KindManifestMissing, Msg: "project manifest missing"}
	ErrManifestInvalid  = &ConfigError{Kind: KindManifestInvalid, Msg: "project manifest invalid"}
	ErrDuplicatePreview = &ConfigError{Kind: KindDuplicatePreview, Msg: "preview sources share a base name"}
)
