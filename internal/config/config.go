package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Backend engines understood by transform.New.
const (
	EngineImageMagick = "imagemagick"
	EngineNative      = "native"
)

// DefaultQuality is the output quality used for every generated asset.
const DefaultQuality = 100

// Source is a source image reference. In JSON it is either a plain path
// string or an object {"path": ..., "background": ...}; both forms decode
// into the same value so callers never shape-check.
type Source struct {
	Path       string `json:"path"`
	Background string `json:"background,omitempty"`
}

// UnmarshalJSON accepts the plain-path string form and the object form.
func (s *Source) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = Source{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var p string
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*s = Source{Path: p}
		return nil
	}
	type alias Source
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("source must be a path or {path, background}: %w", err)
	}
	*s = Source(a)
	return nil
}

// MarshalJSON writes the plain-path form when no background is set.
func (s Source) MarshalJSON() ([]byte, error) {
	if s.Background == "" {
		return json.Marshal(s.Path)
	}
	type alias Source
	return json.Marshal(alias(s))
}

// Sources lists the source images assets are generated from.
type Sources struct {
	AppIcon      Source   `json:"appicon"`
	Splashscreen Source   `json:"splashscreen"`
	Previews     []string `json:"previews,omitempty"` // paths or glob patterns
}

// Icon is a square icon output.
type Icon struct {
	Size   int    `json:"size"`
	Output string `json:"output"`
}

// Splash is a splashscreen output.
type Splash struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Output string `json:"output"`
}

// Preview is a store preview output. Output holds a $file$ placeholder.
type Preview struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Type   string `json:"type"`
	Output string `json:"output"`
}

// PlatformSpec describes one target platform.
type PlatformSpec struct {
	Key                   string    `json:"-"` // config key, e.g. "ios"
	Name                  string    `json:"name"`
	Path                  string    `json:"path"`
	DestinationPath       string    `json:"destinationPath"`
	GenerateIcons         bool      `json:"generateIcons"`
	GenerateSplashscreens bool      `json:"generateSplashscreens"`
	GeneratePreviews      bool      `json:"generatePreviews"`
	Icons                 []Icon    `json:"icons"`
	AppstoreIcon          *Icon     `json:"appstoreIcon,omitempty"`
	Splashscreens         []Splash  `json:"splashscreens"`
	Previews              []Preview `json:"previews,omitempty"`
}

// Backend holds image backend settings.
type Backend struct {
	Engine      string `json:"engine"`            // "imagemagick" | "native"
	Command     string `json:"command,omitempty"` // imagemagick binary, "" = auto
	Quality     int    `json:"quality"`
	Gravity     string `json:"gravity"`
	Concurrency int    `json:"concurrency,omitempty"` // 0 = all jobs at once
}

// MQTT holds broker settings for run-summary publishing.
type MQTT struct {
	Broker   string `json:"broker"`
	Topic    string `json:"topic"`
	ClientID string `json:"client_id,omitempty"`
	QoS      byte   `json:"qos,omitempty"`
	Retain   bool   `json:"retain,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Webhook holds an HTTP endpoint that receives the run summary.
type Webhook struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Chat holds an incoming-webhook URL for Slack or Discord.
type Chat struct {
	WebhookURL string `json:"webhook_url"`
}

// Telegram holds Bot API credentials. Both fields accept $VAR references.
type Telegram struct {
	Token  string `json:"token"`
	ChatID string `json:"chat_id"`
}

// Notify configures completion notifications. Every channel is optional.
type Notify struct {
	MQTT     *MQTT     `json:"mqtt,omitempty"`
	Webhook  *Webhook  `json:"webhook,omitempty"`
	Slack    *Chat     `json:"slack,omitempty"`
	Discord  *Chat     `json:"discord,omitempty"`
	Telegram *Telegram `json:"telegram,omitempty"`
	// OnlyFailures suppresses notifications for clean runs.
	OnlyFailures bool `json:"only_failures,omitempty"`
}

// History configures the run history database.
type History struct {
	Disabled bool   `json:"disabled,omitempty"`
	Path     string `json:"path,omitempty"` // "" = <data dir>/history.db
}

// Config is the effective configuration: built-in defaults with the
// project override merged on top. Platform specs live at the top level
// keyed by platform name, as in the override file.
type Config struct {
	ConfigXML string   `json:"configXml"`
	AssetPath string   `json:"assetPath"`
	Sources   Sources  `json:"sources"`
	Platforms []string `json:"platforms"`
	Backend   Backend  `json:"backend"`
	Notify    Notify   `json:"notify"`
	History   History  `json:"history"`

	Specs map[string]PlatformSpec `json:"-"`
}

// reservedKeys are the top-level keys that are not platform specs.
var reservedKeys = map[string]bool{
	"configXml": true, "assetPath": true, "sources": true, "platforms": true,
	"backend": true, "notify": true, "history": true, "$schema": true,
}

// UnmarshalJSON decodes the known keys and treats every other object-valued
// top-level key as a platform spec.
func (c *Config) UnmarshalJSON(data []byte) error {
	type alias Config
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Specs = map[string]PlatformSpec{}
	for key, msg := range raw {
		if reservedKeys[key] {
			continue
		}
		trimmed := bytes.TrimSpace(msg)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var spec PlatformSpec
		if err := json.Unmarshal(msg, &spec); err != nil {
			return fmt.Errorf("platform %q: %w", key, err)
		}
		spec.Key = key
		a.Specs[key] = spec
	}
	*c = Config(a)
	return nil
}

// MarshalJSON writes platform specs back as top-level keys.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	base, err := json.Marshal(alias(c))
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for key, spec := range c.Specs {
		b, err := json.Marshal(spec)
		if err != nil {
			return nil, err
		}
		m[key] = b
	}
	return json.Marshal(m)
}

// Spec returns the platform spec for key.
func (c Config) Spec(key string) (PlatformSpec, bool) {
	s, ok := c.Specs[key]
	return s, ok
}

// Validate reports structural problems that would make every run fail.
func (c Config) Validate() error {
	switch c.Backend.Engine {
	case "", EngineImageMagick, EngineNative:
	default:
		return fmt.Errorf("backend.engine must be %q or %q, got %q",
			EngineImageMagick, EngineNative, c.Backend.Engine)
	}
	if c.Backend.Concurrency < 0 {
		return fmt.Errorf("backend.concurrency must not be negative")
	}
	if c.ConfigXML == "" {
		return fmt.Errorf("configXml is required")
	}
	// imagemagick knows far more color names than the native backend.
	for _, src := range []Source{c.Sources.AppIcon, c.Sources.Splashscreen} {
		if c.Backend.Engine == EngineNative && src.Background != "" && !ValidColor(src.Background) {
			return fmt.Errorf("source %s: invalid background color %q", src.Path, src.Background)
		}
	}
	for _, key := range c.Platforms {
		spec, ok := c.Specs[key]
		if !ok {
			continue
		}
		for _, p := range spec.Previews {
			if !strings.Contains(p.Output, "$file$") {
				return fmt.Errorf("%s preview %q: output must contain $file$", key, p.Output)
			}
		}
	}
	return nil
}

// SpecKeys returns all configured platform keys, sorted.
func (c Config) SpecKeys() []string {
	keys := make([]string, 0, len(c.Specs))
	for k := range c.Specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
