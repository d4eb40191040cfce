package project

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Mavwarf/imaging/internal/verify"
)

// Descriptor is the project identity read from a Cordova config.xml.
type Descriptor struct {
	ID      string
	Version string
	Name    string
}

type widget struct {
	XMLName xml.Name `xml:"widget"`
	ID      string   `xml:"id,attr"`
	Version string   `xml:"version,attr"`
	Name    string   `xml:"name"`
}

// Load reads the manifest at path. The display name is required since it
// becomes part of the iOS destination path.
func Load(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Descriptor{}, &verify.ConfigError{Kind: verify.KindManifestMissing, Path: path, Msg: "project manifest missing"}
		}
		return Descriptor{}, &verify.ConfigError{Kind: verify.KindManifestMissing, Path: path,
			Msg: fmt.Sprintf("reading project manifest (%v)", err)}
	}
	return Parse(data, path)
}

// Parse decodes manifest bytes. path is only used in errors.
func Parse(data []byte, path string) (Descriptor, error) {
	var w widget
	if err := xml.Unmarshal(data, &w); err != nil {
		return Descriptor{}, &verify.ConfigError{Kind: verify.KindManifestInvalid, Path: path,
			Msg: fmt.Sprintf("parsing project manifest (%v)", err)}
	}
	d := Descriptor{
		ID:      strings.TrimSpace(w.ID),
		Version: strings.TrimSpace(w.Version),
		Name:    strings.TrimSpace(w.Name),
	}
	if d.Name == "" {
		return Descriptor{}, &verify.ConfigError{Kind: verify.KindManifestInvalid, Path: path, Msg: "project manifest has no <name>"}
	}
	return d, nil
}
