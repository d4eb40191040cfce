package transform

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Category groups jobs into generation stages.
type Category int

const (
	CategoryIcons Category = iota
	CategorySplashscreens
	CategoryPreviews
)

func (c Category) String() string {
	switch c {
	case CategoryIcons:
		return "icons"
	case CategorySplashscreens:
		return "splashscreens"
	case CategoryPreviews:
		return "previews"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Fit selects how the source is mapped onto the target dimensions.
type Fit int

const (
	// FitResize scales to exactly Width x Height, ignoring aspect ratio.
	FitResize Fit = iota
	// FitCrop scales along the dominant axis, then crops or pads around
	// the center to Width x Height.
	FitCrop
)

func (f Fit) String() string {
	if f == FitCrop {
		return "crop"
	}
	return "resize"
}

// Job is a single image transformation.
type Job struct {
	Category    Category
	Platform    string // platform key
	Source      string
	Destination string
	Width       int
	Height      int
	Fit         Fit
	Background  string // color for padding and alpha removal, "" = backend default
}

// Intermediate returns the size a crop job scales to before cropping.
// A zero dimension is derived from the source aspect ratio.
func (j Job) Intermediate() (w, h int) {
	if j.Width > j.Height {
		return j.Width, 0
	}
	return 0, j.Height
}

// IsJPEG reports whether the destination is a JPEG file.
func (j Job) IsJPEG() bool {
	switch strings.ToLower(filepath.Ext(j.Destination)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}

func (j Job) String() string {
	return fmt.Sprintf("%s %s %dx%d -> %s", j.Platform, j.Fit, j.Width, j.Height, j.Destination)
}
