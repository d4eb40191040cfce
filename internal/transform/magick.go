package transform

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Mavwarf/imaging/internal/config"
)

// Magick drives the ImageMagick command line tool.
type Magick struct {
	Bin     string
	Quality int
	Gravity string

	// run executes the tool; replaced in tests.
	run func(ctx context.Context, bin string, args []string) ([]byte, error)
}

// NewMagick locates the ImageMagick binary: cfg.Command if set, otherwise
// "magick" (v7) falling back to "convert" (v6).
func NewMagick(cfg config.Backend) (*Magick, error) {
	candidates := []string{"magick", "convert"}
	if cfg.Command != "" {
		candidates = []string{cfg.Command}
	}
	for _, c := range candidates {
		if bin, err := exec.LookPath(c); err == nil {
			return &Magick{Bin: bin, Quality: quality(cfg.Quality), Gravity: cfg.Gravity, run: execRun}, nil
		}
	}
	return nil, fmt.Errorf("imagemagick not found on PATH (tried %s); install it or set backend.engine to %q",
		strings.Join(candidates, ", "), config.EngineNative)
}

func execRun(ctx context.Context, bin string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, bin, args...).CombinedOutput()
}

// Resize scales the source to exactly the target size.
func (m *Magick) Resize(ctx context.Context, job Job) error {
	return m.exec(ctx, m.ResizeArgs(job))
}

// ResizeCrop scales along the dominant axis and extends to the target size.
func (m *Magick) ResizeCrop(ctx context.Context, job Job) error {
	return m.exec(ctx, m.CropArgs(job))
}

func (m *Magick) exec(ctx context.Context, args []string) error {
	run := m.run
	if run == nil {
		run = execRun
	}
	if out, err := run(ctx, m.Bin, args); err != nil {
		return fmt.Errorf("imagemagick: %w\n%s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// ResizeArgs returns the arguments for a forced-geometry resize.
func (m *Magick) ResizeArgs(job Job) []string {
	args := []string{job.Source, "-resize", fmt.Sprintf("%dx%d!", job.Width, job.Height)}
	if job.IsJPEG() && job.Background != "" {
		args = append(args, "-background", job.Background)
	}
	return m.finish(args, job)
}

// CropArgs returns the arguments for resize-then-extent.
func (m *Magick) CropArgs(job Job) []string {
	w, h := job.Intermediate()
	geom := strconv.Itoa(w)
	if w == 0 {
		geom = "x" + strconv.Itoa(h)
	}
	gravity := m.Gravity
	if gravity == "" {
		gravity = "center"
	}
	args := []string{job.Source,
		"-resize", geom,
		"-background", background(job),
		"-gravity", gravity,
		"-extent", fmt.Sprintf("%dx%d", job.Width, job.Height),
	}
	return m.finish(args, job)
}

func (m *Magick) finish(args []string, job Job) []string {
	args = append(args, "-strip", "-quality", strconv.Itoa(quality(m.Quality)))
	if job.IsJPEG() {
		args = append(args, "-alpha", "remove")
	}
	return append(args, job.Destination)
}

// background picks the padding color: the job's, else transparent for
// formats with alpha and white for JPEG.
func background(job Job) string {
	switch {
	case job.Background != "":
		return job.Background
	case job.IsJPEG():
		return "white"
	default:
		return "none"
	}
}
