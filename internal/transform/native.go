package transform

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Mavwarf/imaging/internal/config"
	"github.com/Mavwarf/imaging/internal/paths"
)

// Native transforms images in-process. Metadata is never carried over
// because every output is re-encoded from pixels.
type Native struct {
	Quality int
	Gravity string
}

// NewNative returns a pure-Go backend.
func NewNative(cfg config.Backend) *Native {
	return &Native{Quality: quality(cfg.Quality), Gravity: cfg.Gravity}
}

// Resize scales the source to exactly the target size.
func (n *Native) Resize(ctx context.Context, job Job) error {
	src, err := n.decode(ctx, job.Source)
	if err != nil {
		return err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, job.Width, job.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return n.write(job, dst)
}

// ResizeCrop scales along the dominant axis, then places the result on a
// Width x Height canvas according to the gravity. Overflow is cropped and
// any uncovered area shows the background.
func (n *Native) ResizeCrop(ctx context.Context, job Job) error {
	src, err := n.decode(ctx, job.Source)
	if err != nil {
		return err
	}
	bg, err := config.ParseColor(background(job))
	if err != nil {
		return err
	}

	sw, sh := ScaledSize(job, src.Bounds().Dx(), src.Bounds().Dy())
	scaled := image.NewNRGBA(image.Rect(0, 0, sw, sh))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)

	canvas := image.NewNRGBA(image.Rect(0, 0, job.Width, job.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	off := gravityOffset(n.Gravity, job.Width, job.Height, sw, sh)
	draw.Draw(canvas, scaled.Bounds().Add(off), scaled, image.Point{}, draw.Over)
	return n.write(job, canvas)
}

// ScaledSize returns the intermediate size of a crop job for a source of
// srcW x srcH, deriving the zero dimension from the aspect ratio.
func ScaledSize(job Job, srcW, srcH int) (int, int) {
	w, h := job.Intermediate()
	if srcW <= 0 || srcH <= 0 {
		return max(w, 1), max(h, 1)
	}
	if w == 0 {
		w = (h*srcW + srcH/2) / srcH
	} else {
		h = (w*srcH + srcW/2) / srcW
	}
	return max(w, 1), max(h, 1)
}

// gravityOffset positions a w x h image inside a cw x ch canvas.
func gravityOffset(gravity string, cw, ch, w, h int) image.Point {
	x, y := (cw-w)/2, (ch-h)/2
	g := strings.ToLower(gravity)
	if strings.Contains(g, "west") {
		x = 0
	}
	if strings.Contains(g, "east") {
		x = cw - w
	}
	if strings.HasPrefix(g, "north") {
		y = 0
	}
	if strings.HasPrefix(g, "south") {
		y = ch - h
	}
	return image.Pt(x, y)
}

func (n *Native) decode(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func (n *Native) write(job Job, img *image.NRGBA) error {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(filepath.Ext(job.Destination)) {
	case ".png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(&buf, flatten(img, job), &jpeg.Options{Quality: quality(n.Quality)})
	case ".bmp":
		err = bmp.Encode(&buf, img)
	case ".tif", ".tiff":
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported output format %q", filepath.Ext(job.Destination))
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", job.Destination, err)
	}
	return paths.AtomicWrite(job.Destination, buf.Bytes())
}

// flatten composites img over an opaque background, since JPEG has no
// alpha channel.
func flatten(img *image.NRGBA, job Job) image.Image {
	bg, err := config.ParseColor(background(job))
	if err != nil || bg.A == 0 {
		bg = color.NRGBA{255, 255, 255, 255}
	}
	bg.A = 255
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out
}
