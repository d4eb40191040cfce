package transform

import (
	"image"
	"os"
)

// Padded reports whether a crop job leaves part of the canvas uncovered
// for a srcW x srcH source. That happens when the source is more elongated
// than the target along the target's shorter axis; square sources never
// pad.
func Padded(job Job, srcW, srcH int) bool {
	if job.Fit != FitCrop {
		return false
	}
	w, h := ScaledSize(job, srcW, srcH)
	return w < job.Width || h < job.Height
}

// SourceSize reads the pixel size of an image without decoding it.
func SourceSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// PaddedJobs returns the crop jobs whose output will be padded with the
// background. Each source is read once; unreadable sources are skipped
// since the job itself reports them.
func PaddedJobs(jobs []Job) []Job {
	type size struct{ w, h int }
	sizes := map[string]*size{}
	var out []Job
	for _, j := range jobs {
		if j.Fit != FitCrop {
			continue
		}
		s, ok := sizes[j.Source]
		if !ok {
			if w, h, err := SourceSize(j.Source); err == nil {
				s = &size{w, h}
			}
			sizes[j.Source] = s
		}
		if s != nil && Padded(j, s.w, s.h) {
			out = append(out, j)
		}
	}
	return out
}
