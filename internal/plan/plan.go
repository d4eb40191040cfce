package plan

import (
	"path/filepath"

	"github.com/Mavwarf/imaging/internal/config"
	"github.com/Mavwarf/imaging/internal/paths"
	"github.com/Mavwarf/imaging/internal/project"
	"github.com/Mavwarf/imaging/internal/tmpl"
	"github.com/Mavwarf/imaging/internal/transform"
	"github.com/Mavwarf/imaging/internal/verify"
)

// Input is everything the planner needs. It is read-only.
type Input struct {
	Platforms []config.PlatformSpec // active platforms, in order
	Sources   verify.SourceSet
	Project   project.Descriptor
	AssetPath string
	Dir       string // project directory relative paths resolve against
}

// Icons plans one exact resize per declared icon, plus the app-store icon
// under the asset path when a platform declares one.
func Icons(in Input) []transform.Job {
	var jobs []transform.Job
	src := in.Sources.AppIcon
	for _, p := range in.Platforms {
		if !p.GenerateIcons {
			continue
		}
		dest := destination(in, p)
		for _, icon := range p.Icons {
			jobs = append(jobs, transform.Job{
				Category:    transform.CategoryIcons,
				Platform:    p.Key,
				Source:      src.Path,
				Destination: filepath.Join(dest, icon.Output),
				Width:       icon.Size,
				Height:      icon.Size,
				Fit:         transform.FitResize,
				Background:  src.Background,
			})
		}
		if a := p.AppstoreIcon; a != nil {
			jobs = append(jobs, transform.Job{
				Category:    transform.CategoryIcons,
				Platform:    p.Key,
				Source:      src.Path,
				Destination: filepath.Join(assetDir(in), a.Output),
				Width:       a.Size,
				Height:      a.Size,
				Fit:         transform.FitResize,
				Background:  src.Background,
			})
		}
	}
	return jobs
}

// Splashscreens plans one crop-to-aspect job per declared splashscreen.
func Splashscreens(in Input) []transform.Job {
	var jobs []transform.Job
	src := in.Sources.Splashscreen
	for _, p := range in.Platforms {
		if !p.GenerateSplashscreens {
			continue
		}
		dest := destination(in, p)
		for _, s := range p.Splashscreens {
			jobs = append(jobs, transform.Job{
				Category:    transform.CategorySplashscreens,
				Platform:    p.Key,
				Source:      src.Path,
				Destination: filepath.Join(dest, s.Output),
				Width:       s.Width,
				Height:      s.Height,
				Fit:         transform.FitCrop,
				Background:  src.Background,
			})
		}
	}
	return jobs
}

// Previews plans the full cross product of preview sources and preview
// descriptors for every platform with previews enabled. Outputs land in
// <assetPath>/previews/<platform>/<type>/.
func Previews(in Input) []transform.Job {
	var jobs []transform.Job
	root := filepath.Join(assetDir(in), "previews")
	for _, p := range in.Platforms {
		if !p.GeneratePreviews {
			continue
		}
		for _, src := range in.Sources.Previews {
			vars := tmpl.Vars{Name: in.Project.Name, File: paths.Stem(src)}
			for _, pv := range p.Previews {
				jobs = append(jobs, transform.Job{
					Category:    transform.CategoryPreviews,
					Platform:    p.Key,
					Source:      src,
					Destination: filepath.Join(root, p.Key, pv.Type, tmpl.Expand(pv.Output, vars)),
					Width:       pv.Width,
					Height:      pv.Height,
					Fit:         transform.FitCrop,
				})
			}
		}
	}
	return jobs
}

// Stage is the planned work of one generation stage.
type Stage struct {
	Category transform.Category
	Jobs     []transform.Job
}

// All returns the three stages in execution order.
func All(in Input) []Stage {
	return []Stage{
		{transform.CategoryIcons, Icons(in)},
		{transform.CategorySplashscreens, Splashscreens(in)},
		{transform.CategoryPreviews, Previews(in)},
	}
}

func destination(in Input, p config.PlatformSpec) string {
	return under(in.Dir, tmpl.Expand(p.DestinationPath, tmpl.Vars{Name: in.Project.Name}))
}

func assetDir(in Input) string {
	return under(in.Dir, in.AssetPath)
}

func under(dir, p string) string {
	if p == "" {
		return dir
	}
	return paths.Resolve(dir, p)
}
