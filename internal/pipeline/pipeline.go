package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mavwarf/imaging/internal/config"
	"github.com/Mavwarf/imaging/internal/paths"
	"github.com/Mavwarf/imaging/internal/plan"
	"github.com/Mavwarf/imaging/internal/project"
	"github.com/Mavwarf/imaging/internal/runner"
	"github.com/Mavwarf/imaging/internal/transform"
	"github.com/Mavwarf/imaging/internal/verify"
)

// Observer receives progress from a run. Methods may be called from
// several goroutines during generation (JobDone only).
type Observer interface {
	StateChanged(State)
	Environment(verify.EnvResult)
	Sources(verify.Needs, verify.SourceSet)
	Project(project.Descriptor)
	StageStarted(cat transform.Category, jobs int)
	JobDone(runner.Event)
	StageDone(runner.StageResult)
}

// Pipeline is one configured run over a project directory.
type Pipeline struct {
	Config  config.Config
	Dir     string
	Backend transform.Backend

	// LoadProject reads the manifest. nil means project.Load.
	LoadProject func(path string) (project.Descriptor, error)
	Observer    Observer
}

// Result is the outcome of Run. It is a plain value; nothing is shared
// between runs.
type Result struct {
	State     State // final state: StateDone or StateFailed
	Outcome   Outcome
	Err       error // fatal verification error, nil unless aborted
	Project   project.Descriptor
	Platforms []string // active platform keys
	Stages    []runner.StageResult
	Started   time.Time
	Duration  time.Duration
}

// Jobs returns the number of jobs attempted.
func (r Result) Jobs() int {
	n := 0
	for _, s := range r.Stages {
		n += s.Jobs
	}
	return n
}

// Failures returns every failed job across stages.
func (r Result) Failures() []runner.Failure {
	var out []runner.Failure
	for _, s := range r.Stages {
		out = append(out, s.Failures...)
	}
	return out
}

// ExitCode is 0 only for a clean run.
func (r Result) ExitCode() int {
	if r.Outcome == OutcomeClean {
		return 0
	}
	return 1
}

// Prepared is a verified run ready for generation.
type Prepared struct {
	Input  plan.Input
	Stages []plan.Stage
}

// Prepare runs verification and manifest loading, then plans every stage.
// On a fatal error res has State StateFailed and Outcome OutcomeAborted.
func Prepare(p Pipeline) (Prepared, Result) {
	res := Result{State: StateInit, Started: time.Now()}
	prep, err := p.prepare(&res)
	if err != nil {
		res.Err = err
		res.Outcome = OutcomeAborted
		p.enter(&res, StateFailed)
		res.Duration = time.Since(res.Started)
	}
	return prep, res
}

// Run verifies the project, then generates icons, splashscreens and
// previews in that order. Verification problems abort before any image
// is written; job failures are collected and reported in the result.
func Run(ctx context.Context, p Pipeline) Result {
	prep, res := Prepare(p)
	if res.State == StateFailed {
		return res
	}

	stageState := map[transform.Category]State{
		transform.CategoryIcons:         StateGeneratingIcons,
		transform.CategorySplashscreens: StateGeneratingSplashscreens,
		transform.CategoryPreviews:      StateGeneratingPreviews,
	}
	opts := runner.Options{Concurrency: p.Config.Backend.Concurrency}
	if p.Observer != nil {
		opts.OnJob = p.Observer.JobDone
	}
	for _, st := range prep.Stages {
		p.enter(&res, stageState[st.Category])
		if p.Observer != nil {
			p.Observer.StageStarted(st.Category, len(st.Jobs))
		}
		warnPadded(st)
		sr := runner.Execute(ctx, p.Backend, st.Category, st.Jobs, opts)
		res.Stages = append(res.Stages, sr)
		if p.Observer != nil {
			p.Observer.StageDone(sr)
		}
	}

	res.Outcome = OutcomeClean
	if len(res.Failures()) > 0 {
		res.Outcome = OutcomeCompletedWithFailures
	}
	p.enter(&res, StateDone)
	res.Duration = time.Since(res.Started)
	return res
}

func (p Pipeline) prepare(res *Result) (Prepared, error) {
	cfg := p.Config

	p.enter(res, StateVerifyingEnvironment)
	env, err := verify.Environment(cfg, p.Dir)
	if p.Observer != nil {
		p.Observer.Environment(env)
	}
	if err != nil {
		return Prepared{}, err
	}
	for _, s := range env.Active {
		res.Platforms = append(res.Platforms, s.Key)
	}

	p.enter(res, StateVerifyingSources)
	generated := verify.GeneratedOutputs(env.Active, cfg.AssetPath, p.Dir)
	sources, err := verify.SourcesExcluding(env.Active, cfg.Sources, p.Dir, generated)
	if err != nil {
		return Prepared{}, err
	}
	if p.Observer != nil {
		p.Observer.Sources(verify.Required(env.Active, cfg.Sources), sources)
	}

	p.enter(res, StateLoadingProject)
	load := p.LoadProject
	if load == nil {
		load = project.Load
	}
	desc, err := load(paths.Resolve(p.Dir, cfg.ConfigXML))
	if err != nil {
		return Prepared{}, fmt.Errorf("loading project: %w", err)
	}
	res.Project = desc
	if p.Observer != nil {
		p.Observer.Project(desc)
	}

	in := plan.Input{
		Platforms: env.Active,
		Sources:   sources,
		Project:   desc,
		AssetPath: cfg.AssetPath,
		Dir:       p.Dir,
	}
	return Prepared{Input: in, Stages: plan.All(in)}, nil
}

// warnPadded logs crop jobs whose source cannot cover the target. Those
// outputs show the background around the image; a square source avoids it.
func warnPadded(st plan.Stage) {
	padded := transform.PaddedJobs(st.Jobs)
	if len(padded) == 0 {
		return
	}
	slog.Warn("source aspect ratio too extreme, outputs will be padded with the background",
		"stage", st.Category, "source", padded[0].Source, "jobs", len(padded))
}

func (p Pipeline) enter(res *Result, s State) {
	res.State = s
	if p.Observer != nil {
		p.Observer.StateChanged(s)
	}
}
