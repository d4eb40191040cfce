package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Mavwarf/imaging/internal/config"
	"github.com/Mavwarf/imaging/internal/project"
	"github.com/Mavwarf/imaging/internal/runner"
	"github.com/Mavwarf/imaging/internal/transform"
	"github.com/Mavwarf/imaging/internal/verify"
)

type fakeBackend struct {
	mu   sync.Mutex
	jobs []transform.Job
	fail func(transform.Job) bool
}

func (f *fakeBackend) record(j transform.Job) error {
	f.mu.Lock()
	f.jobs = append(f.jobs, j)
	f.mu.Unlock()
	if f.fail != nil && f.fail(j) {
		return errors.New("backend exploded")
	}
	return nil
}

func (f *fakeBackend) Resize(_ context.Context, j transform.Job) error     { return f.record(j) }
func (f *fakeBackend) ResizeCrop(_ context.Context, j transform.Job) error { return f.record(j) }

type recorder struct {
	mu     sync.Mutex
	states []State
	jobs   int
	stages []transform.Category
}

func (r *recorder) StateChanged(s State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}
func (r *recorder) Environment(verify.EnvResult)           {}
func (r *recorder) Sources(verify.Needs, verify.SourceSet) {}
func (r *recorder) Project(project.Descriptor)             {}
func (r *recorder) StageStarted(c transform.Category, _ int) {
	r.stages = append(r.stages, c)
}
func (r *recorder) JobDone(runner.Event) {
	r.mu.Lock()
	r.jobs++
	r.mu.Unlock()
}
func (r *recorder) StageDone(runner.StageResult) {}

func fixedLoader(calls *int) func(string) (project.Descriptor, error) {
	return func(string) (project.Descriptor, error) {
		*calls++
		return project.Descriptor{ID: "com.example.myapp", Version: "1.0.0", Name: "MyApp"}, nil
	}
}

func scaffold(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		p := filepath.Join(dir, f)
		if strings.HasSuffix(f, "/") {
			os.MkdirAll(p, 0755)
			continue
		}
		os.MkdirAll(filepath.Dir(p), 0755)
		os.WriteFile(p, []byte("x"), 0644)
	}
	return dir
}

func TestRunZeroPlatformsNeverLoadsProject(t *testing.T) {
	dir := scaffold(t, "assets/appicon.png", "assets/splashscreen.png")
	calls := 0
	rec := &recorder{}
	b := &fakeBackend{}

	res := Run(context.Background(), Pipeline{
		Config:      config.Default(),
		Dir:         dir,
		Backend:     b,
		LoadProject: fixedLoader(&calls),
		Observer:    rec,
	})

	if !errors.Is(res.Err, verify.ErrNoPlatforms) {
		t.Fatalf("Err = %v, want ErrNoPlatforms", res.Err)
	}
	if res.State != StateFailed || res.Outcome != OutcomeAborted || res.ExitCode() == 0 {
		t.Errorf("state=%v outcome=%v exit=%d", res.State, res.Outcome, res.ExitCode())
	}
	if calls != 0 {
		t.Errorf("project loader called %d times, want 0", calls)
	}
	if len(b.jobs) != 0 {
		t.Errorf("backend ran %d jobs, want 0", len(b.jobs))
	}
	want := []State{StateVerifyingEnvironment, StateFailed}
	if diff := cmp.Diff(want, rec.states); diff != "" {
		t.Errorf("states (-want +got):\n%s", diff)
	}
}

func TestRunMissingIconFailsBeforeManifest(t *testing.T) {
	dir := scaffold(t, "platforms/ios/", "assets/splashscreen.png")
	calls := 0

	res := Run(context.Background(), Pipeline{
		Config:      config.Default(),
		Dir:         dir,
		Backend:     &fakeBackend{},
		LoadProject: fixedLoader(&calls),
	})

	if !errors.Is(res.Err, verify.ErrMissingSource) {
		t.Fatalf("Err = %v, want ErrMissingSource", res.Err)
	}
	if calls != 0 {
		t.Errorf("project loader called %d times, want 0", calls)
	}
	if res.Outcome != OutcomeAborted {
		t.Errorf("outcome = %v", res.Outcome)
	}
}

func TestRunManifestMissing(t *testing.T) {
	dir := scaffold(t, "platforms/android/", "assets/appicon.png", "assets/splashscreen.png")

	res := Run(context.Background(), Pipeline{Config: config.Default(), Dir: dir, Backend: &fakeBackend{}})

	if !errors.Is(res.Err, verify.ErrManifestMissing) {
		t.Fatalf("Err = %v, want ErrManifestMissing", res.Err)
	}
	if len(res.Stages) != 0 {
		t.Errorf("stages = %d, want none", len(res.Stages))
	}
}

func TestRunEndToEndFakeBackend(t *testing.T) {
	dir := scaffold(t,
		"platforms/ios/", "platforms/android/",
		"assets/appicon.png", "assets/splashscreen.png", "shots/home.png")
	cfg := config.Default()
	cfg.Sources.Previews = []string{"shots/*.png"}
	calls := 0
	rec := &recorder{}
	b := &fakeBackend{}

	res := Run(context.Background(), Pipeline{
		Config:      cfg,
		Dir:         dir,
		Backend:     b,
		LoadProject: fixedLoader(&calls),
		Observer:    rec,
	})

	if res.Err != nil || res.Outcome != OutcomeClean || res.ExitCode() != 0 {
		t.Fatalf("err=%v outcome=%v", res.Err, res.Outcome)
	}
	// ios: 15 icons + appstore, 10 splash, 20 previews; android: 6 icons, 8 splash.
	const want = 16 + 10 + 20 + 6 + 8
	if res.Jobs() != want || len(b.jobs) != want || rec.jobs != want {
		t.Errorf("jobs: result=%d backend=%d observed=%d, want %d", res.Jobs(), len(b.jobs), rec.jobs, want)
	}
	if calls != 1 {
		t.Errorf("loader calls = %d, want 1", calls)
	}
	if diff := cmp.Diff([]string{"ios", "android"}, res.Platforms); diff != "" {
		t.Errorf("platforms (-want +got):\n%s", diff)
	}
	for _, j := range b.jobs {
		if j.Platform == "ios" && j.Category != transform.CategoryPreviews &&
			!strings.Contains(j.Destination, "MyApp") && filepath.Base(j.Destination) != "appstore-icon.jpg" {
			t.Errorf("ios destination missing project name: %s", j.Destination)
		}
	}
	wantStates := []State{
		StateVerifyingEnvironment, StateVerifyingSources, StateLoadingProject,
		StateGeneratingIcons, StateGeneratingSplashscreens, StateGeneratingPreviews, StateDone,
	}
	if diff := cmp.Diff(wantStates, rec.states); diff != "" {
		t.Errorf("states (-want +got):\n%s", diff)
	}
	wantStages := []transform.Category{transform.CategoryIcons, transform.CategorySplashscreens, transform.CategoryPreviews}
	if diff := cmp.Diff(wantStages, rec.stages); diff != "" {
		t.Errorf("stages (-want +got):\n%s", diff)
	}
}

func TestRunCompletedWithFailures(t *testing.T) {
	dir := scaffold(t, "platforms/android/", "assets/appicon.png", "assets/splashscreen.png")
	calls := 0
	b := &fakeBackend{fail: func(j transform.Job) bool {
		return strings.Contains(j.Destination, "xxxhdpi")
	}}

	res := Run(context.Background(), Pipeline{
		Config:      config.Default(),
		Dir:         dir,
		Backend:     b,
		LoadProject: fixedLoader(&calls),
	})

	if res.State != StateDone || res.Outcome != OutcomeCompletedWithFailures {
		t.Fatalf("state=%v outcome=%v", res.State, res.Outcome)
	}
	if n := len(res.Failures()); n != 1 {
		t.Errorf("failures = %d, want 1", n)
	}
	if res.ExitCode() != 1 {
		t.Errorf("exit = %d, want 1", res.ExitCode())
	}
	if res.Stages[1].Succeeded() != 8 {
		t.Errorf("splashscreens should still all run, got %d", res.Stages[1].Succeeded())
	}
}

func TestPreparePlansWithoutExecuting(t *testing.T) {
	dir := scaffold(t, "platforms/android/", "assets/appicon.png", "assets/splashscreen.png")
	calls := 0

	prep, res := Prepare(Pipeline{Config: config.Default(), Dir: dir, LoadProject: fixedLoader(&calls)})
	if res.State == StateFailed {
		t.Fatalf("Prepare failed: %v", res.Err)
	}
	if len(prep.Stages) != 3 || len(prep.Stages[0].Jobs) != 6 || len(prep.Stages[1].Jobs) != 8 {
		t.Errorf("stages = %+v", prep.Stages)
	}
	if prep.Input.Project.Name != "MyApp" {
		t.Errorf("project = %+v", prep.Input.Project)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), 200, 255})
		}
	}
	os.MkdirAll(filepath.Dir(path), 0755)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	png.Encode(f, img)
}

func TestRunNativeBackend(t *testing.T) {
	dir := scaffold(t, "platforms/ios/")
	writePNG(t, filepath.Join(dir, "assets/appicon.png"), 64, 64)
	writePNG(t, filepath.Join(dir, "assets/splashscreen.png"), 80, 80)
	writePNG(t, filepath.Join(dir, "shots/home.png"), 40, 60)
	os.WriteFile(filepath.Join(dir, "config.xml"),
		[]byte(`<widget id="com.example.myapp" version="2.0.0"><name>MyApp</name></widget>`), 0644)

	cfg := config.Default()
	cfg.Platforms = []string{"ios"}
	cfg.Sources.Previews = []string{"shots/home.png"}
	ios := cfg.Specs["ios"]
	ios.Icons = []config.Icon{{Size: 16, Output: "icons/icon-16.png"}}
	ios.AppstoreIcon = &config.Icon{Size: 32, Output: "appstore-icon.jpg"}
	ios.Splashscreens = []config.Splash{{Width: 20, Height: 36, Output: "splash/portrait.png"}, {Width: 36, Height: 20, Output: "splash/landscape.png"}}
	ios.Previews = []config.Preview{{Width: 30, Height: 50, Type: "phone", Output: "$file$-port.jpg"}}
	cfg.Specs["ios"] = ios

	res := Run(context.Background(), Pipeline{
		Config:  cfg,
		Dir:     dir,
		Backend: transform.NewNative(cfg.Backend),
	})
	if res.Outcome != OutcomeClean {
		t.Fatalf("outcome = %v, err = %v, failures = %v", res.Outcome, res.Err, res.Failures())
	}
	if res.Project.Version != "2.0.0" {
		t.Errorf("version = %q", res.Project.Version)
	}

	outputs := map[string][2]int{
		"platforms/ios/MyApp/Resources/icons/icon-16.png":    {16, 16},
		"assets/appstore-icon.jpg":                           {32, 32},
		"platforms/ios/MyApp/Resources/splash/portrait.png":  {20, 36},
		"platforms/ios/MyApp/Resources/splash/landscape.png": {36, 20},
		"assets/previews/ios/phone/home-port.jpg":            {30, 50},
	}
	for rel, size := range outputs {
		f, err := os.Open(filepath.Join(dir, rel))
		if err != nil {
			t.Errorf("missing output %s", rel)
			continue
		}
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Errorf("%s: %v", rel, err)
			continue
		}
		if cfg.Width != size[0] || cfg.Height != size[1] {
			t.Errorf("%s: %dx%d, want %dx%d", rel, cfg.Width, cfg.Height, size[0], size[1])
		}
	}
}

func captureLog(t *testing.T) *strings.Builder {
	t.Helper()
	var buf strings.Builder
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(old) })
	return &buf
}

func TestRunWarnsWhenSplashWouldBePadded(t *testing.T) {
	dir := scaffold(t, "platforms/android/", "assets/appicon.png")
	writePNG(t, filepath.Join(dir, "assets/splashscreen.png"), 10, 100)
	cfg := config.Default()
	cfg.Platforms = []string{"android"}
	logs := captureLog(t)
	calls := 0

	res := Run(context.Background(), Pipeline{
		Config:      cfg,
		Dir:         dir,
		Backend:     &fakeBackend{},
		LoadProject: fixedLoader(&calls),
	})
	if res.Outcome != OutcomeClean {
		t.Fatalf("outcome = %v, err = %v", res.Outcome, res.Err)
	}
	out := logs.String()
	if !strings.Contains(out, "outputs will be padded") || !strings.Contains(out, "stage=splashscreens") {
		t.Errorf("expected padding warning, got:\n%s", out)
	}
}

func TestRunSquareSplashDoesNotWarn(t *testing.T) {
	dir := scaffold(t, "platforms/android/", "assets/appicon.png")
	writePNG(t, filepath.Join(dir, "assets/splashscreen.png"), 100, 100)
	cfg := config.Default()
	cfg.Platforms = []string{"android"}
	logs := captureLog(t)
	calls := 0

	Run(context.Background(), Pipeline{
		Config:      cfg,
		Dir:         dir,
		Backend:     &fakeBackend{},
		LoadProject: fixedLoader(&calls),
	})
	if strings.Contains(logs.String(), "padded") {
		t.Errorf("square source should not warn:\n%s", logs.String())
	}
}
