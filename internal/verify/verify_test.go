package verify

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Mavwarf/imaging/internal/config"
)

func touch(t *testing.T, dir string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(dir, r)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func mkdirs(t *testing.T, dir string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		if err := os.MkdirAll(filepath.Join(dir, r), 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func activeKeys(specs []config.PlatformSpec) []string {
	var keys []string
	for _, s := range specs {
		keys = append(keys, s.Key)
	}
	return keys
}

func TestEnvironmentBothPlatforms(t *testing.T) {
	dir := t.TempDir()
	mkdirs(t, dir, "platforms/ios", "platforms/android")

	res, err := Environment(config.Default(), dir)
	if err != nil {
		t.Fatalf("Environment: %v", err)
	}
	if diff := cmp.Diff([]string{"ios", "android"}, activeKeys(res.Active)); diff != "" {
		t.Errorf("active (-want +got):\n%s", diff)
	}
	if len(res.Checks) != 2 || !res.Checks[0].Found || !res.Checks[1].Found {
		t.Errorf("checks = %+v", res.Checks)
	}
}

func TestEnvironmentOnlyAndroid(t *testing.T) {
	dir := t.TempDir()
	mkdirs(t, dir, "platforms/android")

	res, err := Environment(config.Default(), dir)
	if err != nil {
		t.Fatalf("Environment: %v", err)
	}
	if diff := cmp.Diff([]string{"android"}, activeKeys(res.Active)); diff != "" {
		t.Errorf("active (-want +got):\n%s", diff)
	}
	if res.Checks[0].Key != "ios" || res.Checks[0].Found {
		t.Errorf("ios check = %+v, want not found", res.Checks[0])
	}
}

func TestEnvironmentUnknownKeySkipped(t *testing.T) {
	dir := t.TempDir()
	mkdirs(t, dir, "platforms/ios")
	cfg := config.Default()
	cfg.Platforms = []string{"blackberry", "ios"}

	res, err := Environment(cfg, dir)
	if err != nil {
		t.Fatalf("Environment: %v", err)
	}
	if diff := cmp.Diff([]string{"ios"}, activeKeys(res.Active)); diff != "" {
		t.Errorf("active (-want +got):\n%s", diff)
	}
	if res.Checks[0].Configured {
		t.Error("blackberry should be reported as not configured")
	}
}

func TestEnvironmentNoPlatforms(t *testing.T) {
	res, err := Environment(config.Default(), t.TempDir())
	if !errors.Is(err, ErrNoPlatforms) {
		t.Fatalf("err = %v, want ErrNoPlatforms", err)
	}
	if len(res.Active) != 0 {
		t.Errorf("active = %v, want none", activeKeys(res.Active))
	}
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Kind != KindNoPlatforms {
		t.Errorf("errors.As = %+v", ce)
	}
}

func TestRequired(t *testing.T) {
	ios := config.PlatformSpec{Key: "ios", GenerateIcons: true, GeneratePreviews: true}
	android := config.PlatformSpec{Key: "android", GenerateSplashscreens: true}

	tests := []struct {
		name    string
		active  []config.PlatformSpec
		sources config.Sources
		want    Needs
	}{
		{"union", []config.PlatformSpec{ios, android}, config.Sources{Previews: []string{"a.png"}}, Needs{true, true, true}},
		{"previews gated on list", []config.PlatformSpec{ios}, config.Sources{}, Needs{Icon: true}},
		{"splash only", []config.PlatformSpec{android}, config.Sources{Previews: []string{"a.png"}}, Needs{Splash: true}},
		{"none", nil, config.Sources{}, Needs{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Required(tt.active, tt.sources); got != tt.want {
				t.Errorf("Required = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSourcesMissingIcon(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "assets/splashscreen.png")
	cfg := config.Default()
	active := []config.PlatformSpec{cfg.Specs["ios"]}

	_, err := Sources(active, cfg.Sources, dir)
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("err = %v, want ErrMissingSource", err)
	}
	var ce *ConfigError
	if errors.As(err, &ce) && filepath.Base(ce.Path) != "appicon.png" {
		t.Errorf("path = %q, want the app icon", ce.Path)
	}
}

func TestSourcesMissingSplashChecksSplashField(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "assets/appicon.png")
	cfg := config.Default()
	active := []config.PlatformSpec{cfg.Specs["android"]}

	_, err := Sources(active, cfg.Sources, dir)
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Kind != KindMissingSource {
		t.Fatalf("err = %v, want missing source", err)
	}
	if filepath.Base(ce.Path) != "splashscreen.png" {
		t.Errorf("path = %q, want the splashscreen", ce.Path)
	}
}

func TestSourcesDisabledCategoryNotRequired(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "assets/appicon.png")
	cfg := config.Default()
	spec := cfg.Specs["android"]
	spec.GenerateSplashscreens = false

	set, err := Sources([]config.PlatformSpec{spec}, cfg.Sources, dir)
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if set.AppIcon.Path != filepath.Join(dir, "assets/appicon.png") {
		t.Errorf("app icon = %q", set.AppIcon.Path)
	}
}

func TestSourcesDirectoryIsNotAFile(t *testing.T) {
	dir := t.TempDir()
	mkdirs(t, dir, "assets/appicon.png")
	spec := config.PlatformSpec{GenerateIcons: true}

	_, err := Sources([]config.PlatformSpec{spec}, config.Default().Sources, dir)
	if !errors.Is(err, ErrMissingSource) {
		t.Errorf("err = %v, want ErrMissingSource", err)
	}
}

func TestSourcesPreviewGlob(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "shots/b.png", "shots/a.png", "shots/notes.txt", "extra.png")
	mkdirs(t, dir, "shots/sub.png")
	spec := config.PlatformSpec{GeneratePreviews: true}
	sources := config.Sources{Previews: []string{"shots/*.png", "extra.png", "shots/a.png"}}

	set, err := Sources([]config.PlatformSpec{spec}, sources, dir)
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	want := []string{
		filepath.Join(dir, "shots/a.png"),
		filepath.Join(dir, "shots/b.png"),
		filepath.Join(dir, "extra.png"),
	}
	if diff := cmp.Diff(want, set.Previews); diff != "" {
		t.Errorf("previews (-want +got):\n%s", diff)
	}
}

func TestSourcesPreviewGlobNoMatch(t *testing.T) {
	dir := t.TempDir()
	spec := config.PlatformSpec{GeneratePreviews: true}
	sources := config.Sources{Previews: []string{"shots/*.png"}}

	_, err := Sources([]config.PlatformSpec{spec}, sources, dir)
	if !errors.Is(err, ErrMissingSource) {
		t.Errorf("err = %v, want ErrMissingSource", err)
	}
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Kind: KindMissingSource, Path: "a.png", Msg: "app icon source file missing"}
	if got := err.Error(); got != "app icon source file missing: a.png" {
		t.Errorf("Error() = %q", got)
	}
	if errors.Is(err, ErrNoPlatforms) {
		t.Error("different kinds must not match")
	}
}

func TestSourcesPreviewDuplicateBaseName(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "shots/home.png", "extra/home.jpg", "extra/Settings.png", "shots/settings.jpg")
	spec := config.PlatformSpec{GeneratePreviews: true}

	tests := []struct {
		name    string
		entries []string
	}{
		{"different extension and dir", []string{"shots/home.png", "extra/home.jpg"}},
		{"glob and plain path", []string{"extra/*", "shots/home.png"}},
		{"case only", []string{"extra/Settings.png", "shots/settings.jpg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sources([]config.PlatformSpec{spec}, config.Sources{Previews: tt.entries}, dir)
			if !errors.Is(err, ErrDuplicatePreview) {
				t.Errorf("err = %v, want ErrDuplicatePreview", err)
			}
		})
	}
}

func TestSourcesPreviewSameFileTwiceIsFine(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "shots/home.png")
	spec := config.PlatformSpec{GeneratePreviews: true}
	sources := config.Sources{Previews: []string{"shots/*.png", "shots/home.png"}}

	set, err := Sources([]config.PlatformSpec{spec}, sources, dir)
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(set.Previews) != 1 {
		t.Errorf("previews = %v, want one entry", set.Previews)
	}
}

func TestGeneratedOutputs(t *testing.T) {
	dir := t.TempDir()
	ios, _ := config.Default().Spec("ios")
	android, _ := config.Default().Spec("android")
	g := GeneratedOutputs([]config.PlatformSpec{ios, android}, "assets/", dir)

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "assets", "appstore-icon.jpg"), true},
		{filepath.Join(dir, "assets", "previews"), true},
		{filepath.Join(dir, "assets", "previews", "ios", "iphone", "a.jpg"), true},
		{filepath.Join(dir, "assets", "previews-old", "a.jpg"), false},
		{filepath.Join(dir, "assets", "home.jpg"), false},
	}
	for _, tt := range tests {
		if got := g.Contains(tt.path); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if g := GeneratedOutputs([]config.PlatformSpec{android}, "", dir); g.Contains(filepath.Join(dir, "appstore-icon.jpg")) {
		t.Error("android has no app-store icon")
	}
}

func TestSourcesExcludingSkipsPreviousOutputs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "assets/home.jpg", "assets/appstore-icon.jpg")
	ios, _ := config.Default().Spec("ios")
	sources := config.Sources{Previews: []string{"assets/*.jpg"}}
	skip := GeneratedOutputs([]config.PlatformSpec{ios}, "assets/", dir)

	set, err := SourcesExcluding([]config.PlatformSpec{{GeneratePreviews: true}}, sources, dir, skip)
	if err != nil {
		t.Fatalf("SourcesExcluding: %v", err)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "assets/home.jpg")}, set.Previews); diff != "" {
		t.Errorf("previews (-want +got):\n%s", diff)
	}

	onlyOutputs := config.Sources{Previews: []string{"assets/appstore-*.jpg"}}
	if _, err := SourcesExcluding([]config.PlatformSpec{{GeneratePreviews: true}}, onlyOutputs, dir, skip); !errors.Is(err, ErrMissingSource) {
		t.Errorf("err = %v, want ErrMissingSource when only outputs match", err)
	}
}
