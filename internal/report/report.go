package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Mavwarf/imaging/internal/pipeline"
	"github.com/Mavwarf/imaging/internal/project"
	"github.com/Mavwarf/imaging/internal/runner"
	"github.com/Mavwarf/imaging/internal/transform"
	"github.com/Mavwarf/imaging/internal/verify"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	headStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// ColorEnabled reports whether f is a terminal and NO_COLOR is unset.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Console prints run progress as plain lines. It implements
// pipeline.Observer.
type Console struct {
	w       io.Writer
	color   bool
	verbose bool
	dir     string // outputs are shown relative to this

	mu   sync.Mutex
	done int
	jobs int
}

// NewConsole returns a reporter writing to w. Per-job success lines are
// only printed when verbose is set; failures always are.
func NewConsole(w io.Writer, color, verbose bool, dir string) *Console {
	return &Console{w: w, color: color, verbose: verbose, dir: dir}
}

func (c *Console) paint(s lipgloss.Style, text string) string {
	if !c.color {
		return text
	}
	return s.Render(text)
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, args...)
}

func (c *Console) rel(p string) string {
	if c.dir == "" {
		return p
	}
	if r, err := filepath.Rel(c.dir, p); err == nil {
		return r
	}
	return p
}

func (c *Console) StateChanged(s pipeline.State) {
	if s == pipeline.StateVerifyingSources {
		c.printf("verifying sources\n")
	}
}

func (c *Console) Environment(env verify.EnvResult) {
	for _, chk := range env.Checks {
		if !chk.Configured {
			c.printf("checking platform support; %s ... %s\n", chk.Key, c.paint(mutedStyle, "not configured"))
			continue
		}
		status := c.paint(okStyle, "found")
		if !chk.Found {
			status = c.paint(mutedStyle, "not found")
		}
		c.printf("checking platform support; %s ... %s\n", chk.Key, status)
	}
}

func (c *Console) Sources(need verify.Needs, set verify.SourceSet) {
	if need.Icon {
		c.printf("verifying appicon source %s\n", c.paint(mutedStyle, c.rel(set.AppIcon.Path)))
	}
	if need.Splash {
		c.printf("verifying splashscreen source %s\n", c.paint(mutedStyle, c.rel(set.Splashscreen.Path)))
	}
	if need.Preview {
		c.printf("verifying preview sources (%d files)\n", len(set.Previews))
	}
}

func (c *Console) Project(d project.Descriptor) {
	line := d.Name
	if d.Version != "" {
		line += " v" + d.Version
	}
	if d.ID != "" {
		line += " (" + d.ID + ")"
	}
	c.printf("project %s\n", c.paint(headStyle, line))
}

func (c *Console) StageStarted(cat transform.Category, jobs int) {
	c.mu.Lock()
	c.done, c.jobs = 0, jobs
	c.mu.Unlock()
	if jobs == 0 {
		c.printf("generating %s %s\n", cat, c.paint(mutedStyle, "(nothing to do)"))
		return
	}
	c.printf("generating %s (%d)\n", c.paint(headStyle, cat.String()), jobs)
}

func (c *Console) JobDone(ev runner.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done++
	if ev.Err != nil {
		fmt.Fprintf(c.w, "  %s %s %s\n", c.paint(failStyle, "FAIL"), c.rel(ev.Job.Destination), ev.Err)
		return
	}
	if c.verbose {
		fmt.Fprintf(c.w, "  %s   [%d/%d] %s %dx%d %s\n", c.paint(okStyle, "ok"), c.done, c.jobs,
			c.rel(ev.Job.Destination), ev.Job.Width, ev.Job.Height,
			c.paint(mutedStyle, ev.Duration.Round(time.Millisecond).String()))
	}
}

func (c *Console) StageDone(sr runner.StageResult) {
	if sr.Jobs == 0 {
		return
	}
	if sr.OK() {
		c.printf("  %d %s generated\n", sr.Jobs, sr.Category)
		return
	}
	c.printf("  %d of %d %s generated, %s\n", sr.Succeeded(), sr.Jobs, sr.Category,
		c.paint(failStyle, fmt.Sprintf("%d failed", len(sr.Failures))))
}

// Summary prints the terminal line for res.
func (c *Console) Summary(res pipeline.Result) {
	switch res.Outcome {
	case pipeline.OutcomeAborted:
		c.printf("%s %v\n", c.paint(failStyle, "aborted:"), res.Err)
	case pipeline.OutcomeCompletedWithFailures:
		failures := res.Failures()
		c.printf("%s %d of %d images failed (%s)\n", c.paint(failStyle, "completed with failures:"),
			len(failures), res.Jobs(), FormatDuration(res.Duration))
		for _, f := range failures {
			c.printf("  %s: %v\n", c.rel(f.Job.Destination), f.Err)
		}
	default:
		c.printf("%s %d images in %s\n", c.paint(okStyle, "all done:"), res.Jobs(), FormatDuration(res.Duration))
	}
}

// PrintPlan lists planned jobs without running them.
func PrintPlan(w io.Writer, prep pipeline.Prepared, dir string) {
	c := &Console{w: w, dir: dir}
	total := 0
	for _, st := range prep.Stages {
		fmt.Fprintf(w, "%s (%d)\n", st.Category, len(st.Jobs))
		for _, j := range st.Jobs {
			fmt.Fprintf(w, "  %-8s %-6s %5dx%-5d %s <- %s\n", j.Platform, j.Fit, j.Width, j.Height,
				c.rel(j.Destination), c.rel(j.Source))
		}
		total += len(st.Jobs)
	}
	fmt.Fprintf(w, "%d images planned\n", total)
}

// FormatDuration renders d compactly: 850ms, 3.2s, 2m05s.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		m := int(d.Minutes())
		s := int(d.Seconds()) - m*60
		return fmt.Sprintf("%dm%02ds", m, s)
	}
}
