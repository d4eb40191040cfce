package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Mavwarf/imaging/internal/config"
	"github.com/Mavwarf/imaging/internal/discord"
	"github.com/Mavwarf/imaging/internal/mqtt"
	"github.com/Mavwarf/imaging/internal/pipeline"
	"github.com/Mavwarf/imaging/internal/slack"
	"github.com/Mavwarf/imaging/internal/telegram"
	"github.com/Mavwarf/imaging/internal/webhook"
)

// Summary is the JSON document published after a run.
type Summary struct {
	Time       time.Time `json:"time"`
	Dir        string    `json:"dir"`
	Project    string    `json:"project,omitempty"`
	Version    string    `json:"version,omitempty"`
	Outcome    string    `json:"outcome"`
	Platforms  []string  `json:"platforms,omitempty"`
	Jobs       int       `json:"jobs"`
	Failed     int       `json:"failed"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Failures   []string  `json:"failures,omitempty"`
}

// NewSummary builds the published summary for res.
func NewSummary(res pipeline.Result, dir string) Summary {
	s := Summary{
		Time:       res.Started.UTC(),
		Dir:        dir,
		Project:    res.Project.Name,
		Version:    res.Project.Version,
		Outcome:    res.Outcome.String(),
		Platforms:  res.Platforms,
		Jobs:       res.Jobs(),
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		s.Error = res.Err.Error()
	}
	for _, f := range res.Failures() {
		s.Failures = append(s.Failures, f.Error())
	}
	s.Failed = len(s.Failures)
	return s
}

// maxListed caps the failures spelled out in a chat message.
const maxListed = 5

// Message renders s as a short plain-text chat message.
func (s Summary) Message() string {
	var b strings.Builder
	name := s.Project
	if name == "" {
		name = s.Dir
	}
	if s.Version != "" {
		name += " v" + s.Version
	}
	fmt.Fprintf(&b, "imaging: %s %s", name, s.Outcome)
	if s.Error != "" {
		fmt.Fprintf(&b, ": %s", s.Error)
	} else {
		fmt.Fprintf(&b, ", %d/%d images in %.1fs", s.Jobs-s.Failed, s.Jobs, float64(s.DurationMS)/1000)
	}
	for i, f := range s.Failures {
		if i == maxListed {
			fmt.Fprintf(&b, "\n  ... and %d more", len(s.Failures)-maxListed)
			break
		}
		fmt.Fprintf(&b, "\n  %s", f)
	}
	return b.String()
}

// Enabled reports whether any notification channel is configured.
func Enabled(cfg config.Notify) bool {
	return (cfg.MQTT != nil && cfg.MQTT.Broker != "") ||
		(cfg.Webhook != nil && cfg.Webhook.URL != "") ||
		(cfg.Slack != nil && cfg.Slack.WebhookURL != "") ||
		(cfg.Discord != nil && cfg.Discord.WebhookURL != "") ||
		(cfg.Telegram != nil && cfg.Telegram.Token != "")
}

// Send publishes the run summary to every configured channel in parallel
// and returns one error per failed channel. Clean runs are skipped when
// OnlyFailures is set.
func Send(ctx context.Context, cfg config.Notify, res pipeline.Result, dir string) []error {
	if !Enabled(cfg) {
		return nil
	}
	if cfg.OnlyFailures && res.Outcome == pipeline.OutcomeClean {
		return nil
	}
	summary := NewSummary(res, dir)
	body, err := json.Marshal(summary)
	if err != nil {
		return []error{fmt.Errorf("notify: encoding summary: %w", err)}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error
	fire := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
			}
		}()
	}

	if m := cfg.MQTT; m != nil && m.Broker != "" {
		fire("mqtt", func() error { return mqtt.Publish(*m, body) })
	}
	if w := cfg.Webhook; w != nil && w.URL != "" {
		fire("webhook", func() error { return webhook.Send(ctx, w.URL, body, w.Headers) })
	}
	if sl := cfg.Slack; sl != nil && sl.WebhookURL != "" {
		fire("slack", func() error { return slack.Send(ctx, os.ExpandEnv(sl.WebhookURL), summary.Message()) })
	}
	if d := cfg.Discord; d != nil && d.WebhookURL != "" {
		fire("discord", func() error { return discord.Send(ctx, os.ExpandEnv(d.WebhookURL), summary.Message()) })
	}
	if tg := cfg.Telegram; tg != nil && tg.Token != "" {
		fire("telegram", func() error {
			return telegram.Send(ctx, os.ExpandEnv(tg.Token), os.ExpandEnv(tg.ChatID), summary.Message())
		})
	}
	wg.Wait()
	return errs
}
