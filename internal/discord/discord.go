package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/Mavwarf/imaging/internal/httputil"
)

// MaxContent is the longest message content Discord accepts.
const MaxContent = 2000

// Send posts a message to a Discord channel via webhook URL. Messages
// longer than MaxContent are truncated with a trailing ellipsis.
func Send(ctx context.Context, webhookURL, message string) error {
	body, err := json.Marshal(map[string]string{"content": truncate(message, MaxContent)})
	if err != nil {
		return fmt.Errorf("discord: marshal: %w", err)
	}

	resp, err := httputil.Post(ctx, webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: post: %w", err)
	}
	defer resp.Body.Close()

	return httputil.CheckStatus(resp, "discord: webhook")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
