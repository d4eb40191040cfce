package telegram

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Mavwarf/imaging/internal/httputil"
)

// APIBase is the Bot API root. Tests point it at a local server.
var APIBase = "https://api.telegram.org"

// Send posts a message to a Telegram chat via the Bot API.
func Send(ctx context.Context, token, chatID, message string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", APIBase, token)
	return sendTo(ctx, endpoint, chatID, message)
}

// sendTo posts a message to the given endpoint. Extracted for testing.
func sendTo(ctx context.Context, endpoint, chatID, message string) error {
	resp, err := httputil.PostForm(ctx, endpoint, url.Values{
		"chat_id": {chatID},
		"text":    {message},
	})
	if err != nil {
		return fmt.Errorf("telegram: post: %w", err)
	}
	defer resp.Body.Close()

	return httputil.CheckStatus(resp, "telegram: API")
}
