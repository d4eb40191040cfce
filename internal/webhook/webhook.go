package webhook

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/Mavwarf/imaging/internal/httputil"
)

// Send posts a JSON body to url. Custom headers are applied after the
// default Content-Type, so callers can override it. Header values are
// expanded with os.ExpandEnv to support $VAR secrets.
func Send(ctx context.Context, url string, body []byte, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, os.ExpandEnv(url), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "imaging")
	for k, v := range headers {
		req.Header.Set(k, os.ExpandEnv(v))
	}

	resp, err := httputil.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()

	return httputil.CheckStatus(resp, "webhook")
}
