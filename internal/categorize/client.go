package categorize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Sentinel is returned when classification fails for any reason. Callers
// must never let it reach rendered output.
const Sentinel = "Unknown"

// Classifier labels a product title with a category, best effort only.
type Classifier interface {
	Classify(ctx context.Context, title string) (string, error)
}

// Noop satisfies Classifier without doing any work.
type Noop struct{}

func (Noop) Classify(ctx context.Context, title string) (string, error) {
	return Sentinel, nil
}

// Client posts titles to a local text-generation service.
type Client struct {
	endpoint   string
	model      string
	language   string
	httpClient *http.Client
}

func NewClient(endpoint, model, language string, timeout time.Duration) *Client {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = "http://localhost:3000/generate"
	}
	if strings.TrimSpace(language) == "" {
		language = "text"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		model:      model,
		language:   language,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Classify asks the service for a category for the given title. There is no
// retry: a failed call is reported once and the caller falls back to Sentinel.
func (c *Client) Classify(ctx context.Context, title string) (string, error) {
	payload := map[string]string{
		"prompt":   fmt.Sprintf("Categorize this product title: %s. Only return the category.", title),
		"model":    c.model,
		"language": c.language,
	}
	var resp struct {
		Output string `json:"output"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := c.doJSON(ctx, payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("generate API error: %s", resp.Error.Message)
	}
	return cleanBlock(resp.Output), nil
}

func (c *Client) doJSON(ctx context.Context, in any, out any) error {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w; raw: %s", err, truncate(string(body), 800))
	}
	return nil
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_-]+)?\n(.*?)```")

// cleanBlock unwraps a fenced code block if the service returned one.
func cleanBlock(text string) string {
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
