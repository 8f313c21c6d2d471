package slideml

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ServiceLocator resolves the ML service base URL. The remote endpoint moves
// (it is a tunneled notebook), so the address is looked up instead of
// configured where possible.
type ServiceLocator interface {
	BaseURL(ctx context.Context) (string, error)
}

// StaticLocator pins the base URL from configuration. Also the test seam.
type StaticLocator struct {
	URL string
}

func (l StaticLocator) BaseURL(context.Context) (string, error) {
	url := strings.TrimRight(strings.TrimSpace(l.URL), "/")
	if url == "" {
		return "", fmt.Errorf("ml base url is not configured")
	}
	return url, nil
}

const gistURLFile = "ngrok_url.json"

// GistLocator reads the current tunnel URL from a GitHub gist holding a
// single ngrok_url.json file. Results are cached for a TTL so the gist is not
// hit on every workflow step.
type GistLocator struct {
	gistID     string
	apiBase    string
	cacheTTL   time.Duration
	httpClient *http.Client

	mu        sync.Mutex
	cached    string
	expiresAt time.Time
}

func NewGistLocator(gistID string, cacheTTL time.Duration) *GistLocator {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &GistLocator{
		gistID:     gistID,
		apiBase:    "https://api.github.com",
		cacheTTL:   cacheTTL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (l *GistLocator) BaseURL(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != "" && time.Now().Before(l.expiresAt) {
		return l.cached, nil
	}

	url, err := l.fetch(ctx)
	if err != nil {
		// A stale address beats no address while the gist is unreachable.
		if l.cached != "" {
			return l.cached, nil
		}
		return "", err
	}

	l.cached = url
	l.expiresAt = time.Now().Add(l.cacheTTL)
	return url, nil
}

func (l *GistLocator) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.apiBase+"/gists/"+l.gistID, nil)
	if err != nil {
		return "", fmt.Errorf("create gist request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "slidespace-backend")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gist lookup status: %s", resp.Status)
	}

	var gist struct {
		Files map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gist); err != nil {
		return "", fmt.Errorf("decode gist response: %w", err)
	}

	file, ok := gist.Files[gistURLFile]
	if !ok {
		return "", fmt.Errorf("gist is missing %s", gistURLFile)
	}

	var content struct {
		NgrokURL string `json:"ngrok_url"`
	}
	if err := json.Unmarshal([]byte(file.Content), &content); err != nil {
		return "", fmt.Errorf("parse %s: %w", gistURLFile, err)
	}

	url := strings.TrimRight(strings.TrimSpace(content.NgrokURL), "/")
	if url == "" {
		return "", fmt.Errorf("gist %s holds no url", gistURLFile)
	}
	return url, nil
}
