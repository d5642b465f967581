package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"aipulse/pkg/config"
)

const userAgent = "aipulse"

// DownloadsFetcher returns one package's downloads for one day
type DownloadsFetcher interface {
	Downloads(ctx context.Context, pkg, date string) (int, error)
}

// NpmClient fetches daily download counts from the npm point API
type NpmClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNpmClient creates an npm downloads client
func NewNpmClient(cfg *config.RegistryConfig) *NpmClient {
	baseURL := cfg.NpmBaseURL
	if baseURL == "" {
		baseURL = "https://api.npmjs.org"
	}

	return &NpmClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Downloads returns the download count for one package on one day.
// 404 means the package did not exist yet and maps to zero, not an error.
func (c *NpmClient) Downloads(ctx context.Context, pkg, date string) (int, error) {
	requestURL := fmt.Sprintf("%s/downloads/point/%s/%s", c.baseURL, date, url.PathEscape(pkg))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create npm request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch npm downloads for %s: %w", pkg, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("npm api error %d for %s", resp.StatusCode, pkg)
	}

	var result struct {
		Downloads int `json:"downloads"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to parse npm response for %s: %w", pkg, err)
	}
	return result.Downloads, nil
}
