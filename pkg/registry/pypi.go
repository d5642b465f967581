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

// PyPIClient fetches daily download counts from the pypistats API
type PyPIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewPyPIClient creates a pypistats downloads client
func NewPyPIClient(cfg *config.RegistryConfig) *PyPIClient {
	baseURL := cfg.PyPIBaseURL
	if baseURL == "" {
		baseURL = "https://pypistats.org"
	}

	return &PyPIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Downloads returns the with_mirrors download count for one package on one
// day. 404 maps to zero, not an error.
func (c *PyPIClient) Downloads(ctx context.Context, pkg, date string) (int, error) {
	requestURL := fmt.Sprintf("%s/api/packages/%s/overall?start_date=%s&end_date=%s&mirrors=true",
		c.baseURL, url.PathEscape(pkg), date, date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create pypistats request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pypi downloads for %s: %w", pkg, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("pypistats api error %d for %s", resp.StatusCode, pkg)
	}

	var result struct {
		Data []struct {
			Category  string `json:"category"`
			Date      string `json:"date"`
			Downloads int    `json:"downloads"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to parse pypistats response for %s: %w", pkg, err)
	}

	for _, row := range result.Data {
		if row.Category == "with_mirrors" && row.Date == date {
			return row.Downloads, nil
		}
	}
	return 0, nil
}
