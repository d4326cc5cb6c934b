package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PackageInfo is the registry metadata consumed by the scorer.
type PackageInfo struct {
	Name               string            `json:"name"`
	Updated            time.Time         `json:"updated"`
	Popularity         *float64          `json:"popularity"` // 0..1
	Likes              int               `json:"likes"`
	Documentation      any               `json:"documentation"`
	Example            any               `json:"example"`
	License            string            `json:"license"`
	SecurityAdvisories []json.RawMessage `json:"security_advisories"`
}

// Registry looks up package metadata.
type Registry interface {
	Fetch(ctx context.Context, name string) (*PackageInfo, error)
}

// HTTPRegistry queries a package registry over HTTP at
// {BaseURL}/api/packages/{name}/health.
type HTTPRegistry struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPRegistry creates a registry client whose requests time out after
// timeout.
func NewHTTPRegistry(baseURL string, timeout time.Duration) *HTTPRegistry {
	return &HTTPRegistry{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves metadata for one package. Non-2xx responses are errors.
func (r *HTTPRegistry) Fetch(ctx context.Context, name string) (*PackageInfo, error) {
	endpoint := fmt.Sprintf("%s/api/packages/%s/health", r.BaseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query registry for %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("registry returned %d for %s", resp.StatusCode, name)
	}

	var info PackageInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode registry response for %s: %w", name, err)
	}
	if info.Name == "" {
		info.Name = name
	}
	return &info, nil
}

// Ping reports whether the registry answers at all. Any response below 500
// counts as reachable.
func (r *HTTPRegistry) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", r.BaseURL, err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("registry %s unreachable: %w", r.BaseURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("registry %s returned %d", r.BaseURL, resp.StatusCode)
	}
	return nil
}

// advisorySummary renders an advisory entry, which the registry sends
// either as a plain string or as an object with id/summary fields.
func advisorySummary(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		ID      string `json:"id"`
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		switch {
		case obj.ID != "" && obj.Summary != "":
			return obj.ID + ": " + obj.Summary
		case obj.Summary != "":
			return obj.Summary
		case obj.ID != "":
			return obj.ID
		}
	}
	return strings.TrimSpace(string(raw))
}

// present reports whether a documentation/example field carries a value.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case bool:
		return t
	default:
		return true
	}
}
