// Read-only client for the Supabase REST (PostgREST) endpoint in front of the snapshot table
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const snapshotsPath = "/rest/v1/playlist_snapshots"

// RESTClient lists stored snapshots through PostgREST without a database connection.
type RESTClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewRESTClient creates a client for cfg.ProjectURL. A RateLimit of zero or less disables throttling.
func NewRESTClient(cfg shared.RESTConfig, client *http.Client) (*RESTClient, error) {
	if cfg.ProjectURL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set SUPABASE_PROJECT_URL and SUPABASE_API_KEY", shared.ErrMissingCredentials)
	}
	if client == nil {
		client = http.DefaultClient
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &RESTClient{
		baseURL:    strings.TrimRight(cfg.ProjectURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

// ListSnapshots returns name, usage and update time for every stored snapshot, newest first.
func (c *RESTClient) ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error) {
	q := url.Values{}
	q.Set("select", "name,usage,updated_at")
	q.Set("order", "updated_at.desc")

	body, err := c.get(ctx, snapshotsPath+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var infos []models.SnapshotInfo
	if err := json.Unmarshal(body, &infos); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot list: %w", err)
	}
	return infos, nil
}

func (c *RESTClient) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
