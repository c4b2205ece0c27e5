// Package backend is the HTTP client for the OctoFit REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/observability"
)

// Resource names, used both as URL segments and metric labels.
const (
	ResourceUsers       = "users"
	ResourceTeams       = "teams"
	ResourceActivities  = "activities"
	ResourceLeaderboard = "leaderboard"
	ResourceWorkouts    = "workouts"
)

// Client issues requests against the REST API root, e.g. http://localhost:8000/api.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client. A zero timeout leaves requests unbounded
// except by their context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListUsers fetches GET /users/.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	return list[domain.User](ctx, c, ResourceUsers)
}

// ListTeams fetches GET /teams/.
func (c *Client) ListTeams(ctx context.Context) ([]domain.Team, error) {
	return list[domain.Team](ctx, c, ResourceTeams)
}

// ListActivities fetches GET /activities/.
func (c *Client) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	return list[domain.Activity](ctx, c, ResourceActivities)
}

// ListLeaderboard fetches GET /leaderboard/. Entries keep the server's rank order.
func (c *Client) ListLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	return list[domain.LeaderboardEntry](ctx, c, ResourceLeaderboard)
}

// ListWorkouts fetches GET /workouts/.
func (c *Client) ListWorkouts(ctx context.Context) ([]domain.Workout, error) {
	return list[domain.Workout](ctx, c, ResourceWorkouts)
}

// UpdateUser replaces name, email and team of the user via PUT /users/{id}/.
func (c *Client) UpdateUser(ctx context.Context, id domain.ID, update domain.UserUpdate) (*domain.User, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/%s/", c.baseURL, ResourceUsers, url.PathEscape(id.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var updated domain.User
	if err := c.do(req, ResourceUsers, "Failed to update user", &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func list[T any](ctx context.Context, c *Client, resource string) ([]T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/", c.baseURL, resource), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var out []T
	if err := c.do(req, resource, "Failed to fetch "+resource, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(req *http.Request, resource, fallback string, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordBackendRequest(resource, req.Method, observability.OutcomeError, time.Since(start))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.RecordBackendRequest(resource, req.Method, observability.OutcomeFailure, time.Since(start))
		return &APIError{
			Op:       req.Method + " " + resource,
			Status:   resp.StatusCode,
			Detail:   readDetail(resp.Body),
			Fallback: fallback,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		observability.RecordBackendRequest(resource, req.Method, observability.OutcomeFailure, time.Since(start))
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	observability.RecordBackendRequest(resource, req.Method, observability.OutcomeSuccess, time.Since(start))
	return nil
}

// readDetail extracts the "detail" message DRF-style error bodies carry.
func readDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Detail)
}

// APIError represents a non-successful REST API response.
type APIError struct {
	Op       string
	Status   int
	Detail   string
	Fallback string
}

// Error returns the server-supplied detail, or the generic message for the operation.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Fallback != "" {
		return e.Fallback
	}
	return fmt.Sprintf("%s failed with status %d", e.Op, e.Status)
}
