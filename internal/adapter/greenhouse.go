package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amishk599/ghboard/internal/model"
)

// DefaultGreenhouseBaseURL is the public Greenhouse Job Board API root.
const DefaultGreenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

var _ model.BoardClient = (*GreenhouseClient)(nil)

// GreenhouseClient talks to the public Greenhouse boards API. It performs a
// single attempt per call; retries and rate limiting are layered on top.
type GreenhouseClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewGreenhouseClient creates a client for the boards API at baseURL
// (DefaultGreenhouseBaseURL when empty).
func NewGreenhouseClient(baseURL, userAgent string, client *http.Client) *GreenhouseClient {
	if baseURL == "" {
		baseURL = DefaultGreenhouseBaseURL
	}
	return &GreenhouseClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    client,
	}
}

// ListDepartments returns the board's departments, each with its jobs, in
// the order the API lists them.
func (c *GreenhouseClient) ListDepartments(ctx context.Context, boardToken string) ([]model.Department, error) {
	url := fmt.Sprintf("%s/%s/departments", c.baseURL, boardToken)

	var resp model.DepartmentsResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("greenhouse departments for %s: %w", boardToken, err)
	}
	return resp.Departments, nil
}

// FetchJobDetail returns the content and metadata of one job.
func (c *GreenhouseClient) FetchJobDetail(ctx context.Context, boardToken string, jobID int64) (*model.JobDetail, error) {
	url := fmt.Sprintf("%s/%s/jobs/%d", c.baseURL, boardToken, jobID)

	var detail model.JobDetail
	if err := c.getJSON(ctx, url, &detail); err != nil {
		return nil, fmt.Errorf("greenhouse job %d for %s: %w", jobID, boardToken, err)
	}
	return &detail, nil
}

func (c *GreenhouseClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
