package model

import "context"

// Department is one entry of the Greenhouse departments listing.
type Department struct {
	ID   int64        `json:"id"`
	Name string       `json:"name"`
	Jobs []JobSummary `json:"jobs"`
}

// DepartmentsResponse is the top-level departments API response.
type DepartmentsResponse struct {
	Departments []Department `json:"departments"`
}

// JobSummary is a job as it appears inside a department listing.
// Content and Metadata are only present when the board inlines them.
type JobSummary struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Location    *JobLocation    `json:"location"`
	AbsoluteURL string          `json:"absolute_url"`
	UpdatedAt   string          `json:"updated_at"`
	Content     string          `json:"content,omitempty"`
	Metadata    []MetadataEntry `json:"metadata,omitempty"`
}

// JobLocation is the nested location object; name may be empty.
type JobLocation struct {
	Name string `json:"name"`
}

// LocationName returns the raw location string, or "" when absent.
func (j JobSummary) LocationName() string {
	if j.Location == nil {
		return ""
	}
	return j.Location.Name
}

// InlineDetail returns the content/metadata carried on the summary itself,
// or nil when the listing did not include any.
func (j JobSummary) InlineDetail() *JobDetail {
	if j.Content == "" && len(j.Metadata) == 0 {
		return nil
	}
	return &JobDetail{Content: j.Content, Metadata: j.Metadata}
}

// JobDetail is the per-job payload from the job detail endpoint.
type JobDetail struct {
	Content  string          `json:"content"`
	Metadata []MetadataEntry `json:"metadata"`
}

// MetadataEntry is a custom field attached to a job. ValueText is nil when
// the field has a non-text value.
type MetadataEntry struct {
	Name      string  `json:"name"`
	ValueText *string `json:"value_text"`
}

// BoardClient fetches listings and job details for a board token.
type BoardClient interface {
	ListDepartments(ctx context.Context, boardToken string) ([]Department, error)
	FetchJobDetail(ctx context.Context, boardToken string, jobID int64) (*JobDetail, error)
}

// Sink accepts normalized records one at a time. Implementations must be
// safe for concurrent use; boards may emit in parallel.
type Sink interface {
	Emit(ctx context.Context, rec Record) error
}
