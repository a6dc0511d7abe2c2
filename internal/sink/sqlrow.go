package sink

import (
	"encoding/json"
	"fmt"

	"github.com/amishk599/ghboard/internal/model"
)

// recordColumns is the column order shared by the SQL sinks.
var recordColumns = []string{
	"company", "id", "title", "type", "description",
	"location", "locations", "is_remote", "is_hybrid", "salary",
	"department", "departments", "metadata",
	"posting_url", "apply_url", "published_at", "run_id",
}

// recordRow flattens rec into recordColumns order. Slices, maps and the
// salary are stored as JSON text.
func recordRow(rec model.Record, runID string) ([]any, error) {
	locations, err := json.Marshal(rec.Locations)
	if err != nil {
		return nil, fmt.Errorf("marshal locations: %w", err)
	}
	departments, err := json.Marshal(rec.Departments)
	if err != nil {
		return nil, fmt.Errorf("marshal departments: %w", err)
	}
	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	var salary any
	if rec.Salary != nil {
		b, err := json.Marshal(rec.Salary)
		if err != nil {
			return nil, fmt.Errorf("marshal salary: %w", err)
		}
		salary = string(b)
	}

	var typ any
	if rec.Type != nil {
		typ = *rec.Type
	}

	return []any{
		rec.Company, rec.ID, rec.Title, typ, rec.Description,
		rec.Location, string(locations), rec.IsRemote, rec.IsHybrid, salary,
		rec.Department, string(departments), string(metadata),
		rec.PostingURL, rec.ApplyURL, rec.PublishedAt, runID,
	}, nil
}
