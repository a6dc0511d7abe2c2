// Package normalize maps raw Greenhouse jobs onto the flat Record shape.
package normalize

import (
	"fmt"

	"github.com/amishk599/ghboard/internal/heuristics"
	"github.com/amishk599/ghboard/internal/model"
)

// DescriptionMode selects how job content is rendered into Record.Description.
type DescriptionMode string

const (
	DescriptionRaw  DescriptionMode = "raw"  // content exactly as the API returned it
	DescriptionHTML DescriptionMode = "html" // entity-decoded and sanitized markup
	DescriptionText DescriptionMode = "text" // plain text
)

// employmentTypeKey is the metadata field promoted to Record.Type.
const employmentTypeKey = "Employment Type"

// ParseDescriptionMode validates a configured mode; "" means raw.
func ParseDescriptionMode(s string) (DescriptionMode, error) {
	switch DescriptionMode(s) {
	case "", DescriptionRaw:
		return DescriptionRaw, nil
	case DescriptionHTML, DescriptionText:
		return DescriptionMode(s), nil
	default:
		return "", fmt.Errorf("unknown description mode %q (want raw, html or text)", s)
	}
}

// Normalizer builds Records. It holds no per-run state and is safe for
// concurrent use.
type Normalizer struct {
	description DescriptionMode
}

// New returns a Normalizer rendering descriptions with mode.
func New(mode DescriptionMode) *Normalizer {
	if mode == "" {
		mode = DescriptionRaw
	}
	return &Normalizer{description: mode}
}

// Normalize builds the record for one job of department departmentName on
// board boardToken. detail is nil when the detail fetch was skipped or
// failed; the record then carries an empty description and metadata, no
// type and no salary. Location-derived fields never depend on detail.
func (n *Normalizer) Normalize(boardToken, departmentName string, job model.JobSummary, detail *model.JobDetail) model.Record {
	location := job.LocationName()
	isRemote, isHybrid := heuristics.DetectRemoteHybrid(location)

	rec := model.Record{
		ID:          job.ID,
		Company:     boardToken,
		Title:       job.Title,
		Location:    location,
		Locations:   heuristics.SplitLocations(location),
		IsRemote:    isRemote,
		IsHybrid:    isHybrid,
		Department:  departmentName,
		Departments: []string{departmentName},
		Metadata:    map[string]string{},
		PostingURL:  job.AbsoluteURL,
		ApplyURL:    job.AbsoluteURL,
		PublishedAt: job.UpdatedAt,
	}

	if detail == nil {
		return rec
	}

	rec.Description = n.renderDescription(detail.Content)
	rec.Metadata = foldMetadata(detail.Metadata)
	if v, ok := rec.Metadata[employmentTypeKey]; ok {
		rec.Type = &v
	}
	rec.Salary = heuristics.ExtractSalary(heuristics.Unescape(detail.Content))
	return rec
}

func (n *Normalizer) renderDescription(content string) string {
	switch n.description {
	case DescriptionHTML:
		return heuristics.SanitizeHTML(content)
	case DescriptionText:
		return heuristics.PlainText(content)
	default:
		return content
	}
}

// foldMetadata keeps entries with a name and a non-empty text value.
// A later entry with the same name replaces an earlier one.
func foldMetadata(entries []model.MetadataEntry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Name == "" || e.ValueText == nil || *e.ValueText == "" {
			continue
		}
		out[e.Name] = *e.ValueText
	}
	return out
}
