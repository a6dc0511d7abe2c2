// Package filter turns user-supplied filter options into an immutable
// RunConfig and answers the per-department and per-job questions the board
// processor asks while walking a listing.
package filter

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Options are the raw, unvalidated filter values for one board, as decoded
// from config or flags. Any field may hold a value of the wrong type;
// Sanitize reports those as warnings instead of failing.
type Options struct {
	Departments any // list of department ids
	MaxJobs     any // non-negative integer, 0 = unlimited
	DaysBack    any // positive integer
}

// Merge returns base with every non-nil field of override applied on top.
func Merge(base, override Options) Options {
	out := base
	if override.Departments != nil {
		out.Departments = override.Departments
	}
	if override.MaxJobs != nil {
		out.MaxJobs = override.MaxJobs
	}
	if override.DaysBack != nil {
		out.DaysBack = override.DaysBack
	}
	return out
}

// Warning describes an option value that was ignored.
type Warning struct {
	Option string
	Value  any
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s=%v: %s", w.Option, w.Value, w.Reason)
}

// RunConfig is the validated, immutable filter state for one board run.
// The zero value filters nothing.
type RunConfig struct {
	departments []int64
	cutoff      time.Time
	hasCutoff   bool
	maxJobs     int
}

// Sanitize validates opts, computing the recency cutoff relative to now.
// Invalid values disable the corresponding filter and produce a Warning.
func Sanitize(opts Options, now time.Time) (RunConfig, []Warning) {
	var rc RunConfig
	var warnings []Warning

	if opts.MaxJobs != nil {
		n, ok := asInt(opts.MaxJobs)
		if ok && n >= 0 {
			rc.maxJobs = int(n)
		} else {
			warnings = append(warnings, Warning{
				Option: "max_jobs",
				Value:  opts.MaxJobs,
				Reason: "must be a non-negative integer; ignoring limit",
			})
		}
	}

	if opts.DaysBack != nil {
		n, ok := asInt(opts.DaysBack)
		if ok && n > 0 {
			rc.cutoff = now.AddDate(0, 0, -int(n))
			rc.hasCutoff = true
		} else {
			warnings = append(warnings, Warning{
				Option: "days_back",
				Value:  opts.DaysBack,
				Reason: "must be a positive integer; ignoring date filter",
			})
		}
	}

	ids, dw := sanitizeDepartments(opts.Departments)
	rc.departments = ids
	warnings = append(warnings, dw...)

	return rc, warnings
}

func sanitizeDepartments(raw any) ([]int64, []Warning) {
	if raw == nil {
		return nil, nil
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []int:
		for _, n := range v {
			items = append(items, n)
		}
	case []int64:
		for _, n := range v {
			items = append(items, n)
		}
	default:
		return nil, []Warning{{
			Option: "departments",
			Value:  raw,
			Reason: "must be a list of department ids; not filtering",
		}}
	}

	var ids []int64
	var warnings []Warning
	for _, item := range items {
		n, ok := asInt(item)
		if !ok || n <= 0 {
			warnings = append(warnings, Warning{
				Option: "departments",
				Value:  item,
				Reason: "department id must be an integer > 0; skipping",
			})
			continue
		}
		if !slices.Contains(ids, n) {
			ids = append(ids, n)
		}
	}

	if len(items) > 0 && len(ids) == 0 {
		warnings = append(warnings, Warning{
			Option: "departments",
			Value:  raw,
			Reason: "no valid department ids; not filtering",
		})
	}
	return ids, warnings
}

// asInt accepts integer types and integral floats (YAML and JSON decode
// whole numbers either way). Strings and fractional values are rejected.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// IncludesDepartment reports whether jobs of department id should be read.
// An empty filter includes every department.
func (rc RunConfig) IncludesDepartment(id int64) bool {
	return len(rc.departments) == 0 || slices.Contains(rc.departments, id)
}

// DepartmentIDs returns a copy of the department filter; nil means no filter.
func (rc RunConfig) DepartmentIDs() []int64 {
	return slices.Clone(rc.departments)
}

// Cutoff returns the recency cutoff, if one is active.
func (rc RunConfig) Cutoff() (time.Time, bool) {
	return rc.cutoff, rc.hasCutoff
}

// IsRecent reports whether a job updated at updatedAt passes the recency
// filter. Jobs strictly older than the cutoff fail; timestamps that cannot be
// parsed pass, since there is nothing to compare.
func (rc RunConfig) IsRecent(updatedAt string) bool {
	if !rc.hasCutoff {
		return true
	}
	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return true
	}
	return !t.Before(rc.cutoff)
}

// MaxJobs returns the accepted-job cap; 0 means unlimited.
func (rc RunConfig) MaxJobs() int {
	return rc.maxJobs
}

// CapReached reports whether accepted jobs have hit the cap.
func (rc RunConfig) CapReached(accepted int) bool {
	return rc.maxJobs > 0 && accepted >= rc.maxJobs
}
