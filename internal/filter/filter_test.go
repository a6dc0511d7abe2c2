package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ts(t time.Time) string { return t.Format(time.RFC3339) }

func TestSanitize_ZeroOptionsFilterNothing(t *testing.T) {
	rc, warnings := Sanitize(Options{}, now)
	assert.Empty(t, warnings)
	assert.True(t, rc.IncludesDepartment(42))
	assert.True(t, rc.IsRecent(ts(now.AddDate(-5, 0, 0))))
	assert.False(t, rc.CapReached(1_000_000))
	_, ok := rc.Cutoff()
	assert.False(t, ok)
}

func TestDepartments(t *testing.T) {
	rc, warnings := Sanitize(Options{Departments: []any{1, 2}}, now)
	require.Empty(t, warnings)
	assert.True(t, rc.IncludesDepartment(1))
	assert.False(t, rc.IncludesDepartment(3))
	assert.Equal(t, []int64{1, 2}, rc.DepartmentIDs())

	rc, warnings = Sanitize(Options{Departments: []any{}}, now)
	assert.Empty(t, warnings)
	assert.True(t, rc.IncludesDepartment(1))
	assert.True(t, rc.IncludesDepartment(3))
}

func TestDepartments_InvalidEntriesSkipped(t *testing.T) {
	rc, warnings := Sanitize(Options{Departments: []any{5, "abc", -1, 2.5, 7.0}}, now)
	assert.Equal(t, []int64{5, 7}, rc.DepartmentIDs())
	require.Len(t, warnings, 3)
	for _, w := range warnings {
		assert.Equal(t, "departments", w.Option)
	}
}

func TestDepartments_AllInvalidReportedDistinctly(t *testing.T) {
	rc, warnings := Sanitize(Options{Departments: []any{0, "x"}}, now)
	assert.Nil(t, rc.DepartmentIDs())
	assert.True(t, rc.IncludesDepartment(99))
	require.Len(t, warnings, 3)
	assert.Equal(t, "no valid department ids; not filtering", warnings[2].Reason)
}

func TestDepartments_NotAList(t *testing.T) {
	rc, warnings := Sanitize(Options{Departments: "59798"}, now)
	require.Len(t, warnings, 1)
	assert.True(t, rc.IncludesDepartment(1))
}

func TestDaysBack(t *testing.T) {
	rc, warnings := Sanitize(Options{DaysBack: 7}, now)
	require.Empty(t, warnings)

	cutoff, ok := rc.Cutoff()
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -7), cutoff)

	assert.False(t, rc.IsRecent(ts(now.AddDate(0, 0, -10))), "10 days old should be excluded")
	assert.True(t, rc.IsRecent(ts(now.AddDate(0, 0, -3))), "3 days old should be included")
	assert.True(t, rc.IsRecent(ts(cutoff)), "exactly at cutoff is not strictly earlier")
	assert.True(t, rc.IsRecent("not a timestamp"))
}

func TestDaysBack_InvalidDisablesFilter(t *testing.T) {
	for _, v := range []any{-1, 0, 1.5, "7"} {
		rc, warnings := Sanitize(Options{DaysBack: v}, now)
		require.Len(t, warnings, 1, "days_back=%v", v)
		assert.Equal(t, "days_back", warnings[0].Option)
		assert.Equal(t, v, warnings[0].Value)
		assert.True(t, rc.IsRecent(ts(now.AddDate(-1, 0, 0))), "days_back=%v should pass old jobs", v)
	}
}

func TestMaxJobs(t *testing.T) {
	rc, warnings := Sanitize(Options{MaxJobs: 2}, now)
	require.Empty(t, warnings)
	assert.Equal(t, 2, rc.MaxJobs())
	assert.False(t, rc.CapReached(1))
	assert.True(t, rc.CapReached(2))

	rc, warnings = Sanitize(Options{MaxJobs: 0}, now)
	assert.Empty(t, warnings)
	assert.False(t, rc.CapReached(500))

	rc, warnings = Sanitize(Options{MaxJobs: float64(3)}, now)
	assert.Empty(t, warnings)
	assert.Equal(t, 3, rc.MaxJobs())
}

func TestMaxJobs_InvalidDisablesCap(t *testing.T) {
	for _, v := range []any{-1, 2.5, "ten"} {
		rc, warnings := Sanitize(Options{MaxJobs: v}, now)
		require.Len(t, warnings, 1, "max_jobs=%v", v)
		assert.Equal(t, "max_jobs", warnings[0].Option)
		assert.False(t, rc.CapReached(1000))
	}
}

func TestMerge(t *testing.T) {
	base := Options{Departments: []any{1}, MaxJobs: 10, DaysBack: 30}
	got := Merge(base, Options{MaxJobs: 5})
	assert.Equal(t, Options{Departments: []any{1}, MaxJobs: 5, DaysBack: 30}, got)

	got = Merge(base, Options{})
	assert.Equal(t, base, got)
}
