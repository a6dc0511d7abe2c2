package model

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRecordKey(t *testing.T) {
	r := Record{ID: 4012345, Company: "acme"}
	if got := r.Key(); got != "acme:4012345" {
		t.Errorf("Key() = %q", got)
	}
}

func TestHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{404, false},
		{400, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tc := range tests {
		e := &HTTPError{StatusCode: tc.status}
		if e.Transient() != tc.transient {
			t.Errorf("HTTPError{%d}.Transient() = %v", tc.status, e.Transient())
		}
	}

	inner := errors.New("boom")
	e := &HTTPError{StatusCode: 502, Message: "502 Bad Gateway", RetryAfter: time.Second, Err: inner}
	if !errors.Is(e, inner) {
		t.Error("HTTPError should unwrap to its cause")
	}
	if !strings.Contains(e.Error(), "502 Bad Gateway") {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestInlineDetail(t *testing.T) {
	if (JobSummary{}).InlineDetail() != nil {
		t.Error("summary without content should have no inline detail")
	}
	d := JobSummary{Content: "body"}.InlineDetail()
	if d == nil || d.Content != "body" {
		t.Errorf("InlineDetail() = %+v", d)
	}
}

func TestSalaryRangeDisplay(t *testing.T) {
	got := SalaryRange{Min: 50000, Max: 70000, Currency: GBP}.Display()
	if !strings.HasPrefix(got, "£") || !strings.Contains(got, "–") {
		t.Errorf("Display() = %q", got)
	}
}

func TestRunID(t *testing.T) {
	if RunID(context.Background()) != "" {
		t.Error("expected empty run id")
	}
	ctx := WithRunID(context.Background(), "run-1")
	if RunID(ctx) != "run-1" {
		t.Errorf("RunID = %q", RunID(ctx))
	}
}
