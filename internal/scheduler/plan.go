package scheduler

import (
	"time"

	"github.com/amishk599/ghboard/internal/adapter"
	"github.com/amishk599/ghboard/internal/config"
	"github.com/amishk599/ghboard/internal/filter"
)

// Plan is what one configured URL resolves to before any request is made.
type Plan struct {
	URL        string
	BoardToken string
	Options    filter.Options // effective raw options after merging
	RunConfig  filter.RunConfig
	Warnings   []filter.Warning
}

// PlanBoard parses the board URL and merges its overrides over defaults.
// Department ids from the URL query apply only when neither the entry nor
// the defaults name any. The returned error wraps adapter.ErrNoBoardToken
// when the URL has no token.
func PlanBoard(b config.BoardConfig, defaults filter.Options, now time.Time) (Plan, error) {
	ref, err := adapter.ParseBoardURL(b.URL)
	if err != nil {
		return Plan{URL: b.URL}, err
	}

	opts := filter.Merge(defaults, b.Overrides)
	if isEmptyList(opts.Departments) && len(ref.Departments) > 0 {
		opts.Departments = ref.Departments
	}

	rc, warnings := filter.Sanitize(opts, now)
	return Plan{
		URL:        b.URL,
		BoardToken: ref.Token,
		Options:    opts,
		RunConfig:  rc,
		Warnings:   warnings,
	}, nil
}

func isEmptyList(v any) bool {
	switch l := v.(type) {
	case nil:
		return true
	case []any:
		return len(l) == 0
	case []int:
		return len(l) == 0
	case []int64:
		return len(l) == 0
	default:
		return false
	}
}
