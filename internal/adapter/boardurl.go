package adapter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrNoBoardToken is returned for board URLs whose path has no first segment.
var ErrNoBoardToken = errors.New("no board token in url")

// BoardRef is what a board URL tells us: the token and any department ids
// given as departments[] query parameters.
type BoardRef struct {
	Token string
	// Departments holds the query values; entries that are not integers
	// are kept as strings so the filter can report them.
	Departments []any
}

// ParseBoardURL extracts the board token from the first path segment, e.g.
// https://job-boards.greenhouse.io/acme/jobs/123 → "acme". Embedded boards
// (/embed/job_board?for=acme) use the "for" parameter.
func ParseBoardURL(raw string) (BoardRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return BoardRef{}, fmt.Errorf("parse board url %q: %w", raw, err)
	}

	segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	token := segments[0]
	if token == "embed" {
		token = u.Query().Get("for")
	}
	if token == "" {
		return BoardRef{}, fmt.Errorf("%w: %q", ErrNoBoardToken, raw)
	}

	ref := BoardRef{Token: token}
	q := u.Query()
	for _, key := range []string{"departments[]", "departments"} {
		for _, v := range q[key] {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				ref.Departments = append(ref.Departments, n)
			} else {
				ref.Departments = append(ref.Departments, v)
			}
		}
	}
	return ref, nil
}
