// Package catalog narrows and orders a course list that has already been
// fetched from the server. Nothing here touches the network except Client.
package catalog

import (
	"strings"

	"coursecatalog/internal/model"

	"github.com/shopspring/decimal"
)

// Filter selects courses. Zero-valued fields do not constrain the result.
type Filter struct {
	// Search matches title or description, case-insensitively.
	Search string
	// Paid, when set, must equal the course's is_paid flag.
	Paid *bool
	// MinPrice and MaxPrice are inclusive bounds.
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	// Topics must all be present on the course.
	Topics []string
}

// Match reports whether c satisfies every set criterion.
func (f Filter) Match(c model.Course) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(c.Title), q) &&
			!strings.Contains(strings.ToLower(c.Description), q) {
			return false
		}
	}
	if f.Paid != nil && c.IsPaid != *f.Paid {
		return false
	}
	if f.MinPrice != nil && c.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && c.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	for _, want := range f.Topics {
		want = strings.TrimSpace(want)
		if want == "" {
			continue
		}
		if !hasTopic(c.Topics, want) {
			return false
		}
	}
	return true
}

func hasTopic(topics []string, want string) bool {
	for _, t := range topics {
		if strings.EqualFold(strings.TrimSpace(t), want) {
			return true
		}
	}
	return false
}

// Apply returns the courses matching f, ordered by s. The input is not modified.
func Apply(courses []model.Course, f Filter, s Sort) []model.Course {
	out := make([]model.Course, 0, len(courses))
	for _, c := range courses {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	s.apply(out)
	return out
}
