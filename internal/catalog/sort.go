package catalog

import (
	"fmt"
	"sort"
	"strings"

	"coursecatalog/internal/model"
)

// Sort names an ordering of the course list.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortOldest    Sort = "oldest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortTitleAsc  Sort = "title_asc"
	SortTitleDesc Sort = "title_desc"
)

var sorts = []Sort{SortNewest, SortOldest, SortPriceAsc, SortPriceDesc, SortTitleAsc, SortTitleDesc}

// ParseSort accepts any of the Sort names; the empty string means SortNewest.
func ParseSort(s string) (Sort, error) {
	if s == "" {
		return SortNewest, nil
	}
	for _, known := range sorts {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown sort %q", s)
}

func (s Sort) less() func(a, b model.Course) bool {
	switch s {
	case SortOldest:
		return func(a, b model.Course) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortPriceAsc:
		return func(a, b model.Course) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		return func(a, b model.Course) bool { return a.Price.GreaterThan(b.Price) }
	case SortTitleAsc:
		return func(a, b model.Course) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case SortTitleDesc:
		return func(a, b model.Course) bool { return strings.ToLower(a.Title) > strings.ToLower(b.Title) }
	default:
		return func(a, b model.Course) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
}

func (s Sort) apply(courses []model.Course) {
	less := s.less()
	sort.SliceStable(courses, func(i, j int) bool { return less(courses[i], courses[j]) })
}
