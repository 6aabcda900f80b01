package listing

import (
	"slices"
	"strings"

	"travelagency/pkg/apperr"
)

type SortSpec struct {
	Key  string
	Desc bool
}

// Keys maps a sort key name to a three-way comparison.
type Keys[T any] map[string]func(a, b T) int

// Sort returns a sorted copy. Ties keep the original collection order in
// both directions.
func Sort[T any](items []T, spec SortSpec, keys Keys[T]) ([]T, error) {
	out := slices.Clone(items)
	key := strings.ToLower(strings.TrimSpace(spec.Key))
	if key == "" {
		return out, nil
	}
	cmp, ok := keys[key]
	if !ok {
		return nil, apperr.Invalid("sort", spec.Key, "unknown sort key: "+spec.Key)
	}
	if spec.Desc {
		slices.SortStableFunc(out, func(a, b T) int { return cmp(b, a) })
	} else {
		slices.SortStableFunc(out, cmp)
	}
	return out, nil
}

type Page struct {
	Page  int
	Limit int
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
	MaxPage      = 1_000_000
)

// Paginate returns one page and the total count before paging.
func Paginate[T any](items []T, p Page) ([]T, int) {
	total := len(items)
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	// Compare page counts before multiplying so a huge page cannot overflow.
	if page-1 >= (total+limit-1)/limit {
		return []T{}, total
	}
	start := (page - 1) * limit
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], total
}
