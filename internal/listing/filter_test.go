package listing

import (
	"net/url"
	"testing"
	"time"

	"travelagency/pkg/apperr"
)

type rec struct {
	ID       string
	Status   string
	Category string
	Date     time.Time
	Country  string
	Title    string
	Price    int
	Rating   float64
}

var recFields = Fields[rec]{
	Status:   func(r rec) string { return r.Status },
	Category: func(r rec) string { return r.Category },
	Date:     func(r rec) time.Time { return r.Date },
	Text:     func(r rec) []string { return []string{r.Country, r.Title} },
}

func day(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func ptr(t time.Time) *time.Time { return &t }

var recs = []rec{
	{ID: "1", Status: "PENDING", Category: "adventure", Date: day("2025-01-10"), Country: "Nepal", Title: "Everest Base Camp", Price: 1200, Rating: 4.8},
	{ID: "2", Status: "CONFIRMED", Category: "beach", Date: day("2025-02-01"), Country: "Maldives", Title: "Island Escape", Price: 2000, Rating: 4.8},
	{ID: "3", Status: "PENDING", Category: "beach", Date: day("2025-02-15"), Country: "Thailand", Title: "Phuket Getaway", Price: 900, Rating: 4.1},
	{ID: "4", Status: "CANCELLED", Category: "city", Date: day("2025-03-01"), Country: "France", Title: "Paris Lights", Price: 1500, Rating: 4.5},
	{ID: "5", Status: "COMPLETED", Category: "adventure", Date: day("2025-03-20"), Country: "Peru", Title: "Inca Trail", Price: 1200, Rating: 4.9},
}

func ids(rs []rec) string {
	s := ""
	for _, r := range rs {
		s += r.ID
	}
	return s
}

func TestFilter_EachCombinationIsIntersection(t *testing.T) {
	statuses := []string{"", "all", "pending", "CONFIRMED", "SHIPPED"}
	categories := []string{"", "ALL", "beach", "adventure"}
	searches := []string{"", "PARIS", "an", "zzz"}
	ranges := [][2]*time.Time{
		{nil, nil},
		{ptr(day("2025-02-01")), nil},
		{nil, ptr(day("2025-02-15"))},
		{ptr(day("2025-02-01")), ptr(day("2025-03-01"))},
	}

	for _, st := range statuses {
		for _, cat := range categories {
			for _, q := range searches {
				for _, rg := range ranges {
					c := Criteria{Status: st, Category: cat, Search: q, From: rg[0], To: rg[1]}
					got := Filter(recs, c, recFields)

					var want []rec
					for _, r := range recs {
						ok := Matches(r, Criteria{Status: st}, recFields) &&
							Matches(r, Criteria{Category: cat}, recFields) &&
							Matches(r, Criteria{Search: q}, recFields) &&
							Matches(r, Criteria{From: rg[0], To: rg[1]}, recFields)
						if ok {
							want = append(want, r)
						}
					}
					if ids(got) != ids(want) {
						t.Fatalf("criteria %+v: expected %q, got %q", c, ids(want), ids(got))
					}
				}
			}
		}
	}
}

func TestFilter_AllEqualsOmitted(t *testing.T) {
	omitted := Filter(recs, Criteria{Category: "beach"}, recFields)
	all := Filter(recs, Criteria{Category: "beach", Status: "all"}, recFields)
	if ids(omitted) != ids(all) {
		t.Fatalf("expected all to be a no-op, got %q vs %q", ids(all), ids(omitted))
	}
	if ids(Filter(recs, Criteria{}, recFields)) != "12345" {
		t.Fatalf("expected empty criteria to keep everything")
	}
}

func TestFilter_TextSearchIsCaseInsensitiveSubstring(t *testing.T) {
	got := Filter(recs, Criteria{Search: "tHaI"}, recFields)
	if ids(got) != "3" {
		t.Fatalf("expected 3, got %q", ids(got))
	}
	got = Filter(recs, Criteria{Search: "trail"}, recFields)
	if ids(got) != "5" {
		t.Fatalf("expected 5, got %q", ids(got))
	}
}

func TestFilter_DateRangeInclusive(t *testing.T) {
	c := Criteria{From: ptr(day("2025-02-01")), To: ptr(day("2025-03-01"))}
	if got := ids(Filter(recs, c, recFields)); got != "234" {
		t.Fatalf("expected 234, got %q", got)
	}
	// A timestamp late on the last day is still in range.
	late := rec{ID: "6", Date: day("2025-03-01").Add(23 * time.Hour)}
	if !Matches(late, c, recFields) {
		t.Fatalf("expected end day to be inclusive")
	}
}

func TestFilter_MissingAccessorSkipsPredicate(t *testing.T) {
	f := Fields[rec]{Text: recFields.Text}
	if got := ids(Filter(recs, Criteria{Status: "PENDING"}, f)); got != "12345" {
		t.Fatalf("expected status predicate to be skipped, got %q", got)
	}
}

func TestParseQuery(t *testing.T) {
	q := url.Values{}
	q.Set("status", "PENDING")
	q.Set("from", "2025-01-01")
	q.Set("sort", "price")
	q.Set("order", "desc")
	q.Set("page", "2")
	q.Set("limit", "5")

	c, s, p, err := ParseQuery(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != "PENDING" || c.From == nil || c.To != nil {
		t.Fatalf("unexpected criteria %+v", c)
	}
	if s.Key != "price" || !s.Desc {
		t.Fatalf("unexpected sort %+v", s)
	}
	if p.Page != 2 || p.Limit != 5 {
		t.Fatalf("unexpected page %+v", p)
	}
}

func TestParseQuery_MalformedDate(t *testing.T) {
	q := url.Values{}
	q.Set("to", "01/02/2025")
	if _, _, _, err := ParseQuery(q); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestParseQuery_PageOutOfRange(t *testing.T) {
	q := url.Values{}
	q.Set("page", "9223372036854775807")
	_, _, _, err := ParseQuery(q)
	ve, ok := err.(*apperr.ValidationError)
	if !ok || ve.Field != "page" {
		t.Fatalf("expected page validation error, got %v", err)
	}
}
