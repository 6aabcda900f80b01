package listing

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"travelagency/pkg/apperr"
)

const dateLayout = "2006-01-02"

// ParseQuery reads the shared list parameters: status, paymentStatus,
// category, from, to, q, sort, order, page and limit.
func ParseQuery(q url.Values) (Criteria, SortSpec, Page, error) {
	c := Criteria{
		Status:        q.Get("status"),
		PaymentStatus: q.Get("paymentStatus"),
		Category:      q.Get("category"),
		Search:        q.Get("q"),
	}

	var err error
	if c.From, err = parseDate(q, "from"); err != nil {
		return Criteria{}, SortSpec{}, Page{}, err
	}
	if c.To, err = parseDate(q, "to"); err != nil {
		return Criteria{}, SortSpec{}, Page{}, err
	}

	s := SortSpec{Key: q.Get("sort")}
	switch strings.ToLower(strings.TrimSpace(q.Get("order"))) {
	case "", "asc":
	case "desc":
		s.Desc = true
	default:
		return Criteria{}, SortSpec{}, Page{}, apperr.Invalid("order", q.Get("order"), "order must be asc or desc")
	}

	var p Page
	if p.Page, err = parseInt(q, "page"); err != nil {
		return Criteria{}, SortSpec{}, Page{}, err
	}
	if p.Page > MaxPage {
		return Criteria{}, SortSpec{}, Page{}, apperr.Invalid("page", q.Get("page"), "page must be at most "+strconv.Itoa(MaxPage))
	}
	if p.Limit, err = parseInt(q, "limit"); err != nil {
		return Criteria{}, SortSpec{}, Page{}, err
	}

	return c, s, p, nil
}

func parseDate(q url.Values, key string) (*time.Time, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, apperr.Invalid(key, v, key+" must be a YYYY-MM-DD date")
	}
	return &t, nil
}

func parseInt(q url.Values, key string) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperr.Invalid(key, v, key+" must be a non-negative integer")
	}
	return n, nil
}
