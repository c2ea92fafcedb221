package listing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/propdesk/propdesk/internal/core/property"
	"github.com/propdesk/propdesk/internal/core/validation"
)

const DefaultPerPage = 10

var PerPageOptions = []int{10, 20, 50, 100}

type Field string

const (
	FieldCity         Field = "city"
	FieldStatus       Field = "status"
	FieldPropertyType Field = "property_type"
	FieldMinPrice     Field = "min_price"
	FieldMaxPrice     Field = "max_price"
)

// FilterQuery selects one page of listings.
type FilterQuery struct {
	City         string   `json:"city"`
	Status       string   `json:"status"`
	PropertyType string   `json:"property_type"`
	MinPrice     *float64 `json:"min_price"`
	MaxPrice     *float64 `json:"max_price"`
	Page         int      `json:"page"`
	PerPage      int      `json:"per_page"`
}

func NewFilterQuery() FilterQuery {
	return FilterQuery{Page: 1, PerPage: DefaultPerPage}
}

// Key identifies the query for caching and staleness checks.
type Key string

// Values encodes the query as the API's query string parameters. Empty
// filters are left out.
func (q FilterQuery) Values() url.Values {
	v := url.Values{}
	if q.City != "" {
		v.Set("city", q.City)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.PropertyType != "" {
		v.Set("property_type", q.PropertyType)
	}
	if q.MinPrice != nil {
		v.Set("min_price", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("max_price", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	v.Set("per_page", strconv.Itoa(q.PerPage))
	v.Set("page", strconv.Itoa(q.Page))
	return v
}

// Key is a pure function of every field; url.Values.Encode sorts by name.
func (q FilterQuery) Key() Key {
	return Key(q.Values().Encode())
}

// withFilters copies the filter fields of src, keeping paging.
func (q FilterQuery) withFilters(src FilterQuery) FilterQuery {
	q.City = src.City
	q.Status = src.Status
	q.PropertyType = src.PropertyType
	q.MinPrice = src.MinPrice
	q.MaxPrice = src.MaxPrice
	return q
}

// sameFilters reports whether a and b differ at most in paging.
func sameFilters(a, b FilterQuery) bool {
	return a.withFilters(b).Key() == a.Key()
}

func (q *FilterQuery) set(field Field, value string) error {
	value = strings.TrimSpace(value)
	switch field {
	case FieldCity:
		q.City = value
	case FieldStatus:
		if !property.ValidStatus(value) {
			return validation.Field(string(field), "Unknown status")
		}
		q.Status = value
	case FieldPropertyType:
		if !property.ValidType(value) {
			return validation.Field(string(field), "Unknown property type")
		}
		q.PropertyType = value
	case FieldMinPrice, FieldMaxPrice:
		price, err := parsePrice(value)
		if err != nil {
			return validation.Field(string(field), "Price must be a non-negative number")
		}
		if field == FieldMinPrice {
			q.MinPrice = price
		} else {
			q.MaxPrice = price
		}
	default:
		return validation.Field(string(field), "Unknown filter")
	}
	return nil
}

func parsePrice(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if f < 0 {
		return nil, strconv.ErrRange
	}
	return &f, nil
}

func ValidPerPage(n int) bool {
	for _, o := range PerPageOptions {
		if o == n {
			return true
		}
	}
	return false
}

// TotalPages is ceil(total/perPage), never less than 1.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
