package httputil

import (
	"fmt"
	"strconv"
)

const (
	// DefaultLimit is the page size used when no limit is given.
	DefaultLimit = 50
	// MaxLimit is the largest accepted page size.
	MaxLimit = 1000
)

// Page is a validated offset/limit window.
type Page struct {
	Offset int
	Limit  int
}

// ParsePage validates raw offset and limit values as read from a query string
// or an API Gateway event. Empty values default to 0 and DefaultLimit.
func ParsePage(offset, limit string) (Page, error) {
	page := Page{Offset: 0, Limit: DefaultLimit}

	if offset != "" {
		value, err := strconv.Atoi(offset)
		if err != nil || value < 0 {
			return Page{}, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
		}
		page.Offset = value
	}

	if limit != "" {
		value, err := strconv.Atoi(limit)
		if err != nil || value < 1 || value > MaxLimit {
			return Page{}, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxLimit)
		}
		page.Limit = value
	}

	return page, nil
}
