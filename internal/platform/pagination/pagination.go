// Package pagination turns the gateway's from/size parameters into store offsets.
package pagination

import (
	"strconv"

	"github.com/shareit/service-booking/internal/platform/apperror"
)

const errIncorrectValue = "Incorrect value"

// Page is an offset/limit window over an ordered result set.
type Page struct {
	Offset int
	Limit  int
}

// New builds a page from the optional from/size pair. When either value is absent
// the result is unpaged (nil). The window starts at the page containing from, so
// from=5,size=2 yields offset 4.
func New(from, size *int) (*Page, error) {
	if from == nil || size == nil {
		return nil, nil
	}
	if *from < 0 || *size <= 0 {
		return nil, apperror.NewValidationError(errIncorrectValue)
	}
	index := *from / *size
	return &Page{Offset: index * *size, Limit: *size}, nil
}

// Parse is New over raw query-string values; an empty string means absent.
func Parse(rawFrom, rawSize string) (*Page, error) {
	from, err := parseOptional(rawFrom)
	if err != nil {
		return nil, err
	}
	size, err := parseOptional(rawSize)
	if err != nil {
		return nil, err
	}
	return New(from, size)
}

func parseOptional(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperror.NewValidationError(errIncorrectValue)
	}
	return &n, nil
}
