package utils

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/to-do-list-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// ErrInvalidPage is returned for a page query value that is not a positive integer
var ErrInvalidPage = errors.New("invalid page")

// NewPaginationParams normalizes a page number and page size. A missing or
// non-positive limit becomes defaultLimit; limits are capped at MaxPageSize.
func NewPaginationParams(page, limit, defaultLimit int) PaginationParams {
	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize {
		limit = normalizeLimit(defaultLimit)
	}
	limit = normalizeLimit(limit)

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// GetPaginationParams extracts and validates pagination parameters from the request.
// An unparsable page_size falls back to defaultLimit; an unparsable page is an error.
func GetPaginationParams(c *gin.Context, defaultLimit int) (PaginationParams, error) {
	page := constants.MinPageSize
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < constants.MinPageSize {
			return PaginationParams{}, ErrInvalidPage
		}
		page = parsed
	}

	limit, err := strconv.Atoi(c.Query("page_size"))
	if err != nil {
		limit = defaultLimit
	}

	return NewPaginationParams(page, limit, defaultLimit), nil
}

func normalizeLimit(limit int) int {
	switch {
	case limit < constants.MinPageSize:
		return constants.DefaultPageSize
	case limit > constants.MaxPageSize:
		return constants.MaxPageSize
	}
	return limit
}

// TotalPages returns how many pages of size limit hold total items
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return pages
}

// PageURL returns u with its page query parameter replaced.
// Page 1 drops the parameter altogether.
func PageURL(u *url.URL, page int) string {
	next := *u
	query := next.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	next.RawQuery = query.Encode()
	return next.String()
}

// RequestURL rebuilds the absolute URL of the current request
func RequestURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}

	return &url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
	}
}
