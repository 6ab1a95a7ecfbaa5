// Package pagination implements the request/response contract shared by every
// collection-returning endpoint (accounts, onboardings).
//
// Requests carry page (1-indexed), limit, orderBy and orderDirection. Responses
// wrap the page in {data, metadata:{page, totalPages, limit}}. totalPages is
// never below 1, and a page past the end yields an empty data array while
// echoing the requested page number.
package pagination

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	dErrors "duediligence/pkg/domain-errors"
)

const (
	DefaultPage    = 1
	DefaultLimit   = 10
	MaxLimit       = 100
	DefaultOrderBy = "createdAt"
)

// Direction is the sort direction of a listing.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Request is a validated listing request.
type Request struct {
	Page           int
	Limit          int
	OrderBy        string
	OrderDirection Direction
}

// Default returns the request used when no query parameters are supplied.
func Default() Request {
	return Request{
		Page:           DefaultPage,
		Limit:          DefaultLimit,
		OrderBy:        DefaultOrderBy,
		OrderDirection: Desc,
	}
}

// Offset is the number of records skipped before this page. It saturates at
// math.MaxInt so an absurd page number still reads as "past the end".
func (r Request) Offset() int {
	if r.Page <= 1 || r.Limit <= 0 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.Limit {
		return math.MaxInt
	}
	return (r.Page - 1) * r.Limit
}

// FromQuery parses page, limit, orderBy and orderDirection. Missing values take
// their defaults; orderBy must be one of the allowed field names.
func FromQuery(q url.Values, allowedOrderBy ...string) (Request, error) {
	req := Default()

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return Request{}, dErrors.New(dErrors.CodeValidation, "page must be a positive integer")
		}
		req.Page = page
	}

	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxLimit {
			return Request{}, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and "+strconv.Itoa(MaxLimit))
		}
		req.Limit = limit
	}

	if raw := strings.TrimSpace(q.Get("orderBy")); raw != "" {
		if !contains(allowedOrderBy, raw) && raw != DefaultOrderBy {
			return Request{}, dErrors.New(dErrors.CodeValidation, "unsupported orderBy: "+raw)
		}
		req.OrderBy = raw
	}

	if raw := strings.TrimSpace(q.Get("orderDirection")); raw != "" {
		switch Direction(strings.ToLower(raw)) {
		case Asc:
			req.OrderDirection = Asc
		case Desc:
			req.OrderDirection = Desc
		default:
			return Request{}, dErrors.New(dErrors.CodeValidation, "orderDirection must be asc or desc")
		}
	}

	return req, nil
}

// Metadata describes the returned page.
type Metadata struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Limit      int `json:"limit"`
}

// Page is a single page of results.
type Page[T any] struct {
	Data     []T      `json:"data"`
	Metadata Metadata `json:"metadata"`
}

// TotalPages returns ceil(total/limit), with a floor of 1.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// NewPage assembles a response from one page of data and the total match count.
func NewPage[T any](req Request, data []T, total int) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data: data,
		Metadata: Metadata{
			Page:       req.Page,
			TotalPages: TotalPages(total, req.Limit),
			Limit:      req.Limit,
		},
	}
}

// Slice applies the request window to an already ordered, fully materialised
// result set. In-memory stores use it; SQL stores push LIMIT/OFFSET down instead.
func Slice[T any](req Request, all []T) []T {
	offset := req.Offset()
	if offset < 0 || offset >= len(all) {
		return []T{}
	}
	end := offset + min(req.Limit, len(all)-offset)
	out := make([]T, end-offset)
	copy(out, all[offset:end])
	return out
}

// Map converts the page's data while keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Data))
	for _, v := range p.Data {
		out = append(out, fn(v))
	}
	return Page[U]{Data: out, Metadata: p.Metadata}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
