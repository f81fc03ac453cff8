package pagination

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/JaimeStill/recon/pkg/query"
)

// Sorts decodes either a "name,-stage" string or an array of sort objects.
type Sorts []query.Sort

func (s *Sorts) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*s = query.ParseSort(raw)
		return nil
	}

	var sorts []query.Sort
	if err := json.Unmarshal(data, &sorts); err != nil {
		return err
	}
	*s = sorts
	return nil
}

// PageRequest selects one page of a filtered, ordered listing.
type PageRequest struct {
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	Search   *string `json:"search,omitempty"`
	Sort     Sorts   `json:"sort,omitempty"`
}

// Normalize clamps page to at least 1 and page size into [1, MaxPageSize],
// substituting DefaultPageSize when unset.
func (r *PageRequest) Normalize(cfg Config) {
	r.Page = max(r.Page, 1)
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	r.PageSize = min(r.PageSize, cfg.MaxPageSize)
}

// FromQuery reads page, page_size, search, and sort from URL query values.
func FromQuery(values url.Values, cfg Config) PageRequest {
	var req PageRequest
	req.Page, _ = strconv.Atoi(values.Get("page"))
	req.PageSize, _ = strconv.Atoi(values.Get("page_size"))
	if s := values.Get("search"); s != "" {
		req.Search = &s
	}
	req.Sort = query.ParseSort(values.Get("sort"))

	req.Normalize(cfg)
	return req
}

// PageResult is one page of T with totals.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult wraps data, reporting at least one page and never a nil Data.
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	if data == nil {
		data = []T{}
	}

	pages := 1
	if pageSize > 0 && total > 0 {
		pages = (total + pageSize - 1) / pageSize
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}
