package models

import (
	"strconv"

	id "inkwell/pkg/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// SortField is a listing sort key.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByTitle     SortField = "title"
)

// ParseSortField returns the named field, or SortByCreatedAt for anything
// unrecognized.
func ParseSortField(s string) SortField {
	switch f := SortField(s); f {
	case SortByCreatedAt, SortByUpdatedAt, SortByTitle:
		return f
	default:
		return SortByCreatedAt
	}
}

// SortOrder is ascending or descending.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder returns the named order, or SortDesc for anything
// unrecognized.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == SortAsc {
		return SortAsc
	}
	return SortDesc
}

// ListFilter selects and orders posts for a store query.
type ListFilter struct {
	AuthorID      *id.UserID
	PublishedOnly bool
	// IncludeDraftsOf widens a PublishedOnly listing with the drafts of one
	// author (the signed-in viewer).
	IncludeDraftsOf *id.UserID
	Tag             string
	Query           string
	SortBy          SortField
	SortOrder       SortOrder
	Limit           int
	Offset          int
}

// Pagination is a clamped page request.
type Pagination struct {
	Page  int
	Limit int
}

// ParsePagination clamps raw query values: page to at least 1 and limit to
// 1..MaxLimit. Unparseable values take the defaults.
func ParsePagination(rawPage, rawLimit string) Pagination {
	page := atoiOr(rawPage, DefaultPage)
	limit := atoiOr(rawLimit, DefaultLimit)
	return Pagination{
		Page:  max(1, page),
		Limit: min(max(1, limit), MaxLimit),
	}
}

// Offset is the number of rows skipped before the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Page is listing metadata.
type Page struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// NewPage computes the metadata of page p out of total rows.
func NewPage(total int, p Pagination) Page {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Page{
		Total:       total,
		Page:        p.Page,
		Limit:       p.Limit,
		TotalPages:  totalPages,
		HasNext:     p.Page < totalPages,
		HasPrevious: p.Page > 1,
	}
}
