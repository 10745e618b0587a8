package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name        string
		page, limit string
		want        Pagination
	}{
		{"defaults", "", "", Pagination{Page: 1, Limit: 10}},
		{"explicit", "3", "25", Pagination{Page: 3, Limit: 25}},
		{"clamps low", "0", "-5", Pagination{Page: 1, Limit: 1}},
		{"clamps high limit", "2", "1000", Pagination{Page: 2, Limit: 100}},
		{"garbage falls back", "abc", "x", Pagination{Page: 1, Limit: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePagination(tt.page, tt.limit))
		})
	}
	assert.Equal(t, 20, Pagination{Page: 3, Limit: 10}.Offset())
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Total: 25, Page: 2, Limit: 10, TotalPages: 3, HasNext: true, HasPrevious: true},
		NewPage(25, Pagination{Page: 2, Limit: 10}))
	assert.Equal(t, Page{Total: 0, Page: 1, Limit: 10, TotalPages: 0},
		NewPage(0, Pagination{Page: 1, Limit: 10}))
	assert.Equal(t, Page{Total: 10, Page: 1, Limit: 10, TotalPages: 1},
		NewPage(10, Pagination{Page: 1, Limit: 10}))
}

func TestSortParsing(t *testing.T) {
	assert.Equal(t, SortByTitle, ParseSortField("title"))
	assert.Equal(t, SortByUpdatedAt, ParseSortField("updatedAt"))
	assert.Equal(t, SortByCreatedAt, ParseSortField("views"))
	assert.Equal(t, SortByCreatedAt, ParseSortField(""))

	assert.Equal(t, SortAsc, ParseSortOrder("asc"))
	assert.Equal(t, SortDesc, ParseSortOrder("ASC"))
	assert.Equal(t, SortDesc, ParseSortOrder(""))
}
