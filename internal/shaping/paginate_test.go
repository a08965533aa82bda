package shaping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageCount(t *testing.T) {
	assert.Equal(t, 1, PageCount(0, 6))
	assert.Equal(t, 1, PageCount(6, 6))
	assert.Equal(t, 2, PageCount(7, 6))
	assert.Equal(t, 3, PageCount(13, 6))
	assert.Equal(t, 3, PageCount(13, 0))
}

func TestPaginate_Boundaries(t *testing.T) {
	items := make([]int, 13)
	for i := range items {
		items[i] = i
	}

	tests := []struct {
		name     string
		page     int
		wantPage int
		wantLen  int
	}{
		{name: "page zero clamps to first", page: 0, wantPage: 1, wantLen: 6},
		{name: "negative clamps to first", page: -3, wantPage: 1, wantLen: 6},
		{name: "middle", page: 2, wantPage: 2, wantLen: 6},
		{name: "last page holds the remainder", page: 3, wantPage: 3, wantLen: 1},
		{name: "past the end clamps to last", page: 4, wantPage: 3, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, ListingPageSize)
			assert.Equal(t, 3, p.PageCount)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Len(t, p.Items, tt.wantLen)
			assert.Equal(t, 13, p.Total)
		})
	}

	last := Paginate(items, 3, ListingPageSize)
	assert.Equal(t, []int{12}, last.Items)
	assert.True(t, last.HasPrev)
	assert.False(t, last.HasNext)
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate([]string{}, 5, ListingPageSize)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.PageCount)
	assert.Empty(t, p.Items)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}
