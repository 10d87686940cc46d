package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		page, size           int
		wantOffset, wantSize int
	}{
		{name: "first page", page: 1, size: 10, wantOffset: 0, wantSize: 10},
		{name: "third page", page: 3, size: 10, wantOffset: 20, wantSize: 10},
		{name: "zero page", page: 0, size: 5, wantOffset: 0, wantSize: 5},
		{name: "default size", page: 2, size: 0, wantOffset: DefaultPageSize, wantSize: DefaultPageSize},
		{name: "capped size", page: 1, size: 1000, wantOffset: 0, wantSize: MaxPageSize},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			off, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantOffset, off)
			assert.Equal(t, tt.wantSize, lim)
		})
	}
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}

func TestNewMeta(t *testing.T) {
	t.Parallel()
	m := NewMeta(2, 10, 10, 25)
	assert.Equal(t, Meta{Page: 2, Size: 10, Total: 25, TotalPages: 3, HasPrev: true, HasNext: true}, m)

	m = NewMeta(3, 20, 10, 25)
	assert.False(t, m.HasNext)
}
