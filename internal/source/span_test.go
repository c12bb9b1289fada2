package source

import (
	"testing"
)

func TestSpan_At(t *testing.T) {
	tests := []struct {
		name     string
		file     FileID
		off      uint32
		expected Span
	}{
		{
			name:     "offset zero",
			file:     1,
			off:      0,
			expected: Span{File: 1, Start: 0, End: 0},
		},
		{
			name:     "middle of file",
			file:     2,
			off:      42,
			expected: Span{File: 2, Start: 42, End: 42},
		},
		{
			name:     "large offset",
			file:     3,
			off:      100000,
			expected: Span{File: 3, Start: 100000, End: 100000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := At(tt.file, tt.off)
			if result != tt.expected {
				t.Errorf("At() = %+v, want %+v", result, tt.expected)
			}
			if !result.Empty() {
				t.Errorf("At() must produce an empty span, got len %d", result.Len())
			}
		})
	}
}

func TestSpan_EmptyAndLen(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		empty    bool
		length   uint32
	}{
		{
			name:   "normal span",
			span:   Span{File: 1, Start: 10, End: 20},
			empty:  false,
			length: 10,
		},
		{
			name:   "zero-length span",
			span:   Span{File: 1, Start: 15, End: 15},
			empty:  true,
			length: 0,
		},
		{
			name:   "single byte span",
			span:   Span{File: 1, Start: 42, End: 43},
			empty:  false,
			length: 1,
		},
		{
			name:   "inverted span treated as empty",
			span:   Span{File: 1, Start: 20, End: 10},
			empty:  true,
			length: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Empty(); got != tt.empty {
				t.Errorf("Empty() = %v, want %v", got, tt.empty)
			}
			if got := tt.span.Len(); got != tt.length {
				t.Errorf("Len() = %d, want %d", got, tt.length)
			}
		})
	}
}

func TestSpan_Contains(t *testing.T) {
	span := Span{File: 1, Start: 10, End: 20}

	tests := []struct {
		name     string
		off      uint32
		expected bool
	}{
		{name: "before start", off: 9, expected: false},
		{name: "at start", off: 10, expected: true},
		{name: "inside", off: 15, expected: true},
		{name: "at end is exclusive", off: 20, expected: false},
		{name: "after end", off: 100, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := span.Contains(tt.off); got != tt.expected {
				t.Errorf("Contains(%d) = %v, want %v", tt.off, got, tt.expected)
			}
		})
	}
}

func TestSpan_Cover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{
			name:     "disjoint spans",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 1, Start: 30, End: 40},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "overlapping spans",
			a:        Span{File: 1, Start: 10, End: 25},
			b:        Span{File: 1, Start: 20, End: 40},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "nested spans",
			a:        Span{File: 1, Start: 10, End: 100},
			b:        Span{File: 1, Start: 20, End: 40},
			expected: Span{File: 1, Start: 10, End: 100},
		},
		{
			name:     "cover with point span",
			a:        Span{File: 2, Start: 10, End: 20},
			b:        At(2, 5),
			expected: Span{File: 2, Start: 5, End: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.a.Cover(tt.b)
			if result != tt.expected {
				t.Errorf("Cover() = %+v, want %+v", result, tt.expected)
			}
			// Cover is symmetric
			if rev := tt.b.Cover(tt.a); rev != tt.expected {
				t.Errorf("Cover() reversed = %+v, want %+v", rev, tt.expected)
			}
		})
	}

	t.Run("different files panic", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Cover для спанов из разных файлов должен паниковать")
			}
		}()
		a := Span{File: 1, Start: 0, End: 5}
		b := Span{File: 2, Start: 0, End: 5}
		_ = a.Cover(b)
	})
}

func TestNewSpan_InvalidPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewSpan со start > end должен паниковать")
		}
	}()
	_ = NewSpan(1, 20, 10)
}
