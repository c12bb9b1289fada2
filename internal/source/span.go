package source

import "fmt"

// Span описывает полуинтервал [Start, End) внутри файла.
// Span describes a half-open byte interval [Start, End) inside a file.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// NewSpan создаёт Span с проверкой инварианта Start <= End.
// NewSpan creates a Span and checks the Start <= End invariant.
func NewSpan(file FileID, start, end uint32) Span {
	if start > end {
		panic(fmt.Errorf("source: invalid span: start %d > end %d", start, end))
	}
	return Span{File: file, Start: start, End: end}
}

// At builds a zero-length span anchored at a single byte offset.
// The outline phase mostly deals in name offsets; diagnostics widen
// them as needed.
func At(file FileID, off uint32) Span {
	return Span{File: file, Start: off, End: off}
}

// Empty возвращает true для пустого интервала.
// Empty reports whether the interval is empty.
func (s Span) Empty() bool { return s.Start >= s.End }

// Len возвращает длину интервала в байтах.
// Len returns the interval length in bytes.
func (s Span) Len() uint32 {
	if s.Empty() {
		return 0
	}
	return s.End - s.Start
}

// Contains reports whether off lies within the interval.
func (s Span) Contains(off uint32) bool {
	return off >= s.Start && off < s.End
}

// Cover returns the minimal span covering both s and other.
// Both spans must belong to the same file.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		panic(fmt.Errorf("source: cover of spans from different files: %d and %d", s.File, other.File))
	}
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}
