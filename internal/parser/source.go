package parser

import "sort"

// Source is an immutable byte buffer loaded from one file. Reads past the
// end yield 0, which the scanner treats as the end-of-input sentinel.
type Source struct {
	Name string
	data []byte

	lineStarts []int
}

func NewSource(name string, data []byte) *Source {
	return &Source{Name: name, data: data}
}

func (s *Source) Len() int {
	return len(s.data)
}

func (s *Source) Bytes() []byte {
	return s.data
}

// At returns the byte at offset i, or 0 when i is outside the buffer.
func (s *Source) At(i int) byte {
	if i < 0 || i >= len(s.data) {
		return 0
	}
	return s.data[i]
}

// Slice returns the text in [start, end).
func (s *Source) Slice(start, end int) string {
	return string(s.data[start:end])
}

// Position converts a byte offset into a 1-based line and column.
func (s *Source) Position(offset int) Position {
	if s.lineStarts == nil {
		s.lineStarts = []int{0}
		for i, c := range s.data {
			if c == '\n' {
				s.lineStarts = append(s.lineStarts, i+1)
			}
		}
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.data) {
		offset = len(s.data)
	}
	line := sort.Search(len(s.lineStarts), func(i int) bool { return s.lineStarts[i] > offset }) - 1
	return Position{
		Line:   line + 1,
		Column: offset - s.lineStarts[line] + 1,
		Offset: offset,
	}
}

// LineText returns the physical line containing offset, without its terminator.
func (s *Source) LineText(offset int) string {
	start := offset
	for start > 0 && s.data[start-1] != '\n' {
		start--
	}
	end := offset
	for end < len(s.data) && s.data[end] != '\n' && s.data[end] != '\r' {
		end++
	}
	return string(s.data[start:end])
}
