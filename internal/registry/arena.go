package registry

import (
	"errors"
	"fmt"
)

// DefaultArenaSize is the capacity used when none is configured.
const DefaultArenaSize = 2 << 20

// ErrArenaExhausted is returned when an allocation does not fit.
var ErrArenaExhausted = errors.New("arena exhausted")

// Arena is a fixed-capacity, append-only byte store for interned strings.
type Arena struct {
	buf []byte
}

// Span locates a string stored in an Arena.
type Span struct {
	Offset int
	Length int
}

func NewArena(capacity int) *Arena {
	if capacity <= 0 {
		capacity = DefaultArenaSize
	}
	return &Arena{buf: make([]byte, 0, capacity)}
}

func (a *Arena) Len() int {
	return len(a.buf)
}

func (a *Arena) Cap() int {
	return cap(a.buf)
}

// Intern copies s into the arena. The backing buffer is never reallocated.
func (a *Arena) Intern(s string) (Span, error) {
	if len(s) > cap(a.buf)-len(a.buf) {
		return Span{}, fmt.Errorf("interning %d bytes with %d of %d free: %w",
			len(s), cap(a.buf)-len(a.buf), cap(a.buf), ErrArenaExhausted)
	}
	span := Span{Offset: len(a.buf), Length: len(s)}
	a.buf = append(a.buf, s...)
	return span, nil
}

// String returns the text stored at sp.
func (a *Arena) String(sp Span) string {
	if sp.Offset < 0 || sp.Length < 0 || sp.Offset+sp.Length > len(a.buf) {
		panic(fmt.Sprintf("registry: span %d+%d outside arena of %d bytes", sp.Offset, sp.Length, len(a.buf)))
	}
	return string(a.buf[sp.Offset : sp.Offset+sp.Length])
}
