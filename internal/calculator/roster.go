package calculator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateMember = errors.New("duplicate member")
	ErrInvalidMember   = errors.New("member name cannot be empty")
)

// Roster is the ordered set of participant names of one trip.
// Insertion order drives output ordering and tie-breaks.
type Roster struct {
	names []string
	index map[string]int
}

// NewRoster builds a roster, rejecting blank and duplicate names.
func NewRoster(names ...string) (Roster, error) {
	r := Roster{
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return Roster{}, ErrInvalidMember
		}
		if _, dup := r.index[n]; dup {
			return Roster{}, fmt.Errorf("%w: %q", ErrDuplicateMember, n)
		}
		r.index[n] = len(r.names)
		r.names = append(r.names, n)
	}
	return r, nil
}

// MustRoster is NewRoster for fixed, known-good input.
func MustRoster(names ...string) Roster {
	r, err := NewRoster(names...)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of participants.
func (r Roster) Len() int {
	return len(r.names)
}

// Contains reports whether name is on the roster.
func (r Roster) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Index returns the roster position of name, or -1.
func (r Roster) Index(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	return -1
}

// Names returns a copy of the roster in insertion order.
func (r Roster) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
