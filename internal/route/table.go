package route

import "github.com/rickgao/terris/internal/actor"

// Table is an ordered list of matchers. The zero value is an empty table.
// A Table is never modified after construction; With returns a new one.
type Table struct {
	matchers []Matcher
}

// NewTable builds a table from ms in order. Nil matchers are skipped.
func NewTable(ms ...Matcher) Table {
	t := Table{matchers: make([]Matcher, 0, len(ms))}
	for _, m := range ms {
		if m != nil {
			t.matchers = append(t.matchers, m)
		}
	}
	return t
}

// With returns a copy of t with m appended as the lowest-priority entry.
func (t Table) With(m Matcher) Table {
	return NewTable(append(t.Clone().matchers, m)...)
}

// Clone returns a table sharing no backing storage with t.
func (t Table) Clone() Table {
	c := Table{matchers: make([]Matcher, len(t.matchers))}
	copy(c.matchers, t.matchers)
	return c
}

// Len returns the number of matchers.
func (t Table) Len() int {
	return len(t.matchers)
}

// Names lists matcher names in priority order.
func (t Table) Names() []string {
	names := make([]string, len(t.matchers))
	for i, m := range t.matchers {
		names[i] = m.Name()
	}
	return names
}

// Resolve returns the handler built by the first matcher that accepts path,
// together with that matcher's name.
func (t Table) Resolve(path string) (actor.Handler, string, error) {
	for _, m := range t.matchers {
		if h, ok := m.Match(path); ok {
			return h, m.Name(), nil
		}
	}
	return nil, "", ErrNoRoute
}
