package route

import (
	"errors"
	"strings"

	"github.com/rickgao/terris/internal/actor"
)

// ErrNoRoute is returned when no matcher accepts a path.
var ErrNoRoute = errors.New("no matcher accepts route")

// Factory builds a fresh handler for an accepted path.
type Factory func(path string) actor.Handler

// Matcher decides whether it serves a path and, if so, builds its handler.
// Match must not have side effects when it declines.
type Matcher interface {
	Name() string
	Match(path string) (actor.Handler, bool)
}

type exact struct {
	path    string
	factory Factory
}

// Exact accepts only path.
func Exact(path string, factory Factory) Matcher {
	return exact{path: path, factory: factory}
}

func (m exact) Name() string { return "exact:" + m.path }

func (m exact) Match(path string) (actor.Handler, bool) {
	if path != m.path {
		return nil, false
	}
	return m.factory(path), true
}

type prefix struct {
	prefix  string
	factory Factory
}

// Prefix accepts every path starting with p. Each distinct path gets its own handler.
func Prefix(p string, factory Factory) Matcher {
	return prefix{prefix: p, factory: factory}
}

func (m prefix) Name() string { return "prefix:" + m.prefix }

func (m prefix) Match(path string) (actor.Handler, bool) {
	if !strings.HasPrefix(path, m.prefix) {
		return nil, false
	}
	return m.factory(path), true
}

type funcMatcher struct {
	name string
	fn   func(path string) (actor.Handler, bool)
}

// MatchFunc wraps an arbitrary matching function.
func MatchFunc(name string, fn func(path string) (actor.Handler, bool)) Matcher {
	return funcMatcher{name: name, fn: fn}
}

func (m funcMatcher) Name() string { return m.name }

func (m funcMatcher) Match(path string) (actor.Handler, bool) {
	return m.fn(path)
}
