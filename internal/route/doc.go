// Package route holds the Route Definition Table: an ordered, immutable list
// of matchers installed by the application at startup.
//
// Matchers are tried in order and the first one that accepts a path wins.
// Matchers are not required to be mutually exclusive, so the order in which
// they are listed is part of the route configuration.
package route
