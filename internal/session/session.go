package session

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// queryPattern matches a version-4 UUID as the whole value of a UUID parameter.
// It is applied to the upper-cased query string, which makes both the key and
// the value case-insensitive.
var queryPattern = regexp.MustCompile(
	`(?:^|[&;])UUID=([0-9A-F]{8}-[0-9A-F]{4}-4[0-9A-F]{3}-[89AB][0-9A-F]{3}-[0-9A-F]{12})(?:$|[&;])`,
)

// ID identifies a participant. Always upper-case.
type ID string

// String returns the ID text.
func (id ID) String() string {
	return string(id)
}

// UUID returns the parsed form of the ID, or uuid.Nil if the ID is empty.
func (id ID) UUID() uuid.UUID {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return uuid.Nil
	}
	return u
}

// FromQuery parses the first UUID=<v4 uuid> parameter out of a raw query string.
// Returns false if the query carries no such pair.
func FromQuery(rawQuery string) (ID, bool) {
	m := queryPattern.FindStringSubmatch(strings.ToUpper(rawQuery))
	if m == nil {
		return "", false
	}

	if _, err := uuid.Parse(m[1]); err != nil {
		return "", false
	}
	return ID(m[1]), true
}

// FromRequest parses the session from the request's query string.
func FromRequest(r *http.Request) (ID, bool) {
	if r == nil || r.URL == nil {
		return "", false
	}
	return FromQuery(r.URL.RawQuery)
}
