package session

import (
	"net/http/httptest"
	"testing"
)

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		want   ID
		wantOK bool
	}{
		{
			name:   "upper case key and value",
			query:  "UUID=550E8400-E29B-41D4-A716-446655440000",
			want:   "550E8400-E29B-41D4-A716-446655440000",
			wantOK: true,
		},
		{
			name:   "lower case key is accepted",
			query:  "uuid=550E8400-E29B-41D4-A716-446655440000",
			want:   "550E8400-E29B-41D4-A716-446655440000",
			wantOK: true,
		},
		{
			name:   "lower case value is normalized",
			query:  "Uuid=550e8400-e29b-41d4-a716-446655440000",
			want:   "550E8400-E29B-41D4-A716-446655440000",
			wantOK: true,
		},
		{
			name:   "among other parameters",
			query:  "room=1&uuid=6ba7b810-9dad-41d1-80b4-00c04fd430c8&x=y",
			want:   "6BA7B810-9DAD-41D1-80B4-00C04FD430C8",
			wantOK: true,
		},
		{
			name:   "first match wins",
			query:  "uuid=550e8400-e29b-41d4-a716-446655440000&uuid=6ba7b810-9dad-41d1-80b4-00c04fd430c8",
			want:   "550E8400-E29B-41D4-A716-446655440000",
			wantOK: true,
		},
		{
			name:   "missing key",
			query:  "room=1&name=alice",
			wantOK: false,
		},
		{
			name:   "empty query",
			query:  "",
			wantOK: false,
		},
		{
			name:   "version 1 uuid rejected",
			query:  "uuid=6ba7b810-9dad-11d1-80b4-00c04fd430c8",
			wantOK: false,
		},
		{
			name:   "bad variant rejected",
			query:  "uuid=550e8400-e29b-41d4-c716-446655440000",
			wantOK: false,
		},
		{
			name:   "truncated value",
			query:  "uuid=550e8400-e29b-41d4-a716-44665544",
			wantOK: false,
		},
		{
			name:   "semicolon separator",
			query:  "room=1;uuid=550e8400-e29b-41d4-a716-446655440000",
			want:   "550E8400-E29B-41D4-A716-446655440000",
			wantOK: true,
		},
		{
			name:   "key must be exactly uuid",
			query:  "xuuid=550e8400-e29b-41d4-a716-446655440000",
			wantOK: false,
		},
		{
			name:   "longer key skipped for a later uuid",
			query:  "xuuid=550e8400-e29b-41d4-a716-446655440000&uuid=6ba7b810-9dad-41d1-80b4-00c04fd430c8",
			want:   "6BA7B810-9DAD-41D1-80B4-00C04FD430C8",
			wantOK: true,
		},
		{
			name:   "trailing hex digits rejected",
			query:  "uuid=550e8400-e29b-41d4-a716-446655440000ff",
			wantOK: false,
		},
		{
			name:   "trailing garbage rejected",
			query:  "uuid=550e8400-e29b-41d4-a716-446655440000-extra&room=1",
			wantOK: false,
		},
		{
			name:   "value without key",
			query:  "id=550e8400-e29b-41d4-a716-446655440000",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromQuery(tt.query)
			if ok != tt.wantOK {
				t.Fatalf("FromQuery(%q) ok = %v, want %v", tt.query, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("FromQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws?uuid=550e8400-e29b-41d4-a716-446655440000", nil)

	id, ok := FromRequest(r)
	if !ok {
		t.Fatal("expected session in request")
	}
	if id != "550E8400-E29B-41D4-A716-446655440000" {
		t.Errorf("id = %q", id)
	}

	if _, ok := FromRequest(nil); ok {
		t.Error("expected no session for nil request")
	}
}

func TestID_UUID(t *testing.T) {
	id := ID("550E8400-E29B-41D4-A716-446655440000")
	if got := id.UUID().String(); got != "550e8400-e29b-41d4-a716-446655440000" {
		t.Errorf("UUID() = %s", got)
	}
	if got := ID("").UUID(); got.String() != "00000000-0000-0000-0000-000000000000" {
		t.Errorf("empty ID UUID() = %s, want nil uuid", got)
	}
}
