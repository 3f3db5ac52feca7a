package model

import (
	"encoding/json"
	"testing"
)

func TestQuestion_JSON(t *testing.T) {
	q := Question{SortOrder: 3, Text: "Who empties the trash more often?"}

	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"sort_order":3,"question":"Who empties the trash more often?"}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
