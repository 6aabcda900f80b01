package settings

import (
	"encoding/json"
	"testing"
)

func TestParseEntry(t *testing.T) {
	if _, err := ParseEntry("contact.email", json.RawMessage(`"hello@travel.example"`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseEntry("Contact Email", json.RawMessage(`"x"`)); err == nil {
		t.Fatalf("expected bad key to fail")
	}
	if _, err := ParseEntry("hero.title", json.RawMessage(`{broken`)); err == nil {
		t.Fatalf("expected bad json to fail")
	}
	if _, err := ParseEntry("hero.title", nil); err == nil {
		t.Fatalf("expected missing value to fail")
	}
}
