package genutil

import "testing"

func TestRandomInt32KeysAreDistinct(t *testing.T) {
	keys := RandomInt32Keys(50)
	if len(keys) != 50 {
		t.Fatalf("got %d keys, want 50", len(keys))
	}
	seen := make(map[int32]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("duplicate key %d", k)
		}
		seen[k] = true
	}
}

func TestRandomWordValuesNonEmpty(t *testing.T) {
	values := RandomWordValues(10)
	if len(values) != 10 {
		t.Fatalf("got %d values, want 10", len(values))
	}
	for _, v := range values {
		if v == "" {
			t.Error("expected non-empty value")
		}
	}
}
