package broker

import (
	"testing"
	"time"
)

func TestNextBackoff_DoublesUpTo30s(t *testing.T) {
	d := time.Second
	var seen []time.Duration
	for i := 0; i < 7; i++ {
		d = nextBackoff(d)
		seen = append(seen, d)
	}
	want := []time.Duration{2, 4, 8, 16, 30, 30, 30}
	for i, w := range want {
		if seen[i] != w*time.Second {
			t.Fatalf("step %d: expected %s, got %s", i, w*time.Second, seen[i])
		}
	}
}
