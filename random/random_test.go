package random

import (
	"strings"
	"testing"
)

func TestStringSecure(t *testing.T) {
	a, err := StringSecure(32)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := StringSecure(32)

	if len(a) != 32 || a == b {
		t.Fatalf("unexpected values %q %q", a, b)
	}
	for _, c := range a {
		if !strings.ContainsRune(charset, c) {
			t.Fatalf("unexpected rune %q", c)
		}
	}
}
