package id

import (
	"strings"
	"testing"
)

func TestNewShape(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if len(s) != Length {
		t.Fatalf("expected %d chars, got %d (%q)", Length, len(s), s)
	}
	for _, c := range s {
		if !strings.ContainsRune(Alphabet, c) {
			t.Fatalf("character %q outside alphabet in %q", c, s)
		}
	}
	if !Valid(s) {
		t.Fatalf("generated id %q not Valid", s)
	}
}

func TestNewNInvalidLength(t *testing.T) {
	if _, err := NewN(0); err == nil {
		t.Fatal("expected error for zero length")
	}
	if _, err := NewN(-3); err == nil {
		t.Fatal("expected error for negative length")
	}
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s, err := New()
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		if seen[s] {
			t.Fatalf("duplicate id %q after %d draws", s, i)
		}
		seen[s] = true
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"2LNbYgNEAaezJduj", true},
		{"2LNbYgNEAaezJdu", false},  // too short
		{"2LNbYgNEAaezJdujX", false}, // too long
		{"2LNbYgNEAaezJdu/", false},  // bad character
		{"", false},
	}
	for _, c := range cases {
		if got := Valid(c.in); got != c.want {
			t.Errorf("Valid(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
