package utils

import "testing"

func TestHasLetterAndNumber(t *testing.T) {
	if !HasLetter("abc1") || !HasNumber("abc1") {
		t.Fatalf("expected both checks to pass for abc1")
	}
	if HasLetter("12345") {
		t.Fatalf("digits only must fail letter check")
	}
	if HasNumber("abcdef") {
		t.Fatalf("letters only must fail number check")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 30); got != "short" {
		t.Fatalf("no cut expected, got %q", got)
	}
	got := Truncate("What are good sources of iron and protein?", 30)
	if len([]rune(got)) != 30 {
		t.Fatalf("expected exactly 30 runes, got %d (%q)", len([]rune(got)), got)
	}
	if got[len(got)-3:] != "..." {
		t.Fatalf("ellipsis expected inside the limit, got %q", got)
	}
	// exact fit keeps the text verbatim
	exact := "What are good sources of iron?"
	if got := Truncate(exact, 30); got != exact {
		t.Fatalf("exact-length input must stay untouched, got %q", got)
	}
}
