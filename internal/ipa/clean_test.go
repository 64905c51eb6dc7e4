package ipa

import "testing"

func TestCleanCollapsesWhitespaceRuns(t *testing.T) {
	got := Clean("  rʌn \n\t dʒɒg  ", false)
	if got != "rʌn dʒɒg" {
		t.Fatalf("unexpected clean output: %q", got)
	}
}

func TestCleanStripsZeroWidthOnlyWhenRequested(t *testing.T) {
	raw := "r\u200bʌ\u200cn\ufeff"

	kept := Clean(raw, false)
	if kept != raw {
		t.Fatalf("zero-width characters should survive without the flag: %q", kept)
	}

	stripped := Clean(raw, true)
	if stripped != "rʌn" {
		t.Fatalf("unexpected stripped output: %q", stripped)
	}
}

func TestCleanEmptyInput(t *testing.T) {
	if got := Clean("   \n ", true); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}
