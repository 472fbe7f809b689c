package service

import "testing"

func TestUpperInvariantNormalizer(t *testing.T) {
	n := UpperInvariantNormalizer{}

	cases := map[string]string{
		"alice":             "ALICE",
		"Alice@Example.com": "ALICE@EXAMPLE.COM",
		"istanbul":          "ISTANBUL",
		"":                  "",
	}
	for in, want := range cases {
		if got := n.NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
		if got := n.NormalizeEmail(in); got != want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
