package normalize

import "testing"

func TestNormalizeFoldsCaseAndWidth(t *testing.T) {
	n := New()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "AcmeCloud", "acmecloud"},
		{"fullwidth to ascii", "Ａｃｍｅ", "acme"},
		{"strips zero width", "ac​me", "acme"},
		{"strips combining marks", "acmé", "acme"},
		{"collapses spaces", "acme   cloud", "acme cloud"},
		{"preserves newline", "acme \n cloud", "acme\ncloud"},
		{"trims edges", "  acme  ", "acme"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := n.Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := New()
	in := "Ｔｅｓｔ​ Brand́  Name"
	first := n.Normalize(in)
	for i := 0; i < 10; i++ {
		if got := n.Normalize(in); got != first {
			t.Fatalf("non-deterministic output: %q vs %q", got, first)
		}
	}
}

func TestKeyLowercasesResidue(t *testing.T) {
	n := New()
	if got := n.Key("GPT-4 Turbo"); got != "gpt-4 turbo" {
		t.Fatalf("Key = %q", got)
	}
}
