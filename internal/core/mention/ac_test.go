package mention

import "testing"

type acHit struct{ end, id int }

func scanAll(a *acAutomaton, text string) []acHit {
	var hits []acHit
	a.FindAll([]byte(text), func(end, id int) {
		hits = append(hits, acHit{end: end, id: id})
	})
	return hits
}

func TestAutomatonReportsEveryMatch(t *testing.T) {
	a := newAutomaton()
	a.AddPattern([]byte("acme"), 0)
	a.AddPattern([]byte("acme cloud"), 1)
	a.AddPattern([]byte("cloud"), 2)
	a.Build()

	got := scanAll(a, "acme cloud")
	want := []acHit{{4, 0}, {10, 1}, {10, 2}}
	if len(got) != len(want) {
		t.Fatalf("hits = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hit[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAutomatonRepeatedAndAdjacent(t *testing.T) {
	a := newAutomaton()
	a.AddPattern([]byte("ab"), 0)
	a.Build()

	got := scanAll(a, "ababab")
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %v", got)
	}
	for i, h := range got {
		if h.end != 2*(i+1) || h.id != 0 {
			t.Fatalf("hit[%d] = %v", i, h)
		}
	}
}

func TestAutomatonEmptyPatternIgnored(t *testing.T) {
	a := newAutomaton()
	a.AddPattern(nil, 0)
	a.AddPattern([]byte("x"), 1)
	a.Build()

	got := scanAll(a, "xx")
	if len(got) != 2 || got[0].id != 1 || got[1].id != 1 {
		t.Fatalf("hits = %v", got)
	}
}
