package mention

// Aho-Corasick automaton over the normalized brand-variant byte strings.
// Variant patterns are short and few, so a dense 256-way transition table
// per state keeps the scan branch-free over map lookups

type acState struct {
	// next[b] = following state, or -1 when the edge is absent
	next    [256]int
	fail    int
	variant []int // variant IDs whose pattern ends in this state
}

func newState() acState {
	var s acState
	for i := range s.next {
		s.next[i] = -1
	}
	return s
}

type acAutomaton struct {
	states []acState
}

func newAutomaton() *acAutomaton {
	return &acAutomaton{states: []acState{newState()}}
}

// AddPattern inserts one normalized variant under its integer ID.
// Empty patterns are ignored
func (a *acAutomaton) AddPattern(pat []byte, id int) {
	if len(pat) == 0 {
		return
	}
	cur := 0
	for _, b := range pat {
		nxt := a.states[cur].next[b]
		if nxt == -1 {
			nxt = len(a.states)
			a.states[cur].next[b] = nxt
			a.states = append(a.states, newState())
		}
		cur = nxt
	}
	a.states[cur].variant = append(a.states[cur].variant, id)
}

// Build computes failure links breadth-first and folds each state's fail
// target outputs into its own, so a single state visit reports every
// variant ending there
func (a *acAutomaton) Build() {
	queue := make([]int, 0, len(a.states))
	for b := 0; b < 256; b++ {
		if s := a.states[0].next[b]; s != -1 {
			a.states[s].fail = 0
			queue = append(queue, s)
		}
	}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for b := 0; b < 256; b++ {
			s := a.states[cur].next[b]
			if s == -1 {
				continue
			}
			queue = append(queue, s)

			f := a.states[cur].fail
			for f != 0 && a.states[f].next[b] == -1 {
				f = a.states[f].fail
			}
			if nxt := a.states[f].next[b]; nxt != -1 {
				a.states[s].fail = nxt
			} else {
				a.states[s].fail = 0
			}

			a.states[s].variant = append(a.states[s].variant, a.states[a.states[s].fail].variant...)
		}
	}
}

// FindAll reports every match as cb(endIndex, variantID), where endIndex is
// the byte offset one past the match
func (a *acAutomaton) FindAll(text []byte, cb func(end, id int)) {
	cur := 0
	for i, b := range text {
		for cur != 0 && a.states[cur].next[b] == -1 {
			cur = a.states[cur].fail
		}
		if nxt := a.states[cur].next[b]; nxt != -1 {
			cur = nxt
		}
		for _, id := range a.states[cur].variant {
			cb(i+1, id)
		}
	}
}
