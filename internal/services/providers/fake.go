package providers

import (
	"context"
	"sync"
)

// Fake is a deterministic in-memory Querier for tests and dry runs.
// Answers map prompt -> response; Script queues errors returned before any
// answer, letting tests exercise retry paths
type Fake struct {
	ProviderName string
	ModelName    string
	Answers      map[string]string
	Default      string

	mu     sync.Mutex
	script []error
	calls  int
}

// NewFake constructs a Fake with a default answer
func NewFake(name, defaultAnswer string) *Fake {
	return &Fake{
		ProviderName: name,
		ModelName:    name + "-fake",
		Default:      defaultAnswer,
		Answers:      map[string]string{},
	}
}

// Fail queues errs to be returned by the next calls, in order
func (f *Fake) Fail(errs ...error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, errs...)
	return f
}

// Calls reports how many times Query ran
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Name implements Querier
func (f *Fake) Name() string { return f.ProviderName }

// Model implements Querier
func (f *Fake) Model() string { return f.ModelName }

// Query implements Querier
func (f *Fake) Query(ctx context.Context, prompt, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.script) > 0 {
		err := f.script[0]
		f.script = f.script[1:]
		if err != nil {
			return "", err
		}
	}
	if a, ok := f.Answers[prompt]; ok {
		return a, nil
	}
	return f.Default, nil
}
