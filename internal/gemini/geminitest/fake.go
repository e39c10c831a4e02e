// Package geminitest provides a scripted gemini.Generator for tests.
package geminitest

import (
	"context"
	"strings"
	"sync"
)

// Reply answers any prompt containing Match with Text.
type Reply struct {
	Match string
	Text  string
}

// Fake answers prompts from a script. Replies are tried in the order they
// were added and the first whose Match the prompt contains wins; otherwise
// Default is returned. Err, when set, fails every call.
type Fake struct {
	Script  []Reply
	Default string
	Err     error

	mu      sync.Mutex
	prompts []string
}

// On appends a reply to the script.
func (f *Fake) On(match, text string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Script = append(f.Script, Reply{Match: match, Text: text})
	return f
}

func (f *Fake) Model() string {
	return "fake"
}

func (f *Fake) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)

	if f.Err != nil {
		return "", f.Err
	}
	for _, r := range f.Script {
		if strings.Contains(prompt, r.Match) {
			return r.Text, nil
		}
	}
	return f.Default, nil
}

// Prompts returns the prompts received so far.
func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}
