package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// DefaultScript is used by the scripted backend when no lines are given.
var DefaultScript = []string{
	"That is an interesting point.",
	"I see it differently, but go on.",
	"Tell me more about that.",
	"Now that is a clue worth following.",
}

// Scripted replays canned lines in order without calling any service. For a
// combined call, or more than one expected speaker, it answers once per speaker
// in the "Name: line" format the multi-bot room expects.
type Scripted struct {
	mu    sync.Mutex
	lines []string
	next  int
	calls int
}

// NewScripted creates a scripted backend.
func NewScripted(lines ...string) *Scripted {
	if len(lines) == 0 {
		lines = DefaultScript
	}
	return &Scripted{lines: lines}
}

// Name implements Backend.
func (s *Scripted) Name() string { return "scripted" }

// Calls reports how many times Generate ran.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Generate implements Backend.
func (s *Scripted) Generate(ctx context.Context, _ []Message, params Params) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if !params.Combined && len(params.Speakers) <= 1 {
		return s.line(), nil
	}

	parts := make([]string, len(params.Speakers))
	for i, name := range params.Speakers {
		parts[i] = fmt.Sprintf("%s: %s", name, s.line())
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *Scripted) line() string {
	l := s.lines[s.next%len(s.lines)]
	s.next++
	return l
}

var _ Backend = (*Scripted)(nil)
