// Package llm adapts text-generation services to a single synchronous call.
package llm

import "context"

// Chat roles understood by every backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of a generation context.
type Message struct {
	Role    string
	Content string
}

// Params carries per-call generation knobs.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Speakers    []string // Bots expected to answer; informational for real backends
	Combined    bool     // The reply must label each part as "Name: content"
}

// Backend generates a single completion for a context.
type Backend interface {
	Name() string
	Generate(ctx context.Context, messages []Message, params Params) (string, error)
}

// Func adapts a function to the Backend interface.
type Func func(ctx context.Context, messages []Message, params Params) (string, error)

// Name implements Backend.
func (f Func) Name() string { return "func" }

// Generate implements Backend.
func (f Func) Generate(ctx context.Context, messages []Message, params Params) (string, error) {
	return f(ctx, messages, params)
}

func coalesce(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
