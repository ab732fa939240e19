// Package reply turns conversation history into backend calls and backend
// output into chat messages.
package reply

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Carlavier/ai-chat-hub/internal/llm"
	"github.com/Carlavier/ai-chat-hub/internal/metrics"
	"github.com/Carlavier/ai-chat-hub/internal/models"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 30 * time.Second

// Config holds generator settings shared by all surfaces.
type Config struct {
	Model   string
	Timeout time.Duration
}

// Generator invokes a backend once per due turn.
type Generator struct {
	backend llm.Backend
	model   string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewGenerator creates a generator for backend.
func NewGenerator(backend llm.Backend, cfg Config, logger zerolog.Logger) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Generator{
		backend: backend,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.With().Str("backend", backend.Name()).Logger(),
	}
}

type result struct {
	text string
	err  error
}

// Invoke calls the backend once. Failures, including the timeout, are
// returned as *GenerationError.
func (g *Generator) Invoke(ctx context.Context, messages []llm.Message, params llm.Params) (string, error) {
	if params.Model == "" {
		params.Model = g.model
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// Buffered so a backend that ignores ctx does not leak the goroutine forever.
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		text, err := g.backend.Generate(ctx, messages, params)
		done <- result{text: text, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}
	metrics.GenerationDuration.WithLabelValues(g.backend.Name()).Observe(time.Since(start).Seconds())

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) {
			g.logger.Warn().Dur("timeout", g.timeout).Msg("generation timed out")
		} else {
			g.logger.Error().Err(res.err).Msg("generation failed")
		}
		metrics.GenerationErrors.WithLabelValues(g.backend.Name(), "backend").Inc()
		return "", &GenerationError{Backend: g.backend.Name(), Err: res.err}
	}

	return strings.TrimSpace(res.text), nil
}

// ReplyOne generates the next message of a single bot.
func (g *Generator) ReplyOne(ctx context.Context, history []models.Message, window int, bot models.BotProfile, opts Options, maxTokens int) (string, error) {
	messages := BuildContext(history, window, models.Roster{bot}, opts)

	text, err := g.Invoke(ctx, messages, llm.Params{
		Temperature: bot.Temperature,
		MaxTokens:   maxTokens,
		Speakers:    []string{bot.Name},
	})
	if err != nil {
		return "", err
	}

	text = stripOwnName(text, bot.Name)
	if text == "" {
		metrics.GenerationErrors.WithLabelValues(g.backend.Name(), "empty").Inc()
		return "", &GenerationError{Backend: g.backend.Name(), Err: errors.New("empty reply")}
	}
	return text, nil
}

// ReplyAll makes one call covering every selected bot and returns the parsed
// segments in the order they should be appended.
func (g *Generator) ReplyAll(ctx context.Context, history []models.Message, window int, selected models.Roster, maxTokens int) ([]Segment, error) {
	messages := BuildContext(history, window, selected, Options{Combined: true})

	text, err := g.Invoke(ctx, messages, llm.Params{
		Temperature: MeanTemperature(selected),
		MaxTokens:   maxTokens,
		Speakers:    selected.Names(),
		Combined:    true,
	})
	if err != nil {
		return nil, err
	}

	segments, err := ParseMultiReply(text)
	if err == nil {
		segments, err = Canonicalize(segments, selected)
	}
	if err != nil {
		g.logger.Warn().Err(err).Msg("unparsable multi-bot reply")
		metrics.GenerationErrors.WithLabelValues(g.backend.Name(), "malformed").Inc()
		return nil, &GenerationError{Backend: g.backend.Name(), Err: err}
	}
	return segments, nil
}

// MeanTemperature averages the bots' temperatures for a combined call.
func MeanTemperature(bots models.Roster) float64 {
	if len(bots) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bots {
		sum += b.Temperature
	}
	return sum / float64(len(bots))
}

// stripOwnName removes a leading "Name:" the model sometimes adds.
func stripOwnName(text, name string) string {
	if prefix, rest, ok := strings.Cut(text, ":"); ok && strings.EqualFold(strings.TrimSpace(prefix), name) {
		return strings.TrimSpace(rest)
	}
	return text
}
