// Package chat runs the per-surface tick cycle: read history, schedule, generate, append.
//
// Controllers hold no history between ticks; every tick reads the current log
// from the store. Two viewers ticking the same surface at once may both act on
// the same due turn; there is no lock around "whose turn is it".
package chat

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/Carlavier/ai-chat-hub/internal/metrics"
	"github.com/Carlavier/ai-chat-hub/internal/models"
	"github.com/Carlavier/ai-chat-hub/internal/store"
)

// ErrUnknownBot is returned when a room submission names a bot outside the roster.
var ErrUnknownBot = errors.New("unknown bot")

// Result describes what a tick appended.
type Result struct {
	Messages []models.Message `json:"new"`
	Changed  bool             `json:"changed"`
}

func (r *Result) add(msg models.Message) {
	r.Messages = append(r.Messages, msg)
	r.Changed = true
}

// Option configures a controller.
type Option func(*base)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		b.now = now
	}
}

// base carries what every controller shares.
type base struct {
	store   store.HistoryStore
	surface store.Surface
	now     func() time.Time
	logger  zerolog.Logger
}

func newBase(s store.HistoryStore, surface store.Surface, logger zerolog.Logger, opts []Option) base {
	b := base{
		store:   s,
		surface: surface,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger.With().Str("surface", string(surface)).Logger(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// History returns the last n messages of the surface, or all when n <= 0.
func (b *base) History(ctx context.Context, n int) ([]models.Message, error) {
	return b.store.Recent(ctx, b.surface, n)
}

// Reset clears the surface's log.
func (b *base) Reset(ctx context.Context) error {
	if err := b.store.Clear(ctx, b.surface); err != nil {
		return err
	}
	b.logger.Info().Msg("conversation cleared")
	return nil
}

// window reads the bounded log the surface keeps.
func (b *base) window(ctx context.Context) ([]models.Message, error) {
	history, err := b.store.Recent(ctx, b.surface, b.store.Retention(b.surface))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.surface, err)
	}
	return history, nil
}

// append stamps msg with the append time and stores it.
func (b *base) append(ctx context.Context, res *Result, msg models.Message) error {
	msg.Timestamp = b.now()
	stored, err := b.store.Append(ctx, b.surface, msg)
	if err != nil {
		b.logger.Error().Err(err).Str("sender", msg.Sender).Msg("append failed")
		return fmt.Errorf("append to %s: %w", b.surface, err)
	}
	res.add(stored)
	return nil
}

func (b *base) outcome(outcome string) {
	metrics.TurnsTotal.WithLabelValues(string(b.surface), outcome).Inc()
}

// SanitizeName trims name, drops control characters and limits it to 100 bytes.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	if len(name) > 100 {
		name = strings.ToValidUTF8(name[:100], "")
	}

	return name
}

// AnonymousName returns a placeholder name for a sender who gave none.
func AnonymousName() string {
	return fmt.Sprintf("User_%d", 1000+rand.Intn(9000))
}
