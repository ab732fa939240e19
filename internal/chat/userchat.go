package chat

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Carlavier/ai-chat-hub/internal/models"
	"github.com/Carlavier/ai-chat-hub/internal/presence"
	"github.com/Carlavier/ai-chat-hub/internal/store"
)

// ChatInput is a human submission to the user chat.
type ChatInput struct {
	Sender string
	Text   string
}

// UserChat is the human-only room. Every submission is appended as is.
type UserChat struct {
	base
	presence *presence.Tracker
}

// NewUserChat creates the user chat controller.
func NewUserChat(s store.HistoryStore, tracker *presence.Tracker, logger zerolog.Logger, opts ...Option) *UserChat {
	return &UserChat{
		base:     newBase(s, store.SurfaceUserChat, logger, opts),
		presence: tracker,
	}
}

// Tick appends the submission, if any, and refreshes the sender's presence.
func (c *UserChat) Tick(ctx context.Context, in ChatInput) (Result, error) {
	var res Result

	text := strings.TrimSpace(in.Text)
	sender := SanitizeName(in.Sender)
	if text == "" || sender == "" {
		c.outcome("idle")
		return res, nil
	}

	if err := c.presence.Touch(ctx, sender); err != nil {
		c.logger.Warn().Err(err).Str("sender", sender).Msg("presence refresh failed")
	}

	if err := c.append(ctx, &res, models.UserMessage(sender, text)); err != nil {
		return res, err
	}
	c.outcome("appended")
	return res, nil
}

// Active lists users who sent a message within the presence TTL.
func (c *UserChat) Active(ctx context.Context) ([]string, error) {
	return c.presence.Active(ctx)
}
