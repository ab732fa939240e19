package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Carlavier/ai-chat-hub/internal/models"
	"github.com/Carlavier/ai-chat-hub/internal/reply"
	"github.com/Carlavier/ai-chat-hub/internal/store"
	"github.com/Carlavier/ai-chat-hub/internal/turn"
)

// RoomConfig tunes the multi-bot room.
type RoomConfig struct {
	Mode      turn.Mode // Default policy when a submission names none
	Window    int       // Messages of context per turn; 0 uses the whole log
	MaxTokens int
}

// RoomInput is a human submission to the multi-bot room.
type RoomInput struct {
	Sender string
	Text   string
	Bots   []string  // Selected bots; empty mutes the room
	Mode   turn.Mode // Optional override of RoomConfig.Mode
}

// MultiBotRoom is a room where one human talks to any selection of bots.
type MultiBotRoom struct {
	base
	gen    *reply.Generator
	roster models.Roster
	cfg    RoomConfig
}

// NewMultiBotRoom creates the room controller.
func NewMultiBotRoom(s store.HistoryStore, gen *reply.Generator, roster models.Roster, cfg RoomConfig, logger zerolog.Logger, opts ...Option) *MultiBotRoom {
	if cfg.Mode == "" {
		cfg.Mode = turn.ModeCombined
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 400
	}
	return &MultiBotRoom{
		base:   newBase(s, store.SurfaceRoom, logger, opts),
		gen:    gen,
		roster: roster,
		cfg:    cfg,
	}
}

// Mode returns the default policy.
func (r *MultiBotRoom) Mode() turn.Mode {
	return r.cfg.Mode
}

// Tick appends the human message and then the bots' replies.
//
// In combined mode a single backend call answers for the whole selection and
// the parsed replies are appended in the order ParseMultiReply returns them.
// A failed or unparsable combined reply becomes one system message. In
// round-robin mode exactly one bot answers and a failure is stored in its name.
func (r *MultiBotRoom) Tick(ctx context.Context, in RoomInput) (Result, error) {
	var res Result

	selected, err := r.roster.Select(in.Bots)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrUnknownBot, err)
	}
	mode := in.Mode
	if mode == "" {
		mode = r.cfg.Mode
	}

	text := strings.TrimSpace(in.Text)
	sender := SanitizeName(in.Sender)
	if text == "" || sender == "" {
		r.outcome("idle")
		return res, nil
	}

	if err := r.append(ctx, &res, models.UserMessage(sender, text)); err != nil {
		return res, err
	}

	history, err := r.window(ctx)
	if err != nil {
		return res, err
	}

	d := turn.Room(mode, r.roster, selected, history)
	if !d.Due {
		r.outcome("muted")
		return res, nil
	}

	log := r.logger.With().Str("mode", string(mode)).Strs("bots", d.Speakers.Names()).Logger()

	if speaker, ok := d.Speaker(); ok && mode == turn.ModeRoundRobin {
		outcome := "generated"
		text, err := r.gen.ReplyOne(ctx, history, r.cfg.Window, speaker, reply.Options{}, r.cfg.MaxTokens)
		if err != nil {
			text = reply.ErrorText(err)
			outcome = "error"
		}
		if err := r.append(ctx, &res, models.BotMessage(speaker.Name, text)); err != nil {
			return res, err
		}
		log.Debug().Str("outcome", outcome).Msg("room turn")
		r.outcome(outcome)
		return res, nil
	}

	segments, err := r.gen.ReplyAll(ctx, history, r.cfg.Window, d.Speakers, r.cfg.MaxTokens)
	if err != nil {
		if err := r.append(ctx, &res, models.SystemMessage(reply.ErrorText(err))); err != nil {
			return res, err
		}
		r.outcome("error")
		return res, nil
	}

	for _, seg := range segments {
		if err := r.append(ctx, &res, models.BotMessage(seg.Bot, seg.Content)); err != nil {
			return res, err
		}
	}
	log.Debug().Int("replies", len(segments)).Msg("room turn")
	r.outcome("generated")
	return res, nil
}
