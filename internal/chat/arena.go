package chat

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Carlavier/ai-chat-hub/internal/models"
	"github.com/Carlavier/ai-chat-hub/internal/reply"
	"github.com/Carlavier/ai-chat-hub/internal/store"
	"github.com/Carlavier/ai-chat-hub/internal/turn"
)

// ArenaConfig tunes the bot arena.
type ArenaConfig struct {
	Delay     time.Duration // Quiet period between turns
	Window    int           // Messages of context per turn
	MaxTokens int
}

// DefaultArenaConfig mirrors the pacing observers are used to.
func DefaultArenaConfig() ArenaConfig {
	return ArenaConfig{Delay: turn.DefaultArenaDelay, Window: 6, MaxTokens: 80}
}

// BotArena lets the first two roster bots talk to each other forever.
type BotArena struct {
	base
	gen   *reply.Generator
	arena turn.Arena
	cfg   ArenaConfig
}

// NewBotArena creates the arena controller. The roster needs at least two bots.
func NewBotArena(s store.HistoryStore, gen *reply.Generator, roster models.Roster, cfg ArenaConfig, logger zerolog.Logger, opts ...Option) (*BotArena, error) {
	def := DefaultArenaConfig()
	if cfg.Delay <= 0 {
		cfg.Delay = def.Delay
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}

	arena, ok := turn.NewArena(roster, cfg.Delay)
	if !ok {
		return nil, errors.New("arena needs at least two bots")
	}

	return &BotArena{
		base:  newBase(s, store.SurfaceArena, logger, opts),
		gen:   gen,
		arena: arena,
		cfg:   cfg,
	}, nil
}

// Bots returns the two arena participants.
func (a *BotArena) Bots() models.Roster {
	return models.Roster{a.arena.A, a.arena.B}
}

// Tick appends the next arena message if one is due. An empty arena is opened
// with the seed message without calling the backend; a failed generation is
// stored as an inline error in the speaker's name so the dialogue moves on.
func (a *BotArena) Tick(ctx context.Context) (Result, error) {
	var res Result

	history, err := a.window(ctx)
	if err != nil {
		return res, err
	}

	d := a.arena.Next(history, a.now())
	if !d.Due {
		a.outcome("idle")
		return res, nil
	}
	speaker, _ := d.Speaker()
	log := a.logger.With().Str("bot", speaker.Name).Logger()

	if d.Seed != "" {
		if err := a.append(ctx, &res, models.BotMessage(speaker.Name, d.Seed)); err != nil {
			return res, err
		}
		log.Info().Msg("arena seeded")
		a.outcome("seed")
		return res, nil
	}

	outcome := "generated"
	text, err := a.gen.ReplyOne(ctx, history, a.cfg.Window, speaker, reply.Options{PeersAsUser: true}, a.cfg.MaxTokens)
	if err != nil {
		text = reply.ErrorText(err)
		outcome = "error"
	}

	if err := a.append(ctx, &res, models.BotMessage(speaker.Name, text)); err != nil {
		return res, err
	}
	log.Debug().Str("outcome", outcome).Msg("arena turn")
	a.outcome(outcome)
	return res, nil
}
