package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carlavier/ai-chat-hub/internal/llm"
	"github.com/Carlavier/ai-chat-hub/internal/models"
	"github.com/Carlavier/ai-chat-hub/internal/store"
	"github.com/Carlavier/ai-chat-hub/internal/turn"
)

func newRoom(f *fixture, b llm.Backend, mode turn.Mode) *MultiBotRoom {
	return NewMultiBotRoom(f.store, f.generator(b), models.DefaultRoster(), RoomConfig{Mode: mode}, zerolog.Nop(), WithClock(f.clock.Now))
}

func TestRoomEmptySelectionIsMuted(t *testing.T) {
	f := newFixture(t)
	backend := answer("Jester: unused")
	r := newRoom(f, backend, turn.ModeCombined)

	res, err := r.Tick(context.Background(), RoomInput{Sender: "alice", Text: "anyone there?"})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, models.RoleUser, res.Messages[0].Role)
	assert.Equal(t, 0, backend.Calls())

	history := f.history(t, store.SurfaceRoom)
	require.Len(t, history, 1)
	for _, m := range history {
		assert.NotEqual(t, models.RoleAssistant, m.Role)
	}
}

func TestRoomCombinedSingleBotWithScriptedBackend(t *testing.T) {
	f := newFixture(t)
	r := newRoom(f, llm.NewScripted(), turn.ModeCombined)

	res, err := r.Tick(context.Background(), RoomInput{
		Sender: "alice",
		Text:   "just you, Jester",
		Bots:   []string{"Jester"},
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 2)

	reply := res.Messages[1]
	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, "Jester", reply.Bot)
	assert.Equal(t, llm.DefaultScript[0], reply.Content)

	history := f.history(t, store.SurfaceRoom)
	require.Len(t, history, 2)
	assert.Equal(t, "Jester", history[1].Bot)
}

func TestRoomCombinedAppendsSegmentsReversed(t *testing.T) {
	f := newFixture(t)
	backend := answer("Jester: knock knock\n\nPhilosopher: indeed")
	r := newRoom(f, backend, turn.ModeCombined)

	res, err := r.Tick(context.Background(), RoomInput{
		Sender: "alice",
		Text:   "tell me a joke",
		Bots:   []string{"Philosopher", "Jester"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, backend.Calls())

	history := f.history(t, store.SurfaceRoom)
	require.Len(t, history, 3)
	assert.Equal(t, "alice", history[0].Sender)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
	assert.Equal(t, "Philosopher", history[1].Bot)
	assert.Equal(t, "indeed", history[1].Content)
	assert.Equal(t, "Jester", history[2].Bot)
	assert.Equal(t, "knock knock", history[2].Content)
	assert.True(t, history[2].IsBot)
	assert.Len(t, res.Messages, 3)
}

func TestRoomCombinedContextIncludesUserMessage(t *testing.T) {
	f := newFixture(t)
	backend := answer("Detective: A clue!")
	r := newRoom(f, backend, turn.ModeCombined)

	_, err := r.Tick(context.Background(), RoomInput{Sender: "alice", Text: "look here", Bots: []string{"Detective"}})
	require.NoError(t, err)

	require.Len(t, backend.last, 3)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "alice: look here"}, backend.last[1])
}

func TestRoomMalformedReplyBecomesInlineError(t *testing.T) {
	f := newFixture(t)
	r := newRoom(f, answer("not a valid line"), turn.ModeCombined)

	res, err := r.Tick(context.Background(), RoomInput{Sender: "alice", Text: "hi", Bots: []string{"Jester"}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 2)

	notice := res.Messages[1]
	assert.Equal(t, models.RoleSystem, notice.Role)
	assert.Contains(t, notice.Content, "(Error: malformed reply")
}

func TestRoomCombinedBlankReplyAppendsNothing(t *testing.T) {
	f := newFixture(t)
	r := newRoom(f, answer("   "), turn.ModeCombined)

	res, err := r.Tick(context.Background(), RoomInput{Sender: "alice", Text: "hi", Bots: []string{"Jester"}})
	require.NoError(t, err)
	assert.Len(t, res.Messages, 1)
}

func TestRoomRoundRobin(t *testing.T) {
	f := newFixture(t)
	backend := &countingBackend{}
	backend.fn = func(p llm.Params) (string, error) {
		return fmt.Sprintf("%s speaking", p.Speakers[0]), nil
	}
	r := newRoom(f, backend, turn.ModeRoundRobin)
	ctx := context.Background()
	bots := []string{"Jester", "Philosopher", "Detective"}

	var speakers []string
	for i := 0; i < 4; i++ {
		res, err := r.Tick(ctx, RoomInput{Sender: "alice", Text: "next", Bots: bots})
		require.NoError(t, err)
		require.Len(t, res.Messages, 2)
		speakers = append(speakers, res.Messages[1].Bot)
		assert.Equal(t, res.Messages[1].Bot+" speaking", res.Messages[1].Content)
	}
	assert.Equal(t, []string{"Jester", "Philosopher", "Detective", "Jester"}, speakers)
	assert.Equal(t, 4, backend.Calls())
}

func TestRoomModeOverride(t *testing.T) {
	f := newFixture(t)
	backend := answer("just one line")
	r := newRoom(f, backend, turn.ModeCombined)

	res, err := r.Tick(context.Background(), RoomInput{
		Sender: "alice", Text: "hi", Bots: []string{"Detective"}, Mode: turn.ModeRoundRobin,
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 2)
	assert.Equal(t, "Detective", res.Messages[1].Bot)
	assert.Equal(t, "just one line", res.Messages[1].Content)
}

func TestRoomUnknownBot(t *testing.T) {
	f := newFixture(t)
	r := newRoom(f, answer("x"), turn.ModeCombined)

	_, err := r.Tick(context.Background(), RoomInput{Sender: "alice", Text: "hi", Bots: []string{"Clown"}})
	assert.ErrorIs(t, err, ErrUnknownBot)
	assert.Empty(t, f.history(t, store.SurfaceRoom))
}

func TestRoomRetention(t *testing.T) {
	f := newFixture(t, store.WithRetention(store.SurfaceRoom, store.RoomRetention(2)))
	r := newRoom(f, answer("Jester: ha\n\nPhilosopher: hm"), turn.ModeCombined)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := r.Tick(ctx, RoomInput{Sender: "alice", Text: fmt.Sprint(i), Bots: []string{"Jester", "Philosopher"}})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(f.history(t, store.SurfaceRoom)), 6)
	}
	history := f.history(t, store.SurfaceRoom)
	require.Len(t, history, 6)
	assert.Equal(t, "3", history[0].Content)
}
