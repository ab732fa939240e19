package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carlavier/ai-chat-hub/internal/models"
)

func setupTestStore(t *testing.T, opts ...Option) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, NewRedisStoreFromClient(client, opts...)
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	msg, err := s.Append(ctx, SurfaceUserChat, models.UserMessage("alice", "hello"))
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())

	history, err := s.Recent(ctx, SurfaceUserChat, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, msg.ID, history[0].ID)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, models.RoleUser, history[0].Role)
}

func TestAppendTrimsToRetention(t *testing.T) {
	_, s := setupTestStore(t, WithRetention(SurfaceArena, 5))
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := s.Append(ctx, SurfaceArena, models.BotMessage("Jester", fmt.Sprintf("line %d", i)))
		require.NoError(t, err)

		history, err := s.ReadWindow(ctx, SurfaceArena, 0, -1)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(history), 5)
		assert.Equal(t, fmt.Sprintf("line %d", i), history[len(history)-1].Content)
	}

	history, err := s.ReadWindow(ctx, SurfaceArena, 0, -1)
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, "line 7", history[0].Content)
	assert.Equal(t, "line 11", history[4].Content)
}

func rawRecord(t *testing.T, mr *miniredis.Miniredis, surface Surface) map[string]interface{} {
	t.Helper()
	items, err := mr.List(surface.Key())
	require.NoError(t, err)
	require.Len(t, items, 1)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(items[0]), &rec))
	return rec
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestRecordShapePerSurface(t *testing.T) {
	mr, s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Append(ctx, SurfaceUserChat, models.UserMessage("alice", "hello"))
	require.NoError(t, err)
	rec := rawRecord(t, mr, SurfaceUserChat)
	assert.ElementsMatch(t, []string{"id", "sender", "text", "isBot", "timestamp"}, keys(rec))
	assert.Equal(t, "hello", rec["text"])
	assert.Equal(t, false, rec["isBot"])

	_, err = s.Append(ctx, SurfaceArena, models.BotMessage("Jester", "Hello, let's start a conversation!"))
	require.NoError(t, err)
	rec = rawRecord(t, mr, SurfaceArena)
	assert.ElementsMatch(t, []string{"id", "sender", "text", "isBot", "timestamp"}, keys(rec))
	assert.Equal(t, "Jester", rec["sender"])
	assert.Equal(t, true, rec["isBot"])

	_, err = s.Append(ctx, SurfaceRoom, models.BotMessage("Detective", "a clue"))
	require.NoError(t, err)
	rec = rawRecord(t, mr, SurfaceRoom)
	assert.ElementsMatch(t, []string{"id", "role", "sender", "bot", "content", "timestamp"}, keys(rec))
	assert.Equal(t, "assistant", rec["role"])
	assert.Equal(t, "a clue", rec["content"])
}

func TestRecordsRoundTripPerSurface(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		surface Surface
		msg     models.Message
	}{
		{SurfaceUserChat, models.UserMessage("alice", "hi")},
		{SurfaceArena, models.BotMessage("Jester", "ha")},
		{SurfaceRoom, models.UserMessage("bob", "question")},
		{SurfaceRoom, models.BotMessage("Detective", "answer")},
		{SurfaceRoom, models.SystemMessage("(Error: boom)")},
	}
	for _, tc := range cases {
		tc.msg.Timestamp = at
		stored, err := s.Append(ctx, tc.surface, tc.msg)
		require.NoError(t, err)

		history, err := s.Recent(ctx, tc.surface, 1)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, stored, history[0], "surface %s", tc.surface)
	}
}

func TestDefaultRetention(t *testing.T) {
	_, s := setupTestStore(t)

	assert.Equal(t, 100, s.Retention(SurfaceUserChat))
	assert.Equal(t, 30, s.Retention(SurfaceArena))
	assert.Equal(t, 22, s.Retention(SurfaceRoom))
	assert.Equal(t, 42, RoomRetention(20))
}

func TestReadWindowAbsentKeyIsEmpty(t *testing.T) {
	_, s := setupTestStore(t)

	history, err := s.ReadWindow(context.Background(), SurfaceRoom, 0, -1)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestReadWindowSkipsUndecodableEntries(t *testing.T) {
	mr, s := setupTestStore(t)
	ctx := context.Background()

	_, err := mr.RPush(SurfaceUserChat.Key(), "not json")
	require.NoError(t, err)
	_, err = s.Append(ctx, SurfaceUserChat, models.UserMessage("bob", "hi"))
	require.NoError(t, err)

	history, err := s.Recent(ctx, SurfaceUserChat, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "bob", history[0].Sender)
}

func TestRecentReturnsTail(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := s.Append(ctx, SurfaceUserChat, models.UserMessage("bob", fmt.Sprint(i)))
		require.NoError(t, err)
	}

	history, err := s.Recent(ctx, SurfaceUserChat, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2", history[0].Content)
	assert.Equal(t, "3", history[1].Content)
}

func TestClear(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Append(ctx, SurfaceArena, models.BotMessage("Jester", "hi"))
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx, SurfaceArena))

	history, err := s.Recent(ctx, SurfaceArena, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPresenceExpires(t *testing.T) {
	mr, s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetPresence(ctx, "alice", 30*time.Second))
	require.NoError(t, s.SetPresence(ctx, "bob", 60*time.Second))

	names, err := s.ListPresence(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)

	mr.FastForward(31 * time.Second)

	names, err = s.ListPresence(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, names)
}

func TestPresenceZeroTTLIsNeverListed(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetPresence(ctx, "ghost", 0))

	names, err := s.ListPresence(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestUnavailableStore(t *testing.T) {
	mr, s := setupTestStore(t)
	mr.Close()
	ctx := context.Background()

	_, err := s.Append(ctx, SurfaceUserChat, models.UserMessage("alice", "hello"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = s.Recent(ctx, SurfaceUserChat, 0)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.ErrorIs(t, s.Ping(ctx), ErrStoreUnavailable)
}
