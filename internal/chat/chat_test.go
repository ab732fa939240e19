package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carlavier/ai-chat-hub/internal/llm"
	"github.com/Carlavier/ai-chat-hub/internal/models"
	"github.com/Carlavier/ai-chat-hub/internal/presence"
	"github.com/Carlavier/ai-chat-hub/internal/reply"
	"github.com/Carlavier/ai-chat-hub/internal/store"
)

// fakeClock is a settable clock shared by controllers in a test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingBackend records calls and answers with fn.
type countingBackend struct {
	mu    sync.Mutex
	calls int
	last  []llm.Message
	fn    func(params llm.Params) (string, error)
}

func (b *countingBackend) Name() string { return "test" }

func (b *countingBackend) Generate(_ context.Context, messages []llm.Message, params llm.Params) (string, error) {
	b.mu.Lock()
	b.calls++
	b.last = messages
	b.mu.Unlock()
	return b.fn(params)
}

func (b *countingBackend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func answer(text string) *countingBackend {
	return &countingBackend{fn: func(llm.Params) (string, error) { return text, nil }}
}

type fixture struct {
	mr    *miniredis.Miniredis
	store *store.RedisStore
	clock *fakeClock
}

func newFixture(t *testing.T, opts ...store.Option) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	return &fixture{mr: mr, store: store.NewRedisStoreFromClient(client, opts...), clock: newFakeClock()}
}

func (f *fixture) generator(b llm.Backend) *reply.Generator {
	return reply.NewGenerator(b, reply.Config{Model: "test-model", Timeout: time.Second}, zerolog.Nop())
}

func (f *fixture) history(t *testing.T, surface store.Surface) []models.Message {
	t.Helper()
	h, err := f.store.Recent(context.Background(), surface, 0)
	require.NoError(t, err)
	return h
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "alice", SanitizeName("  alice\x00\n "))
	assert.Len(t, SanitizeName(string(make([]byte, 300))), 0)

	long := ""
	for i := 0; i < 150; i++ {
		long += "x"
	}
	assert.Len(t, SanitizeName(long), 100)
}

func TestAnonymousName(t *testing.T) {
	name := AnonymousName()
	assert.Regexp(t, `^User_\d{4}$`, name)
}

func TestRunTickerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	calls := 0

	done := make(chan struct{})
	go func() {
		RunTicker(ctx, 5*time.Millisecond, zerolog.Nop(), func(context.Context) error {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 3 {
				cancel()
			}
			return nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ticker did not stop")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, calls, 3)
}

func newTracker(s *store.RedisStore) *presence.Tracker {
	return presence.NewTracker(s, presence.DefaultTTL)
}
