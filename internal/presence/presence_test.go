package presence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carlavier/ai-chat-hub/internal/store"
)

func newTracker(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *Tracker) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewTracker(store.NewRedisStoreFromClient(client), ttl)
}

func TestTouchIsImmediatelyVisible(t *testing.T) {
	_, tr := newTracker(t, 0)
	ctx := context.Background()

	require.NoError(t, tr.Touch(ctx, "zoe"))
	require.NoError(t, tr.Touch(ctx, "adam"))
	require.NoError(t, tr.Touch(ctx, ""))

	names, err := tr.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"adam", "zoe"}, names)
}

func TestActiveDropsExpiredNames(t *testing.T) {
	mr, tr := newTracker(t, DefaultTTL)
	ctx := context.Background()

	require.NoError(t, tr.Touch(ctx, "alice"))
	mr.FastForward(DefaultTTL + time.Second)

	names, err := tr.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRefreshExtendsPresence(t *testing.T) {
	mr, tr := newTracker(t, DefaultTTL)
	ctx := context.Background()

	require.NoError(t, tr.Touch(ctx, "alice"))
	mr.FastForward(20 * time.Second)
	require.NoError(t, tr.Touch(ctx, "alice"))
	mr.FastForward(20 * time.Second)

	names, err := tr.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, names)
}

func TestNegativeTTLExpiresImmediately(t *testing.T) {
	_, tr := newTracker(t, -1)
	ctx := context.Background()

	require.NoError(t, tr.Touch(ctx, "alice"))

	names, err := tr.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}
