package store

import (
	"context"
	"errors"
	"time"

	"github.com/Carlavier/ai-chat-hub/internal/models"
)

// ErrStoreUnavailable is returned when the backing service cannot be reached.
var ErrStoreUnavailable = errors.New("store unavailable")

// Surface identifies one of the independent conversation logs.
type Surface string

const (
	SurfaceUserChat Surface = "chat_history"
	SurfaceArena    Surface = "bot_arena_history"
	SurfaceRoom     Surface = "multi_bot_history"
)

// DefaultMaxTurns bounds the multi-bot room to 2*MaxTurns+2 messages.
const DefaultMaxTurns = 10

// Key returns the Redis key of the surface's log.
func (s Surface) Key() string {
	return string(s)
}

// Retention returns the default number of trailing messages kept for the surface.
func (s Surface) Retention() int {
	switch s {
	case SurfaceUserChat:
		return 100
	case SurfaceArena:
		return 30
	case SurfaceRoom:
		return RoomRetention(DefaultMaxTurns)
	default:
		return 100
	}
}

// RoomRetention returns the multi-bot room limit for the given number of turns.
func RoomRetention(maxTurns int) int {
	return 2*maxTurns + 2
}

// HistoryStore is an ordered, bounded log of messages per surface.
type HistoryStore interface {
	// Append adds msg to the end of the log and trims the log to its retention
	// limit. ID and Timestamp are filled in when empty.
	Append(ctx context.Context, surface Surface, msg models.Message) (models.Message, error)

	// ReadWindow returns the entries between from and to inclusive, oldest first.
	// Negative indices count from the end of the log.
	ReadWindow(ctx context.Context, surface Surface, from, to int64) ([]models.Message, error)

	// Recent returns the last n entries, or the whole log when n <= 0.
	Recent(ctx context.Context, surface Surface, n int) ([]models.Message, error)

	// Clear deletes the whole log.
	Clear(ctx context.Context, surface Surface) error

	// Retention reports the limit enforced for the surface.
	Retention(surface Surface) int
}

// PresenceStore keeps TTL-bound markers for active participants.
type PresenceStore interface {
	SetPresence(ctx context.Context, name string, ttl time.Duration) error
	ListPresence(ctx context.Context) ([]string, error)
}
