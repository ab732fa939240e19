package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Carlavier/ai-chat-hub/internal/chat"
	"github.com/Carlavier/ai-chat-hub/internal/models"
	"github.com/Carlavier/ai-chat-hub/internal/store"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	maxTextBytes = 4096
)

// StoreInfo is the part of the store the handlers query directly.
type StoreInfo interface {
	Ping(ctx context.Context) error
	Retention(surface store.Surface) int
}

// Deps are the collaborators shared by all handlers.
type Deps struct {
	Chat   *chat.UserChat
	Arena  *chat.BotArena
	Room   *chat.MultiBotRoom
	Roster models.Roster
	Store  StoreInfo
	Logger zerolog.Logger
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	chat   *chat.UserChat
	arena  *chat.BotArena
	room   *chat.MultiBotRoom
	roster models.Roster
	store  StoreInfo
	logger zerolog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		chat:   d.Chat,
		arena:  d.Arena,
		room:   d.Room,
		roster: d.Roster,
		store:  d.Store,
		logger: d.Logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// storeError reports a controller failure. An unreachable store is shown as an
// inline banner rather than a server error.
func (h *Handler) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrStoreUnavailable) {
		h.logger.Warn().Err(err).Msg("store unavailable")
		h.Error(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	h.logger.Error().Err(err).Msg("request failed")
	h.Error(w, http.StatusInternalServerError, "internal error")
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Sender    string `json:"sender,omitempty"`
	Bot       string `json:"bot,omitempty"`
	Content   string `json:"content"`
	IsBot     bool   `json:"isBot"`
	Avatar    string `json:"avatar,omitempty"`
	Timestamp string `json:"timestamp"`
}

// TranscriptResponse is a surface's recent history plus what the request appended.
type TranscriptResponse struct {
	Surface  string            `json:"surface"`
	Messages []MessageResponse `json:"messages"`
	New      []MessageResponse `json:"new,omitempty"`
	Changed  bool              `json:"changed"`
}

func (h *Handler) toResponse(msgs []models.Message) []MessageResponse {
	out := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = MessageResponse{
			ID:        m.ID,
			Role:      string(m.Role),
			Sender:    m.Sender,
			Bot:       m.Bot,
			Content:   m.Content,
			IsBot:     m.IsBot,
			Timestamp: m.Timestamp.Format(time.RFC3339Nano),
		}
		if m.IsBot {
			out[i].Avatar = h.roster.Avatar(m.Speaker())
		}
	}
	return out
}

// transcript builds the response for a surface after a tick.
func (h *Handler) transcript(surface store.Surface, history []models.Message, res chat.Result) TranscriptResponse {
	return TranscriptResponse{
		Surface:  string(surface),
		Messages: h.toResponse(history),
		New:      h.toResponse(res.Messages),
		Changed:  res.Changed,
	}
}

// parseLimit reads the display window from the query string.
func parseLimit(r *http.Request) int {
	limit := defaultLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// senderOrAnonymous sanitizes sender, generating a placeholder when it is empty.
func senderOrAnonymous(sender string) string {
	if s := chat.SanitizeName(sender); s != "" {
		return s
	}
	return chat.AnonymousName()
}
