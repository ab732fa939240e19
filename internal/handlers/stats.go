package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Carlavier/ai-chat-hub/internal/models"
	"github.com/Carlavier/ai-chat-hub/internal/store"
)

// SurfaceStats represents stats for a single conversation surface.
type SurfaceStats struct {
	Surface      string `json:"surface"`
	MessageCount int    `json:"message_count"`
	Retention    int    `json:"retention"`
	LastActivity string `json:"last_activity"`
}

// MessagePreview represents a preview of a message.
type MessagePreview struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	IsBot     bool   `json:"isBot"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

// StatsResponse represents the response from the stats endpoint.
type StatsResponse struct {
	Surfaces       []SurfaceStats   `json:"surfaces"`
	ActiveUsers    int              `json:"active_users"`
	Bots           int              `json:"bots"`
	RecentMessages []MessagePreview `json:"recent_messages"`
}

// historian is the read side shared by the three controllers.
type historian interface {
	History(ctx context.Context, n int) ([]models.Message, error)
}

// Stats returns hub statistics for the landing page.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	surfaces := []struct {
		surface store.Surface
		src     historian
		limit   int
	}{
		{store.SurfaceUserChat, h.chat, h.store.Retention(store.SurfaceUserChat)},
		{store.SurfaceArena, h.arena, h.store.Retention(store.SurfaceArena)},
		{store.SurfaceRoom, h.room, h.store.Retention(store.SurfaceRoom)},
	}

	stats := make([]SurfaceStats, 0, len(surfaces))
	var chatLog []models.Message
	for _, s := range surfaces {
		msgs, err := s.src.History(ctx, 0)
		if err != nil {
			h.storeError(w, err)
			return
		}
		lastActivity := "no activity yet"
		if len(msgs) > 0 {
			lastActivity = formatTimeAgo(msgs[len(msgs)-1].Timestamp)
		}
		stats = append(stats, SurfaceStats{
			Surface:      string(s.surface),
			MessageCount: len(msgs),
			Retention:    s.limit,
			LastActivity: lastActivity,
		})
		if s.surface == store.SurfaceUserChat {
			chatLog = msgs
		}
	}

	active, err := h.chat.Active(ctx)
	if err != nil {
		// Non-fatal, report nobody
		active = nil
	}

	if len(chatLog) > 5 {
		chatLog = chatLog[len(chatLog)-5:]
	}
	recentMessages := make([]MessagePreview, 0, len(chatLog))
	for _, msg := range chatLog {
		recentMessages = append(recentMessages, MessagePreview{
			ID:        msg.ID,
			Sender:    msg.Speaker(),
			IsBot:     msg.IsBot,
			Body:      preview(msg.Content, 200),
			Timestamp: msg.Timestamp.Format(time.RFC3339),
		})
	}

	h.JSON(w, http.StatusOK, StatsResponse{
		Surfaces:       stats,
		ActiveUsers:    len(active),
		Bots:           len(h.roster),
		RecentMessages: recentMessages,
	})
}

// formatTimeAgo formats a time as a human-readable "X ago" string.
func formatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return strconv.Itoa(mins) + " minutes ago"
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return strconv.Itoa(hours) + " hours ago"
	default:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return strconv.Itoa(days) + " days ago"
	}
}

// preview shortens s to at most n runes, marking the cut with "...".
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
