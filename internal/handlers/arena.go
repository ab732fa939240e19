package handlers

import (
	"net/http"

	"github.com/Carlavier/ai-chat-hub/internal/store"
)

// GetArena ticks the bot arena and returns its transcript. Every viewer refresh
// is a tick, so the arena advances only while someone is watching.
func (h *Handler) GetArena(w http.ResponseWriter, r *http.Request) {
	res, err := h.arena.Tick(r.Context())
	if err != nil {
		h.storeError(w, err)
		return
	}

	history, err := h.arena.History(r.Context(), parseLimit(r))
	if err != nil {
		h.storeError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, h.transcript(store.SurfaceArena, history, res))
}

// ResetArena clears the arena log. The next tick seeds a new conversation.
func (h *Handler) ResetArena(w http.ResponseWriter, r *http.Request) {
	if err := h.arena.Reset(r.Context()); err != nil {
		h.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
