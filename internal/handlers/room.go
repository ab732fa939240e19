package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Carlavier/ai-chat-hub/internal/chat"
	"github.com/Carlavier/ai-chat-hub/internal/store"
	"github.com/Carlavier/ai-chat-hub/internal/turn"
)

// PostRoomRequest represents a multi-bot room submission.
type PostRoomRequest struct {
	Sender string   `json:"sender"`
	Text   string   `json:"text"`
	Bots   []string `json:"bots"`
	Mode   string   `json:"mode,omitempty"` // "combined" or "round_robin"
}

// GetRoom returns the multi-bot room transcript.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	history, err := h.room.History(r.Context(), parseLimit(r))
	if err != nil {
		h.storeError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, h.transcript(store.SurfaceRoom, history, chat.Result{}))
}

// PostRoom appends a human message and lets the selected bots answer.
func (h *Handler) PostRoom(w http.ResponseWriter, r *http.Request) {
	var req PostRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Text) > maxTextBytes {
		h.Error(w, http.StatusUnprocessableEntity, "text too long (max 4096 bytes)")
		return
	}

	mode, ok := turn.ParseMode(req.Mode, h.room.Mode())
	if !ok {
		h.Error(w, http.StatusBadRequest, "mode must be combined or round_robin")
		return
	}

	res, err := h.room.Tick(r.Context(), chat.RoomInput{
		Sender: senderOrAnonymous(req.Sender),
		Text:   req.Text,
		Bots:   req.Bots,
		Mode:   mode,
	})
	if errors.Is(err, chat.ErrUnknownBot) {
		h.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.storeError(w, err)
		return
	}

	history, err := h.room.History(r.Context(), parseLimit(r))
	if err != nil {
		h.storeError(w, err)
		return
	}

	status := http.StatusOK
	if res.Changed {
		status = http.StatusCreated
	}
	h.JSON(w, status, h.transcript(store.SurfaceRoom, history, res))
}

// ResetRoom clears the multi-bot room log.
func (h *Handler) ResetRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.room.Reset(r.Context()); err != nil {
		h.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
