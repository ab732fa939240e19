package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Carlavier/ai-chat-hub/internal/chat"
	"github.com/Carlavier/ai-chat-hub/internal/store"
)

// PostChatRequest represents a user chat submission.
type PostChatRequest struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// GetChat returns the user chat transcript.
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	history, err := h.chat.History(r.Context(), parseLimit(r))
	if err != nil {
		h.storeError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, h.transcript(store.SurfaceUserChat, history, chat.Result{}))
}

// PostChat appends a human message to the user chat.
func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	var req PostChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Text) > maxTextBytes {
		h.Error(w, http.StatusUnprocessableEntity, "text too long (max 4096 bytes)")
		return
	}

	res, err := h.chat.Tick(r.Context(), chat.ChatInput{
		Sender: senderOrAnonymous(req.Sender),
		Text:   req.Text,
	})
	if err != nil {
		h.storeError(w, err)
		return
	}

	history, err := h.chat.History(r.Context(), parseLimit(r))
	if err != nil {
		h.storeError(w, err)
		return
	}

	status := http.StatusOK
	if res.Changed {
		status = http.StatusCreated
	}
	h.JSON(w, status, h.transcript(store.SurfaceUserChat, history, res))
}
