package handlers

import "net/http"

// BotInfo describes a roster entry. Persona prompts are not exposed.
type BotInfo struct {
	Name        string  `json:"name"`
	Avatar      string  `json:"avatar"`
	Temperature float64 `json:"temperature"`
	InArena     bool    `json:"in_arena"`
}

// BotListResponse represents the roster listing.
type BotListResponse struct {
	Bots     []BotInfo `json:"bots"`
	RoomMode string    `json:"room_mode"`
}

// ListBots returns the roster in round-robin order.
func (h *Handler) ListBots(w http.ResponseWriter, r *http.Request) {
	arena := h.arena.Bots()

	bots := make([]BotInfo, len(h.roster))
	for i, b := range h.roster {
		_, inArena := arena.Find(b.Name)
		bots[i] = BotInfo{
			Name:        b.Name,
			Avatar:      h.roster.Avatar(b.Name),
			Temperature: b.Temperature,
			InArena:     inArena,
		}
	}

	h.JSON(w, http.StatusOK, BotListResponse{Bots: bots, RoomMode: string(h.room.Mode())})
}
