package handlers

import "net/http"

// WhoResponse lists the humans active in the user chat.
type WhoResponse struct {
	Users []string `json:"users"`
	Count int      `json:"count"`
}

// Who handles the active-user listing.
func (h *Handler) Who(w http.ResponseWriter, r *http.Request) {
	users, err := h.chat.Active(r.Context())
	if err != nil {
		h.storeError(w, err)
		return
	}
	if users == nil {
		users = []string{}
	}
	h.JSON(w, http.StatusOK, WhoResponse{Users: users, Count: len(users)})
}
