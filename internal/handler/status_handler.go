package handler

import (
	"net/http"

	"aucroom/internal/app/room"
	"aucroom/internal/pkg/resp"
)

// StatusResponse is the read-only room snapshot served at /api/status.
type StatusResponse struct {
	Users       room.UserCountPayload     `json:"users"`
	ChatEnabled bool                      `json:"chatEnabled"`
	Auction     room.AuctionStatusPayload `json:"auction"`
}

// HandleStatus returns a handler serving the current room occupancy, chat flag,
// and active auction snapshot. Purely observational; it never mutates state.
func HandleStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, chatEnabled, auction := deps.Room.Status()

		resp.RespondSuccess(w, r, StatusResponse{
			Users:       users,
			ChatEnabled: chatEnabled,
			Auction:     auction,
		})
	}
}
