/*
Package handler provides the HTTP handler function for WebSocket connection upgrading
and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting,
capacity checks, upgrading the HTTP connection to WebSocket, and initiating the client
lifecycle.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"aucroom/internal/app/room"
	"aucroom/internal/pkg/errs"
	"aucroom/internal/pkg/limiter"
	"aucroom/internal/pkg/logx"
	"aucroom/internal/pkg/randx"
	"aucroom/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// Capacity is re-checked at join time under the room lock; the check here simply
// avoids upgrading connections that have no chance of joining.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		if deps.Room.IsFull() {
			logx.Info("WebSocket connection rejected: Room is full.")
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomFull, deps.Config.MaxUsers))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connectionID := randx.ConnectionID()
		client := room.NewClient(deps.Room, conn, connectionID)

		go client.WritePump()

		deps.Room.Attach(connectionID, client)
		logx.Info("WebSocket connection established.", "connection_id", connectionID)

		client.ReadPump()
	}
}
