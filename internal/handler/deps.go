package handler

import (
	"aucroom/internal/app/room"
	"aucroom/internal/configs"
)

// AppDeps bundles the dependencies the HTTP layer needs: the application
// configuration and the single authoritative Room.
type AppDeps struct {
	Config *configs.AppConfig
	Room   *room.Room
}
