package service

import (
	"errorwatch/state"

	"gorm.io/gorm"
)

// Services is the global service container
type Services struct {
	Errors *ErrorService
	Hub    *state.Hub
}

// GlobalServices is the global service instance
var GlobalServices *Services

// InitServices initializes all services
func InitServices(db *gorm.DB, hub *state.Hub, maxStored int) {
	GlobalServices = &Services{
		Errors: NewErrorService(db, hub, maxStored),
		Hub:    hub,
	}
}
