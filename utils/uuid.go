package utils

import (
	"github.com/google/uuid"
)

// ConnectionID returns a unique identifier for a websocket connection.
func ConnectionID() string {
	return "conn-" + uuid.NewString()
}
