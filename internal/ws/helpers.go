package ws

import (
	"fmt"

	"github.com/google/uuid"
)

func newConnID() string {
	return uuid.NewString()
}

// channelName is the logical channel key clients subscribe to, e.g. "chat.7".
func channelName(chatID int) string {
	return fmt.Sprintf("chat.%d", chatID)
}
