package ws

import "time"

// ConnInfo identifies a live session attached to a chat room.
type ConnInfo struct {
	ConnID      string
	UserID      int
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
