package models

import "time"

// Chat is a two-party conversation. user1_id/user2_id hold the normalized
// member pair (user1_id < user2_id) so the unique constraint can dedupe
// concurrent creations; authorization runs against chat_members rows.
type Chat struct {
	ID        int       `db:"id" json:"id"`
	User1ID   int       `db:"user1_id" json:"-"`
	User2ID   int       `db:"user2_id" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Members returns both member ids.
func (c Chat) Members() []int {
	return []int{c.User1ID, c.User2ID}
}

// HasMember reports whether userID is one of the two participants.
func (c Chat) HasMember(userID int) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherMember returns the counterpart of userID in the chat.
func (c Chat) OtherMember(userID int) int {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// ChatMember is a row of the chat_members pivot.
type ChatMember struct {
	ChatID   int       `db:"chat_id" json:"chat_id"`
	UserID   int       `db:"user_id" json:"user_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// ChatSummary is the per-user view of a chat: the other participant plus the
// most recent message, fetched in one query to avoid N+1 loads.
type ChatSummary struct {
	ChatID       int       `db:"chat_id" json:"chat_id"`
	OtherUserID  int       `db:"other_user_id" json:"user_id"`
	OtherName    string    `db:"other_name" json:"user_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LastMessage  *Message  `json:"last_message,omitempty"`
	LastActivity time.Time `db:"last_activity" json:"last_activity"`
}
