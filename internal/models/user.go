package models

// User is the public identity of a marketplace user, as exposed to chat
// counterparts. Account data beyond id and name lives outside this service.
type User struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
