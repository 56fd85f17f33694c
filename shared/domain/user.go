package domain

// User is the identity held by the client for the current session.
// It is never persisted client-side.
type User struct {
	Id       UserId   `json:"_id"`
	Username Username `json:"username"`
}
