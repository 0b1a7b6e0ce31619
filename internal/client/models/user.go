// Package models defines the client-side records persisted by taskgate.
package models

// User is the identity of a session. It is created on login or signup and
// never modified afterwards.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session pairs an opaque token with the user it was issued for.
type Session struct {
	Token string
	User  User
}
