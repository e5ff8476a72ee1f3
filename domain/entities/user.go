package entities

import "time"

// User is the identity record, created lazily on the first authenticated
// request and never deleted by the application.
type User struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser creates an identity record.
func NewUser(userID, email string) *User {
	return &User{
		UserID:    userID,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
}
