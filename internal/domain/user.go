package domain

import "time"

// User represents a registered account. PasswordHash is internal state and
// must never be serialized to clients; use Public for outward shapes.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	AvatarKey    string
	CreatedAt    time.Time
}

// PublicUser is the client-facing projection of a User.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
