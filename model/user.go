package model

import "time"

// User is the persisted credential record. RefreshTokens holds fingerprints of
// the refresh tokens that are currently valid for this user.
type User struct {
	ID            string    `json:"id" db:"id" bson:"_id"`
	Username      string    `json:"username" db:"username" bson:"username"`
	Email         string    `json:"email" db:"email" bson:"email"`
	PasswordHash  string    `json:"-" db:"password_hash" bson:"password_hash"`
	ProfileImage  string    `json:"profile_image,omitempty" db:"profile_image" bson:"profile_image"`
	RefreshTokens []string  `json:"-" db:"-" bson:"refresh_tokens"`
	CreatedAt     time.Time `json:"created_at" db:"created_at" bson:"created_at"`
}

// PublicUser is the profile returned to clients. It never carries the hash.
type PublicUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}

// Identity is the authenticated caller resolved from an access token.
type Identity struct {
	UserID string
}
