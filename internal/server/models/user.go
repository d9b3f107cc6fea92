// Package models defines server-side data models persisted in the database
// and the projections returned to callers.
package models

import "time"

// User is the stored user record. Password holds the bcrypt hash and is
// never the plaintext. RefreshToken is the single currently valid refresh
// token; nil after logout.
type User struct {
	ID           string
	UserName     string
	Email        string
	FullName     string
	Avatar       string
	CoverImage   string
	Password     string
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is a User without its credential and session fields.
// It is the only user shape services hand out.
type PublicUser struct {
	ID         string    `json:"_id"`
	UserName   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Public returns the sanitized projection of u.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:         u.ID,
		UserName:   u.UserName,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
