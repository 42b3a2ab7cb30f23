package user

import (
	"time"

	"nexussync/internal/collab"
)

// User represents a user in the system. The display metadata (role, avatar
// glyph, color tag) is what the collaboration layer shows next to presence
// and edit markers.
type User struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	Email        string `gorm:"uniqueIndex"`
	Password     string `gorm:"-"` // input only, not stored in db
	PasswordHash string
	Role         string
	Avatar       string
	Color        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	IsActive     bool `gorm:"default:true"`
}

// SafeUser represents a user without sensitive information
type SafeUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// ToSafeUser converts a User to a SafeUser
func (u *User) ToSafeUser() SafeUser {
	return SafeUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Avatar:    u.Avatar,
		Color:     u.Color,
		CreatedAt: u.CreatedAt,
		IsActive:  u.IsActive,
	}
}

// Profile maps a user onto the collaboration display profile.
func (u *User) Profile() collab.Profile {
	return collab.Profile{
		ID:     u.ID,
		Name:   u.Name,
		Role:   u.Role,
		Avatar: u.Avatar,
		Color:  u.Color,
	}
}
