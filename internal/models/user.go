// Package models contains data models for the voting portal.
package models

import "time"

// Role is the coarse permission level of an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleVoter Role = "voter"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleVoter
}

// User represents an approved account (administrator or voter).
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"type:varchar(191);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"type:varchar(16);not null;default:voter"`
	FullName     string    `json:"full_name" gorm:"type:varchar(191)"`
	NationalID   *string   `json:"national_id,omitempty" gorm:"type:varchar(64);uniqueIndex"`
	AuthVerified bool      `json:"auth_verified" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// DisplayName returns the name shown in the UI, falling back to the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
