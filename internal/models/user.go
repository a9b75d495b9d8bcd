package models

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is the local projection of an identity managed by the external
// auth provider. ExternalID is the provider's subject claim.
type User struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ExternalID string    `json:"-" gorm:"not null;size:100;uniqueIndex"`
	Name       string    `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Email      string    `json:"email" gorm:"not null;size:200;uniqueIndex" validate:"required,email"`
	Role       UserRole  `json:"role" gorm:"not null;size:20;default:user" validate:"omitempty,user_role"`
	CreatedAt  time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
