package domain

import "time"

type User struct {
	ID           int32      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Currency     string     `json:"currency"`
	Timezone     string     `json:"timezone"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

type UserRepository interface {
	Create(user *User) (*User, error)
	GetByID(id int32) (*User, error)
	GetByEmail(email string) (*User, error)
	TouchLastLogin(id int32, at time.Time) error
}
