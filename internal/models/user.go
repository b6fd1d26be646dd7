package models

import (
	"time"

	"github.com/lib/pq"
)

// User mirrors an identity provider account; ID is the provider's user id.
type User struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	FullName     string    `gorm:"column:full_name;type:text" json:"full_name"`
	PasswordHash string    `gorm:"column:password_hash;type:text" json:"-"` // local identity provider only
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (User) TableName() string { return "users" }

type Role struct {
	ID   int    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;type:text;uniqueIndex" json:"name"`
}

func (Role) TableName() string { return "roles" }

type UserRole struct {
	UserID string `gorm:"column:user_id;type:uuid;primaryKey"`
	RoleID int    `gorm:"column:role_id;primaryKey"`
}

func (UserRole) TableName() string { return "user_roles" }

// UserWithRoles is the settings page row.
type UserWithRoles struct {
	ID        string         `gorm:"column:id" json:"id"`
	Email     string         `gorm:"column:email" json:"email"`
	FullName  string         `gorm:"column:full_name" json:"full_name"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
	Roles     pq.StringArray `gorm:"column:roles;type:text[]" json:"roles"`
}
