package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleAdmin   UserRole = "ADMIN"
)

type User struct {
	gorm.Model
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"` // Bcrypt hash of password
	Name         string `gorm:"not null"`
	Department   string `gorm:"index"`
	Level        int
	Term         int
	Phone        string
	Role         UserRole `gorm:"not null;default:'STUDENT'"`
	ActiveStatus bool     `gorm:"not null;default:true"`
	LastLogin    time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
