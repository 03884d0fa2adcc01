package entity

import "time"

type UserRole string

const (
	RoleStandard UserRole = "standard"
	RoleAdmin    UserRole = "admin"
)

type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserDeleted UserStatus = "deleted"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	CreatedAt    time.Time
}
