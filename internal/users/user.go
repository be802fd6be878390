package users

import (
	"errors"
	"time"
)

type Role string

const (
	RoleSeller Role = "Seller"
	RoleBuyer  Role = "Buyer"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSeller, RoleBuyer:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidRole  = errors.New("role is not valid")
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	DepositCents int // mirrored from the machine account after each mutation
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
