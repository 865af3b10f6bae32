package domain

import (
	"errors"
	"time"
)

// Seeded role names. Roles are reference data managed by administrators;
// these constants exist for the default signup assignment and the seeder.
const (
	RoleAdmin     = "admin"
	RoleShopOwner = "shop_owner"
	RoleBuyer     = "buyer"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("phone already registered")
var ErrSessionInvalid = errors.New("invalid or expired renewal credential")

// User models a registered marketplace account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	RoleID       string    `json:"-"`
	RoleName     string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the authenticated identity attached to a request after token
// verification. It lives for the request only and is never persisted.
type Principal struct {
	ID       string
	Phone    string
	RoleName string
}
