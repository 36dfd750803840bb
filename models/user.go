package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User is an owner account. Every mine, employee, equipment and production
// record belongs to exactly one owner; ownership is the isolation boundary
// for all queries.
type User struct {
	ID        int       `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Password  string    `json:"-" db:"password"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserSignup struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func NewUser(name, email, phone, password string) (*User, error) {
	if name == "" || email == "" || password == "" {
		return nil, errors.New("invalid user details: name, email, and password are required")
	}

	user := &User{
		UserID:    "OWN-" + uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Password:  password,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	return user, nil
}
