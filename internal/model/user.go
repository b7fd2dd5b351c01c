package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	Name          string     `json:"name" db:"name"`
	Role          Role       `json:"role" db:"role"`
	Credits       float64    `json:"credits" db:"credits"`
	ReferralCode  string     `json:"referral_code" db:"referral_code"`
	ReferralCount int        `json:"referral_count" db:"referral_count"`
	ReferredBy    *uuid.UUID `json:"referred_by,omitempty" db:"referred_by"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
