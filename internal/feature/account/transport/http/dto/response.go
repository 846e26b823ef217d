package dto

import (
	"time"

	"account_backend/internal/feature/account/domain/entity"
)

// UserRes is the public view of a user. The password hash is never included.
type UserRes struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastUpdationTime *time.Time `json:"lastUpdationTime,omitempty"`
}

// NewUserRes masks the credential of u.
func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		CreatedAt:        u.CreatedAt,
		LastUpdationTime: u.LastUpdationTime,
	}
}

// NewUserListRes converts users, returning an empty (never nil) slice.
func NewUserListRes(users []entity.User) []UserRes {
	out := make([]UserRes, 0, len(users))
	for i := range users {
		out = append(out, NewUserRes(&users[i]))
	}
	return out
}

// LoginRes represents a successful login.
type LoginRes struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// MessageRes carries a single human readable message.
type MessageRes struct {
	Message string `json:"message"`
}
