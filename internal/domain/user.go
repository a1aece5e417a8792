package domain

import "time"

// User represents a registered account.
type User struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile holds the editable public details of a user.
type Profile struct {
	UserID      uint       `json:"user_id"`
	Name        string     `json:"name"`
	About       string     `json:"about"`
	Country     string     `json:"country"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

// FollowCounts are the sizes of a user's follower and followee sets.
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Username     string `json:"username" form:"username" binding:"required,max=150"`
	Email        string `json:"email" form:"email" binding:"required,email"`
	Password     string `json:"password" form:"password" binding:"required,min=6"`
	Confirmation string `json:"confirmation" form:"confirmation" binding:"required"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// UpdateProfileRequest carries the profile fields to change. Nil fields are kept.
type UpdateProfileRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=64"`
	About       *string `json:"about"`
	Country     *string `json:"country" binding:"omitempty,max=64"`
	DateOfBirth *string `json:"date_of_birth"` // YYYY-MM-DD, empty clears
}

// AuthResponse represents authentication response with a bearer token.
type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}
