package auth

import "github.com/hamzamohiuddin1/msaconnect/internal/user"

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	Name             string `json:"name" validate:"required,min=2"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	PhoneNumber      string `json:"phoneNumber" validate:"required,min=7"`
	Major            string `json:"major" validate:"required,min=2"`
	Year             string `json:"year" validate:"required,oneof=Freshman Sophomore Junior Senior Graduate"`
	Gender           string `json:"gender" validate:"required,oneof=Brother Sister"`
	GenderPreference bool   `json:"genderPreference"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is a partial update: nil fields are left untouched.
// Email and gender are immutable after registration.
type UpdateProfileRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=2"`
	PhoneNumber      *string `json:"phoneNumber" validate:"omitempty,min=7"`
	Major            *string `json:"major" validate:"omitempty,min=2"`
	Year             *string `json:"year" validate:"omitempty,oneof=Freshman Sophomore Junior Senior Graduate"`
	GenderPreference *bool   `json:"genderPreference"`
}

// AuthResponse is the response for successful authentication
type AuthResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token,omitempty"`
	User    *user.User `json:"user,omitempty"`
}
