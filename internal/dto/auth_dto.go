package dto

// UserSignupRequest registers a candidate account.
type UserSignupRequest struct {
	Name            string `json:"user_name" validate:"required,min=2"`
	Password        string `json:"user_pass" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_pass" validate:"required,eqfield=Password"`
}

// UserLoginRequest authenticates a candidate.
type UserLoginRequest struct {
	Name     string `json:"user_name" validate:"required"`
	Password string `json:"user_pass" validate:"required"`
}

// HRSignupRequest registers an HR account.
type HRSignupRequest struct {
	Email           string `json:"hr_email" validate:"required,email"`
	Username        string `json:"hr_username" validate:"required,min=2"`
	Password        string `json:"hr_pass" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_pass" validate:"required,eqfield=Password"`
}

// HRLoginRequest authenticates an HR account.
type HRLoginRequest struct {
	Email    string `json:"hr_email" validate:"required,email"`
	Password string `json:"hr_pass" validate:"required"`
}

// AuthResponse carries the issued session context: a verifiable token plus
// the identity it was minted for.
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
}
