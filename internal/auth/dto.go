package auth

import (
	"github.com/salesopshq/salesops/internal/transport"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RequestPasswordResetDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordDTO struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse matches the client contract: the bearer token plus the
// actor it authenticates, returned together.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	Actor       Actor  `json:"actor"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// The Validate methods run the shared struct-tag validation and wrap
// failures in ValidationError so the handlers can map them to 400s.

func (d LoginDTO) Validate() error {
	if err := transport.ValidateDTO(d); err != nil {
		return ValidationError{Msg: err.Error()}
	}
	return nil
}

func (d RequestPasswordResetDTO) Validate() error {
	if err := transport.ValidateDTO(d); err != nil {
		return ValidationError{Msg: err.Error()}
	}
	return nil
}

func (d ResetPasswordDTO) Validate() error {
	if err := transport.ValidateDTO(d); err != nil {
		return ValidationError{Msg: err.Error()}
	}
	return nil
}
