package domain

import "errors"

// Errores de dominio compartidos entre repositorios y servicios.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidInput       = errors.New("invalid input")
)
