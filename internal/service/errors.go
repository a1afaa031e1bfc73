// Package service provides business logic for the application.
package service

import "errors"

// Service errors.
var (
	ErrInvalidID             = errors.New("invalid id")
	ErrInvalidField          = errors.New("invalid field")
	ErrEmailRequired         = errors.New("email is required")
	ErrMissingTrackingFields = errors.New("parcelId and status are required")
	ErrParcelIDRequired      = errors.New("parcelId is required")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrParcelNotFound        = errors.New("parcel not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserExists            = errors.New("user already exists")
	ErrProcessorFailure      = errors.New("payment processing failed")
)
