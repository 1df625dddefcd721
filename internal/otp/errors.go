package otp

import "errors"

// Verification errors. Handlers map these to HTTP statuses at the boundary.
var (
	// ErrInvalidMobile is returned when the mobile number is not exactly 10 digits.
	ErrInvalidMobile = errors.New("invalid mobile number")

	// ErrInvalidCode is returned when the submitted code is not exactly 6 digits.
	ErrInvalidCode = errors.New("invalid OTP format")

	// ErrNotRequested is returned when no code is pending for the channel.
	ErrNotRequested = errors.New("OTP expired or not requested")

	// ErrTooManyAttempts is returned once the attempt budget is exhausted.
	// The pending code is discarded and a new one must be requested.
	ErrTooManyAttempts = errors.New("too many attempts, request a new OTP")

	// ErrExpired is returned when the code is past its validity window.
	ErrExpired = errors.New("OTP expired")

	// ErrMismatch is returned when the submitted code does not match.
	// The pending code survives so remaining attempts can be used.
	ErrMismatch = errors.New("invalid OTP")
)
