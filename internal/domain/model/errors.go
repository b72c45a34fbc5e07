package model

import "errors"

// Sentinel errors for directory operations. Callers match them with errors.Is.
var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrAlreadySignedUp  = errors.New("student is already signed up")
	ErrNotRegistered    = errors.New("student is not registered for this activity")
	ErrActivityFull     = errors.New("activity is full")
	ErrEmailRequired    = errors.New("email is required")
)
