package model

import "errors"

var (
	// ErrValidation is returned when a required field (student ID, name, subject) is empty.
	ErrValidation = errors.New("validation failed")

	// ErrNoMarks is returned when a record has no subjects.
	ErrNoMarks = errors.New("no marks entered")

	// ErrParse is returned when a mark entry is not a finite number.
	ErrParse = errors.New("invalid marks, please enter a number")

	// ErrNegativeMark is returned for a score below zero.
	ErrNegativeMark = errors.New("marks cannot be negative")

	// ErrNotFound is returned when no record exists for a student ID.
	ErrNotFound = errors.New("student not found")

	// ErrLoadCorruption is returned by backends when persisted state cannot be
	// read or parsed. The service recovers from it with an empty store.
	ErrLoadCorruption = errors.New("persisted state is unreadable")
)
