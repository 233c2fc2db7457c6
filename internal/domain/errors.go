package domain

import "errors"

var (
	// ErrInvalidArgument is returned when a caller breaks an input contract (nil exam, missing ids).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrExamNotFound indicates the exam content could not be loaded.
	ErrExamNotFound = errors.New("exam not found")
	// ErrExamClosed is returned when an exam does not accept submissions.
	ErrExamClosed = errors.New("exam is not accepting submissions")
)
