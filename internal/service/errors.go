package service

import "errors"

var (
	// auth-specific errors
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")

	// ingestion-specific errors
	ErrEmptyFile          = errors.New("empty file")
	ErrInvalidSpreadsheet = errors.New("invalid spreadsheet")
	ErrCorruptSnapshot    = errors.New("stored snapshot is corrupt")

	// photo-specific errors
	ErrNoFiles         = errors.New("no files uploaded")
	ErrTooManyFiles    = errors.New("too many files in one upload")
	ErrUnsupportedType = errors.New("only jpeg and png images are allowed")
	ErrFileTooLarge    = errors.New("file too large")
	ErrTooManyPhotos   = errors.New("photo limit reached")
)
