package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email is already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrSessionSubmitted    = errors.New("session already submitted")
	ErrScreeningIncomplete = errors.New("screening is not complete")
	ErrDraftNotFound       = errors.New("draft not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrOptionNotFound      = errors.New("option not found")
	ErrExportNotConfigured = errors.New("research export storage is not configured")
)
