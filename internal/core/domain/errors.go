package domain

import "errors"

var (
	ErrInsufficientBalance     = errors.New("insufficient coins")
	ErrDuplicateAccount        = errors.New("user with this email already exists")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrExternalOperationFailed = errors.New("image service request failed")
	ErrUserNotFound            = errors.New("user not found")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrTransactionSettled      = errors.New("transaction already settled")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrPlanNotFound            = errors.New("plan not found")
	ErrInvalidAmount           = errors.New("amount must not be negative")
	ErrInvalidReference        = errors.New("payment reference is required")
	ErrInvalidInput            = errors.New("invalid input")
	ErrForbidden               = errors.New("access forbidden")
	ErrStorageUnavailable      = errors.New("storage unavailable")
)
