package models

import "errors"

// Ошибки валидации входных данных.
var (
	ErrEmptyAddress     = errors.New("wallet address is empty")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrMultilineField   = errors.New("name and company must be a single line")
)

// Ошибки квоты и тарифа.
var (
	ErrQuotaExceeded  = errors.New("scan limit reached")
	ErrFreePlan       = errors.New("free plan does not require payment")
	ErrPlanNotFound   = errors.New("plan not found")
	ErrUnknownNetwork = errors.New("unknown payment network")
)

// Ошибки аутентификации и доступа.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email verification required")
	ErrForbidden          = errors.New("access denied")
	ErrSessionNotFound    = errors.New("session not found")
	ErrConflict           = errors.New("concurrent update conflict")
)

// Ошибки хранилища.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)
