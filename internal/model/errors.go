package model

import "errors"

// Domain errors shared across services; handlers map them to HTTP statuses.
var (
	ErrNotFound           = errors.New("record not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrCompanyNameExists  = errors.New("a company with this name already exists")
	ErrSKUExists          = errors.New("an item with this SKU already exists in your company")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email address is not confirmed")
	ErrCrossTenantAccess  = errors.New("target user belongs to a different company")
	ErrInvalidPermission  = errors.New("unknown permission name")
	ErrInvalidRole        = errors.New("unknown role name")
	ErrWrongTokenType     = errors.New("token is not a refresh token")
	ErrTokenExpired       = errors.New("invalid or expired token")
	ErrNoTenant           = errors.New("user is not attached to a company")
)
