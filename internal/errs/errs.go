// Package errs defines the typed errors returned by the authorization core.
//
// Every error type matches a sentinel through errors.Is, so callers at the
// HTTP boundary can translate them without knowing the concrete type:
//
//	if errors.Is(err, errs.ErrForbidden) { ... }
//
// TenantIsolationError is a specialization of AuthorizationError: it matches
// both ErrTenantIsolation and ErrForbidden.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName matches DuplicateNameError.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrForbidden matches AuthorizationError and TenantIsolationError.
	ErrForbidden = errors.New("forbidden")

	// ErrTenantIsolation matches TenantIsolationError only.
	ErrTenantIsolation = errors.New("tenant isolation violation")

	// ErrValidation matches ValidationError.
	ErrValidation = errors.New("validation failed")
)

// NotFoundError is returned when a referenced permission, role, user or tenant does not exist.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.Key)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateNameError is returned when a unique name (permission name, role name per
// tenant, user email) is already taken.
type DuplicateNameError struct {
	Entity string
	Name   string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.Name)
}

// Is reports whether target is ErrDuplicateName.
func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// AuthorizationError is returned when the caller lacks a capability.
type AuthorizationError struct {
	// Permission is the capability that was missing, if the denial was a capability check.
	Permission string
	Reason     string
}

func (e *AuthorizationError) Error() string {
	if e.Permission != "" {
		return fmt.Sprintf("forbidden: missing permission %q", e.Permission)
	}

	if e.Reason != "" {
		return "forbidden: " + e.Reason
	}

	return "forbidden"
}

// Is reports whether target is ErrForbidden.
func (e *AuthorizationError) Is(target error) bool {
	return target == ErrForbidden
}

// TenantIsolationError is returned when a caller touches a row of another tenant.
type TenantIsolationError struct {
	CallerTenant *uint
	TargetTenant *uint
}

func (e *TenantIsolationError) Error() string {
	return fmt.Sprintf("cross-tenant access denied (caller tenant %s, target tenant %s)",
		tenantString(e.CallerTenant), tenantString(e.TargetTenant))
}

// Is reports whether target is ErrTenantIsolation or ErrForbidden.
func (e *TenantIsolationError) Is(target error) bool {
	return target == ErrTenantIsolation || target == ErrForbidden
}

// ValidationError is returned for structurally invalid requests.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return e.Field + ": " + e.Message
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFound returns a NotFoundError.
func NotFound(entity string, key any) error {
	return &NotFoundError{Entity: entity, Key: key}
}

// Duplicate returns a DuplicateNameError.
func Duplicate(entity, name string) error {
	return &DuplicateNameError{Entity: entity, Name: name}
}

// MissingPermission returns an AuthorizationError for a failed capability check.
func MissingPermission(permission string) error {
	return &AuthorizationError{Permission: permission}
}

// Forbidden returns an AuthorizationError with a reason.
func Forbidden(reason string) error {
	return &AuthorizationError{Reason: reason}
}

// Isolation returns a TenantIsolationError.
func Isolation(callerTenant, targetTenant *uint) error {
	return &TenantIsolationError{CallerTenant: callerTenant, TargetTenant: targetTenant}
}

// Invalid returns a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func tenantString(id *uint) string {
	if id == nil {
		return "none"
	}

	return fmt.Sprintf("%d", *id)
}
