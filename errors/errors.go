/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a named item is not known
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a different item is already registered under a name
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingResource is returned when a required definition source is absent
	ErrMissingResource = errors.New("missing definition resource")

	// ErrInvalidPrefix is returned when a concrete access name does not extend its template name
	ErrInvalidPrefix = errors.New("invalid prefix")

	// ErrTypeResolution is returned when an expected companion access type cannot be located
	ErrTypeResolution = errors.New("type resolution failed")

	// ErrHierarchyMismatch is returned when a located access type does not extend the expected template
	ErrHierarchyMismatch = errors.New("hierarchy mismatch")

	// ErrAssemblyParse is returned when merged definition text is not well-formed
	ErrAssemblyParse = errors.New("definition parse failed")

	// ErrUnsupportedBackupTarget is returned when the engine cannot back itself up
	ErrUnsupportedBackupTarget = errors.New("backup not supported")

	// ErrNotStarted is returned when an operation needs a started store
	ErrNotStarted = errors.New("store not started")

	// ErrFrozen is returned when a mutation is attempted on a frozen store
	ErrFrozen = errors.New("store is frozen")
)

// NotFoundError represents an error when a named item is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when a different item is already registered
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MissingResourceError reports a required definition source that could not be found
type MissingResourceError struct {
	Type string
	Path string
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("XML resource for %s is missing (%s)", e.Type, e.Path)
}

func (e *MissingResourceError) Is(target error) bool {
	return target == ErrMissingResource
}

// InvalidPrefixError reports an access name that breaks the template naming convention
type InvalidPrefixError struct {
	AccessName   string
	TemplateName string
	Empty        bool
}

func (e *InvalidPrefixError) Error() string {
	if e.Empty {
		return fmt.Sprintf("%s must add a prefix to %s", e.AccessName, e.TemplateName)
	}
	return fmt.Sprintf("%s must end with %s", e.AccessName, e.TemplateName)
}

func (e *InvalidPrefixError) Is(target error) bool {
	return target == ErrInvalidPrefix
}

// TypeResolutionError reports an expected sibling access type that is missing or misconfigured
type TypeResolutionError struct {
	Name     string
	Expected string
	Cause    error
}

func (e *TypeResolutionError) Error() string {
	if errors.Is(e.Cause, ErrHierarchyMismatch) {
		return fmt.Sprintf("%s must extend %s", e.Name, e.Expected)
	}
	if e.Cause != nil {
		return fmt.Sprintf("type %s not present: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("type %s not present", e.Name)
}

func (e *TypeResolutionError) Is(target error) bool {
	return target == ErrTypeResolution
}

func (e *TypeResolutionError) Unwrap() error {
	return e.Cause
}

// AssemblyParseError reports merged definition text the engine could not parse
type AssemblyParseError struct {
	Location string
	Cause    error
}

func (e *AssemblyParseError) Error() string {
	return fmt.Sprintf("cannot parse definition %s: %v", e.Location, e.Cause)
}

func (e *AssemblyParseError) Is(target error) bool {
	return target == ErrAssemblyParse
}

func (e *AssemblyParseError) Unwrap() error {
	return e.Cause
}

// UnsupportedBackupTargetError reports a backup request against an engine without backup support
type UnsupportedBackupTargetError struct {
	DatabaseID string
}

func (e *UnsupportedBackupTargetError) Error() string {
	return fmt.Sprintf("the underlying database (%s) is not supported for backup", e.DatabaseID)
}

func (e *UnsupportedBackupTargetError) Is(target error) bool {
	return target == ErrUnsupportedBackupTarget
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(itemType, key string) error {
	return &NotFoundError{Type: itemType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(itemType, key string) error {
	return &AlreadyExistsError{Type: itemType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewMissingResourceError creates a new MissingResourceError
func NewMissingResourceError(typeName, path string) error {
	return &MissingResourceError{Type: typeName, Path: path}
}

// NewInvalidPrefixError creates a new InvalidPrefixError
func NewInvalidPrefixError(accessName, templateName string, empty bool) error {
	return &InvalidPrefixError{AccessName: accessName, TemplateName: templateName, Empty: empty}
}

// NewTypeResolutionError creates a new TypeResolutionError
func NewTypeResolutionError(name, expected string, cause error) error {
	return &TypeResolutionError{Name: name, Expected: expected, Cause: cause}
}

// NewAssemblyParseError creates a new AssemblyParseError
func NewAssemblyParseError(location string, cause error) error {
	return &AssemblyParseError{Location: location, Cause: cause}
}

// NewUnsupportedBackupTargetError creates a new UnsupportedBackupTargetError
func NewUnsupportedBackupTargetError(databaseID string) error {
	return &UnsupportedBackupTargetError{DatabaseID: databaseID}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsMissingResource checks if an error is a missing resource error
func IsMissingResource(err error) bool {
	return errors.Is(err, ErrMissingResource)
}

// IsInvalidPrefix checks if an error is an invalid prefix error
func IsInvalidPrefix(err error) bool {
	return errors.Is(err, ErrInvalidPrefix)
}

// IsTypeResolution checks if an error is a type resolution error
func IsTypeResolution(err error) bool {
	return errors.Is(err, ErrTypeResolution)
}

// IsAssemblyParse checks if an error is an assembly parse error
func IsAssemblyParse(err error) bool {
	return errors.Is(err, ErrAssemblyParse)
}

// IsUnsupportedBackupTarget checks if an error is an unsupported backup error
func IsUnsupportedBackupTarget(err error) bool {
	return errors.Is(err, ErrUnsupportedBackupTarget)
}
