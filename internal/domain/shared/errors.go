package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Tick orchestration errors

// TickInProgressError signals that another tick run currently holds the
// single-flight guard. Callers treat it as a busy signal, not a failure.
type TickInProgressError struct {
	*DomainError
	Holder string
}

func NewTickInProgressError(holder string) *TickInProgressError {
	return &TickInProgressError{
		DomainError: &DomainError{Message: fmt.Sprintf("tick already in progress (held by %s)", holder)},
		Holder:      holder,
	}
}

// ClockPersistenceError is fatal for a tick run: without a persisted clock
// advance the run's semantics are undefined.
type ClockPersistenceError struct {
	*DomainError
}

func NewClockPersistenceError(message string) *ClockPersistenceError {
	return &ClockPersistenceError{DomainError: &DomainError{Message: message}}
}

// Recipe errors

type RecipeNotFoundError struct {
	*DomainError
	RecipeID string
}

func NewRecipeNotFoundError(recipeID string) *RecipeNotFoundError {
	return &RecipeNotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("recipe %s not found", recipeID)},
		RecipeID:    recipeID,
	}
}

type InvalidRecipeError struct {
	*DomainError
}

func NewInvalidRecipeError(message string) *InvalidRecipeError {
	return &InvalidRecipeError{DomainError: &DomainError{Message: message}}
}

// Inventory errors

type InsufficientInputError struct {
	*DomainError
	Resource  string
	Required  uint
	Available uint
}

func NewInsufficientInputError(resource string, required, available uint) *InsufficientInputError {
	return &InsufficientInputError{
		DomainError: &DomainError{Message: fmt.Sprintf("insufficient %s: need %d, have %d", resource, required, available)},
		Resource:    resource,
		Required:    required,
		Available:   available,
	}
}

// InventoryInvariantError reports a corrupted inventory: usage no longer
// matches the item sum, or usage exceeds capacity.
type InventoryInvariantError struct {
	*DomainError
}

func NewInventoryInvariantError(message string) *InventoryInvariantError {
	return &InventoryInvariantError{DomainError: &DomainError{Message: message}}
}

// Facility errors

type FacilityNotFoundError struct {
	*DomainError
	FacilityID string
}

func NewFacilityNotFoundError(facilityID string) *FacilityNotFoundError {
	return &FacilityNotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("facility %s not found", facilityID)},
		FacilityID:  facilityID,
	}
}

type RecipeNotAllowedError struct {
	*DomainError
	FacilityID string
	RecipeID   string
}

func NewRecipeNotAllowedError(facilityID, recipeID string) *RecipeNotAllowedError {
	return &RecipeNotAllowedError{
		DomainError: &DomainError{Message: fmt.Sprintf("recipe %s is not allowed for facility %s", recipeID, facilityID)},
		FacilityID:  facilityID,
		RecipeID:    recipeID,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
