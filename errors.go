package storefront

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound     = errors.New("storefront: not found")
	ErrInvalidInput = errors.New("storefront: invalid input")

	// Account errors
	ErrUserNotFound    = errors.New("storefront: user not found")
	ErrUserExists      = errors.New("storefront: user already exists")
	ErrRoleNotFound    = errors.New("storefront: role not found")
	ErrBalanceNotFound = errors.New("storefront: balance not found")

	// Catalog errors
	ErrProductNotFound  = errors.New("storefront: product not found")
	ErrProductArchived  = errors.New("storefront: product is archived")
	ErrTagNotFound      = errors.New("storefront: tag not found")
	ErrVariantNotFound  = errors.New("storefront: gateway variant not found")
	ErrDuplicateTag     = errors.New("storefront: duplicate tag name")
	ErrProductNotTagged = errors.New("storefront: product does not carry tag")

	// Cart errors
	ErrCartItemNotFound = errors.New("storefront: cart item not found")
	ErrEmptyCart        = errors.New("storefront: cart is empty")

	// Billing errors
	ErrBillNotFound     = errors.New("storefront: bill not found")
	ErrBillExpired      = errors.New("storefront: bill has expired")
	ErrBillAlreadyPaid  = errors.New("storefront: bill already paid")
	ErrBillNotPending   = errors.New("storefront: bill is not pending")
	ErrCurrencyMismatch = errors.New("storefront: cart mixes currencies")

	// Workspace errors
	ErrWorkspaceNotFound  = errors.New("storefront: workspace not found")
	ErrPermissionNotFound = errors.New("storefront: workspace permission not found")
	ErrAdminRoleMissing   = errors.New("storefront: admin role missing from created workspace")

	// Configuration errors. Required reference data (default roles,
	// workspace permissions) is absent from the store.
	ErrMissingConfig = errors.New("storefront: required configuration missing")

	// Payment errors
	ErrGatewayNotConfigured = errors.New("storefront: payment gateway not configured")
	ErrInvalidSignature     = errors.New("storefront: webhook signature invalid")
	ErrUnknownEvent         = errors.New("storefront: unknown webhook event")

	// Upload errors
	ErrFileNotFound   = errors.New("storefront: file not found")
	ErrUploaderNotSet = errors.New("storefront: object storage not configured")

	// Store errors
	ErrStoreNotReady     = errors.New("storefront: store not ready")
	ErrStoreClosed       = errors.New("storefront: store is closed")
	ErrTransactionFailed = errors.New("storefront: transaction failed")
	ErrMigrationFailed   = errors.New("storefront: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("storefront: validation failed for %s: %s", e.Field, e.Message)
}

// Is lets wrapped ValidationErrors match ErrInvalidInput in errors.Is chains.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "storefront: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("storefront: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrBalanceNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrTagNotFound) ||
		errors.Is(err, ErrVariantNotFound) ||
		errors.Is(err, ErrCartItemNotFound) ||
		errors.Is(err, ErrBillNotFound) ||
		errors.Is(err, ErrWorkspaceNotFound) ||
		errors.Is(err, ErrPermissionNotFound) ||
		errors.Is(err, ErrFileNotFound)
}

// IsValidation returns true if the error stems from bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrCurrencyMismatch)
}

// IsConfiguration returns true if the error signals missing or corrupt
// reference data rather than a recoverable request failure.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrMissingConfig) ||
		errors.Is(err, ErrAdminRoleMissing) ||
		errors.Is(err, ErrGatewayNotConfigured) ||
		errors.Is(err, ErrUploaderNotSet)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
