package errors

import "fmt"

var (
	// State machine preconditions (wrong domain state, duplicate active
	// domain over a target, call outside a dispatcher's own goroutine).
	ErrInvalidOperation = fmt.Errorf("invalid operation")

	// Authority or ownership check failed.
	ErrPermissionDenied = fmt.Errorf("permission denied")

	ErrDomainNotFound = fmt.Errorf("domain not found")
	ErrUserNotFound   = fmt.Errorf("user not found")
	ErrTargetNotFound = fmt.Errorf("target not found")

	// The versioned store rejected a commit because of a concurrent
	// external change. The caller reconciles and retries.
	ErrConflict = fmt.Errorf("conflict")

	ErrDispatcherDisposed     = fmt.Errorf("dispatcher disposed")
	ErrNotDispatcherGoroutine = fmt.Errorf("not on dispatcher goroutine")
	ErrTaskCancelled          = fmt.Errorf("task cancelled")

	ErrTransactionActive = fmt.Errorf("transaction already active")
	ErrNoTransaction     = fmt.Errorf("no active transaction")

	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)
