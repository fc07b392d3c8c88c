package utils

import "errors"

// Error taxonomy. Every operation reports failures with one of these typed
// reasons (possibly wrapped); nothing is swallowed.
var (
	ErrorUnauthenticated    = errors.New("unauthenticated")
	ErrorRecordNotFound     = errors.New("record not found")
	ErrorPreconditionFailed = errors.New("precondition failed")
	ErrorInvalidCode        = errors.New("invalid code")
	ErrorNotConfigured      = errors.New("mfa not configured")
	ErrorDuplicate          = errors.New("duplicate record")
	ErrorInsufficientStock  = errors.New("insufficient stock")
)
