package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleExists         = errors.New("role already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLockedOut          = errors.New("user is locked out")
	ErrConcurrencyFailure = errors.New("concurrent operation in progress")
	ErrForbidden          = errors.New("access forbidden")
	ErrNilUser            = errors.New("user is nil")
	ErrImportUnavailable  = errors.New("import queue unavailable")
)

// Identity error codes carried by a failed IdentityResult.
const (
	CodeDuplicateUserName  = "DuplicateUserName"
	CodeConcurrencyFailure = "ConcurrencyFailure"
	CodeUserNotFound       = "UserNotFound"
)

// IdentityError describes one reason an identity operation failed.
type IdentityError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// IdentityResult is the outcome of a validating store operation. A failure
// here is an expected business outcome, not an infrastructure error.
type IdentityResult struct {
	Succeeded bool            `json:"succeeded"`
	Errors    []IdentityError `json:"errors,omitempty"`
}

// Success returns a succeeded result.
func Success() IdentityResult {
	return IdentityResult{Succeeded: true}
}

// Failed returns a failed result carrying errs.
func Failed(errs ...IdentityError) IdentityResult {
	return IdentityResult{Errors: errs}
}

func DuplicateUserName(userName string) IdentityError {
	return IdentityError{Code: CodeDuplicateUserName, Description: "username '" + userName + "' is already taken"}
}

func ConcurrencyFailure() IdentityError {
	return IdentityError{Code: CodeConcurrencyFailure, Description: "optimistic concurrency failure, object has been modified"}
}

func UserNotFound(id string) IdentityError {
	return IdentityError{Code: CodeUserNotFound, Description: "user '" + id + "' does not exist"}
}

// HasCode reports whether the result carries an error with code.
func (r IdentityResult) HasCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Err maps a failed result to the matching sentinel error, or nil on success.
func (r IdentityResult) Err() error {
	if r.Succeeded {
		return nil
	}
	switch {
	case r.HasCode(CodeDuplicateUserName):
		return ErrUserExists
	case r.HasCode(CodeConcurrencyFailure):
		return ErrConcurrencyFailure
	case r.HasCode(CodeUserNotFound):
		return ErrUserNotFound
	}
	if len(r.Errors) > 0 {
		return errors.New(r.Errors[0].Description)
	}
	return errors.New("identity operation failed")
}
