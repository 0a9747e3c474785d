package domain

import "errors"

var (
	ErrNoFilesProvided = errors.New("no files uploaded")
	ErrNoURLProvided   = errors.New("no url provided")
	ErrUploadFailed    = errors.New("upload failed")
	ErrDeleteFailed    = errors.New("delete failed")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidAssetURL = errors.New("invalid asset url")
)

// StoreError ties a relay failure (ErrUploadFailed or ErrDeleteFailed) to the
// underlying cause. Both are reachable through errors.Is.
type StoreError struct {
	Op  error
	Err error
}

// NewStoreError wraps err as a failure of op.
func NewStoreError(op, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return e.Op.Error() + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() []error {
	return []error{e.Op, e.Err}
}

// Details returns the cause's message as reported by the failing call.
func (e *StoreError) Details() string {
	return e.Err.Error()
}
