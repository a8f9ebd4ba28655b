package domain

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist
	ErrNotFound = errors.New("document not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUploadFailed is the simulated, retryable upload failure
	ErrUploadFailed = errors.New("upload failed, please try again")
	// ErrFetchFailed wraps any other failure of a read operation
	ErrFetchFailed = errors.New("fetch failed")
)

// ErrorKind classifies an error for presentation.
type ErrorKind string

const (
	KindNone         ErrorKind = ""
	KindNotFound     ErrorKind = "not_found"
	KindInvalid      ErrorKind = "invalid_request"
	KindUploadFailed ErrorKind = "upload_failed"
	KindFetchFailed  ErrorKind = "fetch_failed"
)

// KindOf maps err onto the error taxonomy. Unknown errors are FetchFailed.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalid
	case errors.Is(err, ErrUploadFailed):
		return KindUploadFailed
	default:
		return KindFetchFailed
	}
}

// Retryable reports whether retrying the same operation may succeed.
func Retryable(err error) bool {
	return errors.Is(err, ErrUploadFailed)
}
