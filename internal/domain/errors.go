package domain

import "errors"

var (
	ErrConfiguration    = errors.New("configuration error")
	ErrNotFound         = errors.New("not found")
	ErrProcessingFailed = errors.New("file processing failed")
	ErrRemoteService    = errors.New("remote service error")
	ErrTimeout          = errors.New("timed out waiting for file processing")
)

type NotFoundError struct {
	What string
	Path string
}

func (e *NotFoundError) Error() string {
	return e.What + " not found at " + e.Path
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ProcessingError reports an uploaded file that left PROCESSING in a state
// other than ACTIVE.
type ProcessingError struct {
	Name  string
	State FileState
}

func (e *ProcessingError) Error() string {
	return "file " + e.Name + " failed to process (state " + string(e.State) + ")"
}

func (e *ProcessingError) Is(target error) bool {
	return target == ErrProcessingFailed
}

// RemoteError wraps a failure returned by the remote service during Op.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *RemoteError) Unwrap() []error {
	return []error{ErrRemoteService, e.Err}
}
