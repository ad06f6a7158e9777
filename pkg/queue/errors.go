package queue

import "errors"

var (
	// ErrNoJob is returned by Fetch when nothing is ready to run.
	ErrNoJob = errors.New("no job available")

	// ErrJobNotActive means the job was not held by the caller anymore, e.g. it was
	// requeued as stalled while a slot was still running it.
	ErrJobNotActive = errors.New("job is not active")

	ErrJobNotFound = errors.New("job not found")
)

type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Fatal marks err as non-retriable: the job goes straight to the failed set.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}
