package maintain

import "fmt"

// TransientFetchError is returned when a read call to GitHub failed during an
// evaluation.
// The evaluation is aborted and not retried automatically, the caller decides
// whether the pull request is skipped or evaluated again.
type TransientFetchError struct {
	Err error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("transient fetch error: %s", e.Err)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}
