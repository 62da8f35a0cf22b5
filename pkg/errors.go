package pkg

import "fmt"

// ErrDBProcedure describes a failed database step.
type ErrDBProcedure struct {
	Cause string
	Info  string
	Err   error
}

func (e *ErrDBProcedure) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("%s: %s", e.Cause, e.Err)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Cause, e.Err, e.Info)
}

func (e *ErrDBProcedure) Unwrap() error {
	return e.Err
}
