package server

import "fmt"

// BindError reports that the listener could not be opened, typically
// because the port is already in use or the process lacks permission.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
