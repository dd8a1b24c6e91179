package cli

import "fmt"

// ExitError carries the container's exit status back to main.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("session exited with status %d", e.Code)
}
