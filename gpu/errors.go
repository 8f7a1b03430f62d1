package gpu

import "fmt"

// CompileError carries the diagnostic for a rejected program.
type CompileError struct {
	Name string
	Log  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile shader %s: %s", e.Name, e.Log)
}

// SubmitError is returned when the backend rejects a frame. It is fatal
// for the renderer.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("frame submission failed: %v", e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }
