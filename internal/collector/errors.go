package collector

import "fmt"

// StageError tags a failed remote call with the stage and sub-call that made it.
type StageError struct {
	Stage     string
	Call      string
	Character string
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s, %v", e.Stage, e.Call, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage, call string, err error) *StageError {
	return &StageError{Stage: stage, Call: call, Err: err}
}
