package main

import "errors"

// Process exit codes.
const (
	exitOK         = 0
	exitUsage      = 1
	exitOpen       = 2 // input cannot be opened or read
	exitStat       = 3 // input size cannot be determined
	exitAllocation = 4
	exitTranscode  = 5
	exitWrite      = 6
)

// exitError attaches a process exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExit(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCode maps an error returned by the command tree to an exit code.
// Errors cobra raises itself (unknown flags, wrong argument count) are usage
// errors.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUsage
}
