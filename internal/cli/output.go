package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes returned by the storefront binary.
const (
	ExitSuccess      = 0 // command completed
	ExitFailure      = 1 // the service or the cart rejected the operation
	ExitCommandError = 2 // bad arguments, flags or configuration
	ExitAuthRequired = 3 // no usable login; the session was cleared
)

// Machine-readable error codes carried in CLIError.Code.
const (
	ErrCodeAuth       = "E_AUTH"
	ErrCodeStock      = "E_STOCK"
	ErrCodeNotFound   = "E_NOT_FOUND"
	ErrCodeValidation = "E_VALIDATION"
	ErrCodeRemote     = "E_REMOTE"
	ErrCodeInput      = "E_INPUT"
	ErrCodeInternal   = "E_INTERNAL"
)

// ExitError carries the process exit code out of a command. When Err is
// set the failure has already been reported on stdout.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an unreported failure; main prints its message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code to an error that was already reported.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code for err: ExitSuccess for nil, the code
// of the first ExitError in the chain, ExitFailure otherwise.
func GetExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the JSON envelope written under --format json.
type CLIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError is the error half of the envelope.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// OutputFormatter writes command results either as text for people or as
// one JSON envelope per command.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

func (f *OutputFormatter) isJSON() bool { return f.Format == "json" }

func (f *OutputFormatter) envelope(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

// Success writes data in the envelope, or its default text form.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.isJSON() {
		return f.envelope(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Emit writes data in the envelope, or lets text render it.
func (f *OutputFormatter) Emit(data interface{}, text func(w io.Writer)) error {
	if f.isJSON() {
		return f.Success(data)
	}
	text(f.Writer)
	return nil
}

// Error reports a failure. Details reach text output only under --verbose.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.isJSON() {
		return f.envelope(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}
