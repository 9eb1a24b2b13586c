package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/roach88/cohort/internal/ir"
	"github.com/roach88/cohort/internal/store"
)

// Process exit statuses.
const (
	ExitSuccess      = 0 // everything held
	ExitFailure      = 1 // a scenario step, assertion or checkpoint digest failed
	ExitCommandError = 2 // the command could not run: bad flags, paths or files
)

// Response codes. Contract violations raised by the group store are
// reported under their own ir.ErrorCode names instead.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeScanError   = "E002"
	ErrCodeNoFiles     = "E003"
	ErrCodeLoadFailed  = "E004" // scenario file unreadable or invalid
	ErrCodeNotFound    = "E005" // schema dir or database missing
	ErrCodeBuildFailed = "E006" // CUE build
	ErrCodeWriteFailed = "E007"

	// Group schema compilation.
	ErrCodePropertyKind    = "E201"
	ErrCodePropertyDefault = "E202"
	ErrCodePropertyField   = "E203"
	ErrCodePropertyDef     = "E204"

	// Checkpoint database.
	ErrCodeNoCheckpoint = "E301"
	ErrCodeDigest       = "E302"
)

// ExitError carries the process exit status a command failed with.
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

// NewExitError returns an ExitError with no cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the status main should exit with for err.
// Errors that carry no ExitError count as ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope of every --format json result.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error half of a CLIResponse. Code is either one of the
// E-codes above or an ir.ErrorCode such as UNKNOWN_GROUP_ID.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Classify maps err to the exit status and response error a command
// reports for it.
func Classify(err error) (int, CLIError) {
	var ce *ir.ContractError
	if errors.As(err, &ce) {
		var details any
		if len(ce.Details) > 0 {
			details = ce.Details
		}
		return ExitFailure, CLIError{Code: string(ce.Code), Message: ce.Message, Details: details}
	}
	var le *LoadError
	if errors.As(err, &le) {
		return ExitCommandError, CLIError{Code: le.Code, Message: le.Message}
	}
	switch {
	case errors.Is(err, store.ErrDigestMismatch):
		return ExitFailure, CLIError{Code: ErrCodeDigest, Message: err.Error()}
	case errors.Is(err, store.ErrNotFound):
		return ExitCommandError, CLIError{Code: ErrCodeNoCheckpoint, Message: err.Error()}
	default:
		return ExitCommandError, CLIError{Code: ErrCodeGeneric, Message: err.Error()}
	}
}

// OutputFormatter writes command results as text or JSON.
// Diagnostics go to ErrWriter, or to Writer when ErrWriter is nil.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

func (f *OutputFormatter) json() bool { return f.Format == "json" }

func (f *OutputFormatter) diagnostics() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Success writes data as an ok response, or prints it in text mode.
func (f *OutputFormatter) Success(data any) error {
	if f.json() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes an error response. Text mode prints details only when
// verbose; map details are printed one key per line in key order.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.json() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if !f.Verbose || details == nil {
		return nil
	}
	if m, ok := details.(map[string]string); ok {
		for _, k := range slices.Sorted(maps.Keys(m)) {
			fmt.Fprintf(f.Writer, "  %s: %s\n", k, m[k])
		}
		return nil
	}
	fmt.Fprintf(f.Writer, "Details: %v\n", details)
	return nil
}

// VerboseLog prints a diagnostic line when verbose. It never writes to
// Writer while ErrWriter is set, so JSON output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.diagnostics(), format+"\n", args...)
	}
}

// Fail writes an error response and returns the ExitError for it.
func (f *OutputFormatter) Fail(exitCode int, code, message string, details any) error {
	_ = f.Error(code, message, details)
	return NewExitError(exitCode, code+": "+message)
}

// FailWith reports err under the code and exit status Classify picks.
func (f *OutputFormatter) FailWith(err error) error {
	exitCode, ce := Classify(err)
	return f.Fail(exitCode, ce.Code, ce.Message, ce.Details)
}
