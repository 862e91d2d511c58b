package cli

import (
	"errors"
	"fmt"

	"paperflow-hq/paperflow/pkg/policy"
)

// Exit codes for the paperflow command. Scripts can branch on these instead
// of parsing error text.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitConfig     = 2
	ExitValidation = 3
	ExitNotFound   = 4
	ExitAuth       = 5
)

// ConfigError marks a configuration problem, optionally tied to a field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// NewConfigError creates a ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// CommandError wraps a failure from a named command.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

// ExitCode maps an error to the process exit code. The policy error taxonomy
// gets distinct codes; everything else is a generic failure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch {
	case policy.IsValidation(err):
		return ExitValidation
	case policy.IsNotFound(err):
		return ExitNotFound
	case policy.IsAuthRequired(err):
		return ExitAuth
	}

	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return ExitConfig
	}
	return ExitFailure
}
