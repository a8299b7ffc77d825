package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "session.prefix")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// prefixRegex validates session prefix characters. The prefix lands in both
// branch names and tmux session names, so it takes the intersection of what
// both accept.
var prefixRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateSession()...)
	errors = append(errors, c.validateNaming()...)
	errors = append(errors, c.validateAgents()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateSession() []ValidationError {
	var errors []ValidationError

	if c.Session.Prefix != "" && !prefixRegex.MatchString(c.Session.Prefix) {
		errors = append(errors, ValidationError{
			Field:   "session.prefix",
			Value:   c.Session.Prefix,
			Message: "must start with a letter and contain only letters, digits, hyphens, underscores",
		})
	}
	if c.Session.MaxNameLength < 8 {
		errors = append(errors, ValidationError{
			Field:   "session.max_name_length",
			Value:   c.Session.MaxNameLength,
			Message: "must be at least 8",
		})
	}
	if c.Session.MaxSuffixAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "session.max_suffix_attempts",
			Value:   c.Session.MaxSuffixAttempts,
			Message: "must be at least 1",
		})
	}

	return errors
}

func (c *Config) validateNaming() []ValidationError {
	var errors []ValidationError

	if c.Naming.TimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "naming.timeout_seconds",
			Value:   c.Naming.TimeoutSeconds,
			Message: "must be at least 1",
		})
	}

	return errors
}

func (c *Config) validateAgents() []ValidationError {
	var errors []ValidationError

	if c.Agents.Primary == "" {
		errors = append(errors, ValidationError{
			Field:   "agents.primary",
			Value:   c.Agents.Primary,
			Message: "must not be empty",
		})
	}
	if c.Agents.Secondary == "" {
		errors = append(errors, ValidationError{
			Field:   "agents.secondary",
			Value:   c.Agents.Secondary,
			Message: "must not be empty",
		})
	}
	if c.Agents.Primary != "" && c.Agents.Primary == c.Agents.Secondary {
		errors = append(errors, ValidationError{
			Field:   "agents.secondary",
			Value:   c.Agents.Secondary,
			Message: "must differ from agents.primary in dual mode",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
