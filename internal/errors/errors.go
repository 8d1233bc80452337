// Package errors provides the structured error type (SiteError) used by every
// compiler pass, the site loader and the CLI. Errors carry a category for
// exit-code mapping, a kind naming the exact failure, and the offending file
// and command.
package errors

import (
	stdErrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory represents the category of a SiteError for classification.
type ErrorCategory string

const (
	// User-facing input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Tag resolution errors
	CategorySyntax   ErrorCategory = "syntax"
	CategoryScope    ErrorCategory = "scope"
	CategoryTemplate ErrorCategory = "template"
	CategoryProp     ErrorCategory = "prop"
	CategoryRender   ErrorCategory = "render"

	// I/O and infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the run
	SeverityWarning ErrorSeverity = "warning" // Logged, run continues
)

// Kind names the precise failure inside a category.
type Kind string

const (
	KindUndefinedVariable            Kind = "UndefinedVariable"
	KindUndefinedGlobal              Kind = "UndefinedGlobal"
	KindUnknownTemplate              Kind = "UnknownTemplate"
	KindMultipleTemplateDeclarations Kind = "MultipleTemplateDeclarations"
	KindPropNotDeclared              Kind = "PropNotDeclared"
	KindMissingPropValue             Kind = "MissingPropValue"
	KindIllegalDefInTemplate         Kind = "IllegalDefInTemplate"
	KindIllegalUseInTemplate         Kind = "IllegalUseInTemplate"
	KindLoopSyntaxError              Kind = "LoopSyntaxError"
	KindMissingLoopKey               Kind = "MissingLoopKey"
	KindContentRenderError           Kind = "ContentRenderError"
	KindCyclicTemplateInheritance    Kind = "CyclicTemplateInheritance"
	KindCyclicTemplateExpansion      Kind = "CyclicTemplateExpansion"
	KindTemplateDepthExceeded        Kind = "TemplateDepthExceeded"
	KindUnresolvedTag                Kind = "UnresolvedTag"
	KindMalformedTag                 Kind = "MalformedTag"
	KindDuplicateVariable            Kind = "DuplicateVariable"
	KindOutputConflict               Kind = "OutputConflict"
	KindInvalidInput                 Kind = "InvalidInput"
	KindConfigError                  Kind = "ConfigError"
	KindIOError                      Kind = "IOError"
	KindInternal                     Kind = "Internal"
)

// SiteError is a structured error with category, kind and location context.
type SiteError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Kind     Kind          `json:"kind"`
	Message  string        `json:"message"`
	File     string        `json:"file,omitempty"`
	Command  string        `json:"command,omitempty"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for SiteError.
type ContextFields map[string]any

// Error implements the error interface.
func (e *SiteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s): %s", e.Kind, e.Category, e.Message)
	if e.File != "" {
		fmt.Fprintf(&b, " [file=%s", e.File)
		if e.Command != "" {
			fmt.Fprintf(&b, " command=%s", e.Command)
		}
		b.WriteString("]")
	} else if e.Command != "" {
		fmt.Fprintf(&b, " [command=%s]", e.Command)
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Context[k])
		}
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap implements error unwrapping for Go 1.13+ error handling.
func (e *SiteError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *SiteError) WithContext(key string, value any) *SiteError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// InFile records the file the error was raised for. An existing value is kept
// so the innermost location wins when errors bubble through nested calls.
func (e *SiteError) InFile(file string) *SiteError {
	if e.File == "" {
		e.File = file
	}
	return e
}

// WithCommand records the tag command that failed.
func (e *SiteError) WithCommand(command string) *SiteError {
	if e.Command == "" {
		e.Command = command
	}
	return e
}

// New creates a new fatal SiteError.
func New(category ErrorCategory, kind Kind, message string) *SiteError {
	return &SiteError{
		Category: category,
		Severity: SeverityFatal,
		Kind:     kind,
		Message:  message,
	}
}

// Wrap creates a new fatal SiteError that wraps an existing error.
func Wrap(err error, category ErrorCategory, kind Kind, message string) *SiteError {
	return &SiteError{
		Category: category,
		Severity: SeverityFatal,
		Kind:     kind,
		Message:  message,
		Cause:    err,
	}
}

// As returns the first SiteError in err's chain.
func As(err error) (*SiteError, bool) {
	var se *SiteError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsKind checks if an error (or anything it wraps) is a SiteError of the given kind.
func IsKind(err error, kind Kind) bool {
	if se, ok := As(err); ok {
		return se.Kind == kind
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a SiteError.
func GetCategory(err error) ErrorCategory {
	if se, ok := As(err); ok {
		return se.Category
	}
	return CategoryInternal
}
