// Package rlmerr defines the closed set of error kinds the broker returns.
//
// Every operation in internal/pipeline, internal/store, internal/query and
// internal/surgery wraps failures in one of these kinds so a caller (the
// CLI, or an agent-protocol server sitting on top of this package) can map
// them to the exit codes recommended in spec §6 without string-matching
// error text.
package rlmerr

import (
	"errors"
	"fmt"
)

// Kind is one of the closed error kinds from spec §7.
type Kind int

const (
	// KindNotFound covers a missing path or a selector that matched nothing.
	KindNotFound Kind = iota
	// KindAmbiguous covers a selector that matched more than one chunk.
	KindAmbiguous
	// KindParseRejected covers the Syntax Guard rejecting an edit.
	KindParseRejected
	// KindUnsupportedForEdit covers editing a file with no AST parser.
	KindUnsupportedForEdit
	// KindIO covers underlying filesystem failures.
	KindIO
	// KindStore covers database constraint violations or corruption.
	KindStore
	// KindWalk covers ignore-file parse failures during a walk.
	KindWalk
	// KindCancelled covers a cancelled ingestion pass.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAmbiguous:
		return "ambiguous"
	case KindParseRejected:
		return "parse_rejected"
	case KindUnsupportedForEdit:
		return "unsupported_for_edit"
	case KindIO:
		return "io"
	case KindStore:
		return "store"
	case KindWalk:
		return "walk"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ExitCode maps a Kind to the recommended process exit code from spec §6.
func (k Kind) ExitCode() int {
	switch k {
	case KindNotFound:
		return 2
	case KindAmbiguous:
		return 3
	case KindParseRejected:
		return 4
	case KindUnsupportedForEdit:
		return 6
	case KindIO:
		return 5
	case KindStore:
		return 7
	default:
		return 1
	}
}

// ErrorSpan locates one syntax error the guard found in a candidate edit,
// mapped from a byte range to 1-based line/column.
type ErrorSpan struct {
	StartByte  uint32
	EndByte    uint32
	StartLine  int
	StartCol   int
}

// Error is the concrete error type returned by every core operation.
type Error struct {
	Kind    Kind
	Message string
	// Path and Selector are populated when relevant, for structured logging.
	Path     string
	Selector string
	// Spans carries the first few Syntax Guard error ranges for KindParseRejected.
	Spans []ErrorSpan
	Err   error // wrapped underlying error, if any
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes any *Error target match by Kind rather than pointer identity, so
// errors.Is(err, rlmerr.New(rlmerr.KindNotFound, "")) matches every
// not-found error.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return e.Kind == te.Kind
	}
	return false
}

// New builds an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap builds an *Error of the given kind around an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// NotFound reports a missing file or selector.
func NotFound(path, msg string) *Error {
	return &Error{Kind: KindNotFound, Path: path, Message: msg}
}

// Ambiguous reports a selector matching more than one chunk.
func Ambiguous(path, msg string) *Error {
	return &Error{Kind: KindAmbiguous, Path: path, Message: msg}
}

// ParseRejected reports the Syntax Guard rejecting a candidate edit.
func ParseRejected(path string, spans []ErrorSpan) *Error {
	return &Error{
		Kind:    KindParseRejected,
		Path:    path,
		Message: "modified source has parse errors",
		Spans:   spans,
	}
}

// UnsupportedForEdit reports that a language has no AST parser to guard an edit with.
func UnsupportedForEdit(lang string) *Error {
	return &Error{Kind: KindUnsupportedForEdit, Message: fmt.Sprintf("no AST parser for language %q", lang)}
}

// IO wraps a filesystem error.
func IO(path string, err error) *Error {
	return &Error{Kind: KindIO, Path: path, Message: "filesystem error", Err: err}
}

// Store wraps a database error.
func Store(msg string, err error) *Error {
	return &Error{Kind: KindStore, Message: msg, Err: err}
}

// Walk wraps an ignore-file parse error.
func Walk(msg string, err error) *Error {
	return &Error{Kind: KindWalk, Message: msg, Err: err}
}

// Cancelled reports an ingestion pass stopped by a cancel signal.
func Cancelled() *Error {
	return &Error{Kind: KindCancelled, Message: "operation cancelled"}
}

// KindOf extracts the Kind from err, or false if err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
