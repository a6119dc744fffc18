package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react to it without string matching
type Kind string

const (
	KindNetwork      Kind = "network"
	KindParse        Kind = "parse"
	KindMissingKey   Kind = "missing-key"
	KindSubprocess   Kind = "subprocess"
	KindArchiveShape Kind = "archive-shape"
	KindIO           Kind = "io"
	KindConfig       Kind = "config"
	KindAWS          Kind = "aws"
	KindUnknown      Kind = "unknown"
)

// Error is a failure tagged with a Kind and the operation that produced it
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a kind and operation name
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a tagged error from a format string. %w verbs are honored.
func Errorf(kind Kind, op, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost tagged error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether any tagged error in err's chain has the given kind
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
