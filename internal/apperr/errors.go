package apperr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories the service distinguishes.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindConfig
	KindNotFoundOrProvider
	KindNetwork
	KindProcessing
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindConfig:
		return "config"
	case KindNotFoundOrProvider:
		return "not_found_or_provider"
	case KindNetwork:
		return "network"
	case KindProcessing:
		return "processing"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return e.Message + ": " + e.Cause.Error()
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func InvalidInput(msg string) error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func Config(msg string) error {
	return &Error{Kind: KindConfig, Message: msg}
}

func NotFoundOrProvider(format string, args ...any) error {
	return &Error{Kind: KindNotFoundOrProvider, Message: fmt.Sprintf(format, args...)}
}

func Network(msg string, cause error) error {
	return &Error{Kind: KindNetwork, Message: msg, Cause: cause}
}

// Processing wraps an unexpected failure. The cause's own text is the message
// so the boundary can expose it verbatim.
func Processing(cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: KindProcessing, Cause: cause}
}

// KindOf returns the kind of the outermost tagged error in the chain,
// or KindUnknown for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}
