package adapter

import (
	"errors"
	"fmt"
)

// Kind classifies an execution failure. Every failure surfaces to callers
// as a normalized error-status response, never as a raw upstream error.
type Kind string

const (
	// KindInvalidInput marks malformed or missing request fields,
	// detected before any framework or model call.
	KindInvalidInput Kind = "invalid_input"
	// KindUpstreamFailure marks a failed framework, tool, or model call.
	KindUpstreamFailure Kind = "upstream_failure"
	// KindNetworkFailure marks an unreachable remote deployment.
	KindNetworkFailure Kind = "network_failure"
)

// Error wraps a failure with its classification.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Invalidf builds an invalid-input error.
func Invalidf(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Err: fmt.Errorf(format, args...)}
}

// Upstreamf builds an upstream-failure error.
func Upstreamf(format string, args ...any) error {
	return &Error{Kind: KindUpstreamFailure, Err: fmt.Errorf(format, args...)}
}

// Networkf builds a network-failure error.
func Networkf(format string, args ...any) error {
	return &Error{Kind: KindNetworkFailure, Err: fmt.Errorf(format, args...)}
}

// KindOf classifies an error. Unclassified errors count as upstream
// failures, matching the contract that adapters never leak raw errors.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindUpstreamFailure
}
