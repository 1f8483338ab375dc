// Tubelytics - Channel Analytics and Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tubelytics

// Package apperror defines the error taxonomy shared by the sync pipeline.
//
// Every error that crosses a component boundary (provider client, orchestrator,
// model registry) is classified into a Kind. The Kind decides the retry policy:
// NETWORK_ERROR and QUOTA_EXCEEDED are retried with backoff, everything else
// propagates immediately.
//
// Usage:
//
//	if err := provider.GetChannel(ctx, id); err != nil {
//	    return apperror.Wrap(apperror.KindNetwork, "get channel", err)
//	}
//
//	if apperror.IsRetryable(err) {
//	    // back off and try again
//	}
package apperror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind classifies an error for retry and presentation decisions.
type Kind string

const (
	KindNetwork    Kind = "NETWORK_ERROR"
	KindQuota      Kind = "QUOTA_EXCEEDED"
	KindAuth       Kind = "AUTH_ERROR"
	KindValidation Kind = "VALIDATION_ERROR"
	KindSyncFailed Kind = "SYNC_FAILED"
	KindUnknown    Kind = "UNKNOWN_ERROR"
)

// Retryable reports whether errors of this kind may be retried.
func (k Kind) Retryable() bool {
	return k == KindNetwork || k == KindQuota
}

// Error is a classified error. Op names the operation that failed.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind so callers can write
// errors.Is(err, &apperror.Error{Kind: apperror.KindQuota}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// New creates a classified error without an underlying cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err returns nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first classified error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err should be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.Retryable()
	}
	return isTransportError(err)
}

// Normalize converts any error into a classified *Error. Already classified
// errors are returned unchanged; transport failures become KindNetwork and
// everything else KindUnknown.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if isTransportError(err) {
		return &Error{Kind: KindNetwork, Err: err}
	}
	return &Error{Kind: KindUnknown, Err: err}
}

// quotaReasons are the provider reason codes that signal quota exhaustion
// rather than a permission problem.
var quotaReasons = map[string]struct{}{
	"quotaExceeded":         {},
	"dailyLimitExceeded":    {},
	"rateLimitExceeded":     {},
	"userRateLimitExceeded": {},
}

// FromHTTPStatus classifies an HTTP failure by status code and the provider's
// reason codes.
func FromHTTPStatus(op string, status int, reasons []string, err error) error {
	kind := KindUnknown
	switch {
	case status == http.StatusUnauthorized:
		kind = KindAuth
	case status == http.StatusForbidden:
		kind = KindAuth
		for _, r := range reasons {
			if _, ok := quotaReasons[r]; ok {
				kind = KindQuota
				break
			}
		}
	case status == http.StatusBadRequest, status == http.StatusNotFound:
		kind = KindValidation
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		kind = KindNetwork
	}
	if err == nil {
		err = fmt.Errorf("http status %d", status)
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
