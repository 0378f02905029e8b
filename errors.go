// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stampede

import (
	"fmt"
	"net/http"
)

// An ExhaustedError is returned when the last attempt of an execution
// failed and the retry policy allows no further attempt, or retrying
// is disabled.
type ExhaustedError struct {
	// Attempts is the number of attempts made.
	Attempts int
	// Err is the failure of the last attempt: either a *url.Error for
	// a transport failure or a *StatusError for a retriable status
	// code.
	Err error
}

func (err *ExhaustedError) Error() string {
	return fmt.Sprintf("stampede: gave up after %d attempt(s): %v", err.Attempts, err.Err)
}

func (err *ExhaustedError) Unwrap() error {
	return err.Err
}

// A FatalError is returned when an attempt ended in a transport error
// that is not worth retrying. The retry policy is not consulted.
type FatalError struct {
	// Attempts is the number of attempts made, including the fatal one.
	Attempts int
	// Err is the transport error, always a *url.Error.
	Err error
}

func (err *FatalError) Error() string {
	return fmt.Sprintf("stampede: non-retriable failure on attempt %d: %v", err.Attempts, err.Err)
}

func (err *FatalError) Unwrap() error {
	return err.Err
}

// A StatusError describes an HTTP response whose status code was
// classified as a retriable failure.
type StatusError struct {
	// StatusCode is the response status code, e.g. 503.
	StatusCode int
	// Status is the response status line, e.g. "503 Service Unavailable".
	Status string
}

func (err *StatusError) Error() string {
	status := err.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", err.StatusCode, http.StatusText(err.StatusCode))
	}
	return "stampede: retriable status " + status
}
