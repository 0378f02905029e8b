// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/stampede/request"
)

// A Policy sets the timeout of the next attempt within a request
// execution, including the initial attempt.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout for the next attempt of execution e.
	// A return value of zero or less means the attempt has no timeout
	// of its own.
	Timeout(e *request.Execution) time.Duration
}

// Infinite is a policy which never sets an attempt timeout.
var Infinite Policy = infinite{}

// DefaultPolicy is the timeout policy used when none is configured.
var DefaultPolicy = Infinite

type infinite struct{}

func (infinite) Timeout(_ *request.Execution) time.Duration { return 0 }

// Fixed returns a policy that gives every attempt the timeout d. It
// panics if d is not positive.
func Fixed(d time.Duration) Policy {
	if d <= 0 {
		panic("stampede/timeout: timeout must be positive")
	}
	return steps([]time.Duration{d})
}

// Adaptive returns a policy that lengthens the timeout of an attempt
// when the attempt before it timed out.
//
// Attempts use usual unless the preceding attempt timed out. After the
// first timeout in the execution the next attempt uses after[0], after
// the second it uses after[1], and so on, repeating the last element
// of after once it runs out. For example
//
//	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// tries with a 200ms timeout, retries with 1s after a first timeout,
// and with 10s after any later one.
//
// Adaptive panics if any of the timeouts is not positive.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make(steps, 1, 1+len(after))
	p[0] = usual
	p = append(p, after...)
	for _, d := range p {
		if d <= 0 {
			panic("stampede/timeout: timeout must be positive")
		}
	}
	return p
}

type steps []time.Duration

func (p steps) Timeout(e *request.Execution) time.Duration {
	if !e.Timeout() {
		return p[0]
	}

	i := e.AttemptTimeouts
	if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}
