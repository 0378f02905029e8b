// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"fmt"

	"github.com/gogama/stampede/request"
)

// A Kind identifies the variant of a retry Policy.
type Kind int

const (
	// KindFixed identifies policies constructed with Fixed.
	KindFixed Kind = iota
	// KindInfinite identifies the Infinite policy.
	KindInfinite
)

// String returns the configuration file name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindInfinite:
		return "infinite"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// A Policy decides whether another attempt may be made after a failed
// one. Policies are immutable and safe for concurrent use by multiple
// goroutines.
//
// The only implementations are those returned by Fixed and Infinite.
type Policy interface {
	// ShouldRetry reports whether another attempt may be made. Parameter
	// attempts is the number of attempts made so far (at least one)
	// and outcome is the outcome of the last one. ShouldRetry always
	// returns false unless outcome is request.Failure.
	ShouldRetry(attempts int, outcome request.Outcome) bool
	// Kind returns the variant of the policy.
	Kind() Kind
	// MaxAttempts returns the total number of attempts the policy
	// allows, or zero if it is unbounded.
	MaxAttempts() int

	policy()
}

// Infinite is a policy that retries every failure, forever.
//
// Against an upstream that never recovers, an execution under Infinite
// only ends when its plan context is done. Callers should bound such
// executions with a context deadline.
var Infinite Policy = infinite{}

// Fixed returns a policy that allows at most n attempts in total, i.e.
// the initial attempt plus up to n-1 retries. It panics if n is less
// than one.
func Fixed(n int) Policy {
	if n < 1 {
		panic("stampede/retry: max attempts must be positive")
	}
	return fixed(n)
}

type fixed int

func (p fixed) ShouldRetry(attempts int, outcome request.Outcome) bool {
	return outcome == request.Failure && attempts < int(p)
}

func (p fixed) Kind() Kind       { return KindFixed }
func (p fixed) MaxAttempts() int { return int(p) }
func (p fixed) policy()          {}

func (p fixed) String() string {
	return fmt.Sprintf("fixed(max_attempts=%d)", int(p))
}

type infinite struct{}

func (infinite) ShouldRetry(_ int, outcome request.Outcome) bool {
	return outcome == request.Failure
}

func (infinite) Kind() Kind       { return KindInfinite }
func (infinite) MaxAttempts() int { return 0 }
func (infinite) policy()          {}

func (infinite) String() string {
	return "infinite"
}
