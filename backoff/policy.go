// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backoff

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// A Kind identifies the variant of a backoff Policy.
type Kind int

const (
	// KindFixed identifies policies constructed with Fixed.
	KindFixed Kind = iota
	// KindRandom identifies policies constructed with NewRandom.
	KindRandom
	// KindFibonacci identifies policies constructed with NewFibonacci.
	KindFibonacci
)

// String returns the configuration file name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindRandom:
		return "random"
	case KindFibonacci:
		return "fibonacci"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// A Policy computes the delay to wait before retrying a failed attempt.
//
// Policies are safe for concurrent use by multiple goroutines. Any
// per-request progress, such as the position in the Fibonacci sequence,
// lives in the State passed to Delay, which belongs to exactly one
// request execution.
type Policy interface {
	// Delay returns the delay to wait after the attempt with zero-based
	// index attempt failed, before the next attempt starts. The state s
	// must be the same value for every call within one request
	// execution; its zero value is ready to use.
	Delay(attempt int, s *State) time.Duration
	// Kind returns the variant of the policy.
	Kind() Kind

	policy()
}

// Unit is the step Fibonacci policies add to the initial delay to
// obtain the second term of their sequence.
const Unit = time.Second

// State holds the progress of a policy within one request execution.
// Only Fibonacci policies use it. The zero value is an empty state.
type State struct {
	// Prev and Curr are the last two terms of the Fibonacci sequence
	// computed so far.
	Prev, Curr time.Duration
	// Capped is true once the sequence has reached the policy maximum.
	// A capped state always yields the maximum.
	Capped bool

	n    int
	last time.Duration
}

// Reset returns the state to its zero value.
func (s *State) Reset() {
	*s = State{}
}

// Fixed returns a policy which waits d before every retry. It panics
// if d is negative.
func Fixed(d time.Duration) Policy {
	if d < 0 {
		panic("stampede/backoff: negative delay")
	}
	return fixed(d)
}

type fixed time.Duration

func (p fixed) Delay(_ int, _ *State) time.Duration { return time.Duration(p) }
func (p fixed) Kind() Kind                         { return KindFixed }
func (p fixed) policy()                            {}

func (p fixed) String() string {
	return fmt.Sprintf("fixed(delay=%s)", time.Duration(p))
}

// maxRedraws bounds the number of times a Random policy draws again
// when a sample falls outside its range. After that the sample is
// clamped.
const maxRedraws = 8

// NewRandom returns a policy whose delays follow a normal distribution
// with mean (min+max)/2 and standard deviation (max-min)/6, truncated
// to the closed range [min, max]. Roughly 99.7% of the samples fall in
// the range on the first draw.
//
// Parameter jitter selects the random number generator. If jitter is
// nil, a generator seeded from the current time is used. Otherwise you
// may specify either a seed value (as a time.Time, int, or int64) or a
// random number generator (as a rand.Source or *rand.Rand). Seeds are
// mainly useful in tests that need a repeatable sequence.
//
// NewRandom panics if min is negative or max is less than min.
func NewRandom(min, max time.Duration, jitter interface{}) Policy {
	if min < 0 {
		panic("stampede/backoff: negative minimum delay")
	}
	if max < min {
		panic("stampede/backoff: maximum delay less than minimum")
	}
	return &random{
		min:  min,
		max:  max,
		rand: jitterToRand(jitter),
	}
}

type random struct {
	min  time.Duration
	max  time.Duration
	rand *rand.Rand
	lock sync.Mutex
}

func (p *random) Delay(_ int, _ *State) time.Duration {
	if p.min == p.max {
		return p.min
	}

	mean := float64(p.min)/2 + float64(p.max)/2
	sd := (float64(p.max) - float64(p.min)) / 6

	p.lock.Lock()
	defer p.lock.Unlock()
	var x float64
	for i := 0; i <= maxRedraws; i++ {
		x = mean + p.rand.NormFloat64()*sd
		if float64(p.min) <= x && x <= float64(p.max) {
			return time.Duration(x)
		}
	}

	if x < float64(p.min) {
		return p.min
	}
	return p.max
}

func (p *random) Kind() Kind { return KindRandom }
func (p *random) policy()    {}

func (p *random) String() string {
	return fmt.Sprintf("random(min_delay=%s, max_delay=%s)", p.min, p.max)
}

// NewFibonacci returns a policy whose delays follow the Fibonacci
// sequence, starting at initial and never exceeding maximum.
//
// The delay before the first retry is initial. After that the policy
// walks the sequence s0 = initial, s1 = initial+Unit and
// s(n) = s(n-1) + s(n-2), so with initial zero and maximum 144 seconds
// successive delays are 0, 0, 1, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89 and
// then 144 seconds forever. Once a term would exceed maximum, maximum
// is returned for every later retry.
//
// NewFibonacci panics if initial is negative or maximum is less than
// initial.
func NewFibonacci(initial, maximum time.Duration) Policy {
	if initial < 0 {
		panic("stampede/backoff: negative initial delay")
	}
	if maximum < initial {
		panic("stampede/backoff: maximum delay less than initial")
	}
	return fibonacci{initial: initial, maximum: maximum}
}

type fibonacci struct {
	initial time.Duration
	maximum time.Duration
}

func (p fibonacci) Delay(attempt int, s *State) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if s == nil {
		s = &State{}
	} else if s.n > attempt+1 {
		s.Reset()
	}

	for s.n <= attempt {
		if s.Capped {
			s.n, s.last = attempt+1, p.maximum
			break
		}
		p.next(s)
	}

	return s.last
}

// next computes the delay for index s.n and advances the state.
func (p fibonacci) next(s *State) {
	n := s.n
	s.n++
	switch n {
	case 0:
		s.last = p.initial
		return
	case 1:
		s.Curr = p.initial
	case 2:
		s.Prev, s.Curr = s.Curr, p.initial+Unit
	default:
		s.Prev, s.Curr = s.Curr, s.Prev+s.Curr
	}

	if s.Curr > p.maximum || s.Curr < s.Prev {
		s.Capped = true
		s.last = p.maximum
		return
	}
	s.last = s.Curr
}

func (p fibonacci) Kind() Kind { return KindFibonacci }
func (p fibonacci) policy()    {}

func (p fibonacci) String() string {
	return fmt.Sprintf("fibonacci(initial_delay=%s, maximum_delay=%s)", p.initial, p.maximum)
}

func jitterToRand(jitter interface{}) *rand.Rand {
	var s rand.Source
	switch j := jitter.(type) {
	case nil:
		s = rand.NewSource(time.Now().UnixNano())
	case time.Time:
		s = rand.NewSource(j.UnixNano())
	case int:
		s = rand.NewSource(int64(j))
	case int64:
		s = rand.NewSource(j)
	case *rand.Rand:
		if j == nil {
			panic("stampede/backoff: jitter may not be a typed nil")
		}
		return j
	case rand.Source:
		s = j
	default:
		panic("stampede/backoff: invalid jitter type")
	}
	return rand.New(s)
}
