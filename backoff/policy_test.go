// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backoff

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	assert.Equal(t, "fixed", KindFixed.String())
	assert.Equal(t, "random", KindRandom.String())
	assert.Equal(t, "fibonacci", KindFibonacci.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestFixed(t *testing.T) {
	t.Run("negative", func(t *testing.T) {
		assert.PanicsWithValue(t, "stampede/backoff: negative delay", func() {
			Fixed(-1)
		})
	})
	for _, d := range []time.Duration{0, time.Millisecond, 5 * time.Second} {
		t.Run(d.String(), func(t *testing.T) {
			p := Fixed(d)
			assert.Equal(t, KindFixed, p.Kind())
			var s State
			for i := 0; i < 50; i++ {
				assert.Equal(t, d, p.Delay(i, &s))
			}
			assert.Equal(t, d, p.Delay(0, nil))
			assert.Equal(t, fmt.Sprintf("fixed(delay=%s)", d), fmt.Sprint(p))
		})
	}
}

func TestNewRandom(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		assert.PanicsWithValue(t, "stampede/backoff: negative minimum delay", func() {
			NewRandom(-1, time.Second, nil)
		})
		assert.PanicsWithValue(t, "stampede/backoff: maximum delay less than minimum", func() {
			NewRandom(2*time.Second, time.Second, nil)
		})
		assert.PanicsWithValue(t, "stampede/backoff: invalid jitter type", func() {
			NewRandom(0, time.Second, float64(1))
		})
		var nilRand *rand.Rand
		assert.PanicsWithValue(t, "stampede/backoff: jitter may not be a typed nil", func() {
			NewRandom(0, time.Second, nilRand)
		})
	})
	t.Run("degenerate range", func(t *testing.T) {
		p := NewRandom(time.Second, time.Second, nil)
		for i := 0; i < 10; i++ {
			assert.Equal(t, time.Second, p.Delay(i, nil))
		}
	})
	t.Run("jitter types", func(t *testing.T) {
		jitters := []struct {
			name  string
			value interface{}
		}{
			{"nil", nil},
			{"time.Time", time.Now()},
			{"int", 1},
			{"int64", int64(2)},
			{"rand.Source", rand.NewSource(3)},
			{"*rand.Rand", rand.New(rand.NewSource(4))},
		}
		for _, j := range jitters {
			t.Run(j.name, func(t *testing.T) {
				p := NewRandom(0, time.Second, j.value)
				assert.Equal(t, KindRandom, p.Kind())
				d := p.Delay(0, nil)
				assert.GreaterOrEqual(t, d, time.Duration(0))
				assert.LessOrEqual(t, d, time.Second)
			})
		}
	})
	t.Run("repeatable with seed", func(t *testing.T) {
		p1 := NewRandom(time.Second, 3*time.Second, 42)
		p2 := NewRandom(time.Second, 3*time.Second, int64(42))
		for i := 0; i < 100; i++ {
			assert.Equal(t, p1.Delay(i, nil), p2.Delay(i, nil))
		}
	})
	t.Run("within bounds", func(t *testing.T) {
		min, max := 2*time.Second, 4*time.Second
		p := NewRandom(min, max, nil)
		var sum time.Duration
		const n = 10000
		for i := 0; i < n; i++ {
			d := p.Delay(i, nil)
			require.GreaterOrEqual(t, d, min)
			require.LessOrEqual(t, d, max)
			sum += d
		}
		mean := sum / n
		assert.InDelta(t, float64(3*time.Second), float64(mean), float64(100*time.Millisecond))
	})
	t.Run("concurrent", func(t *testing.T) {
		p := NewRandom(0, time.Second, 7)
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 500; i++ {
					d := p.Delay(i, nil)
					assert.GreaterOrEqual(t, d, time.Duration(0))
					assert.LessOrEqual(t, d, time.Second)
				}
			}()
		}
		wg.Wait()
	})
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "random(min_delay=1s, max_delay=2s)", fmt.Sprint(NewRandom(time.Second, 2*time.Second, 0)))
	})
}

func TestNewFibonacci(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		assert.PanicsWithValue(t, "stampede/backoff: negative initial delay", func() {
			NewFibonacci(-1, time.Second)
		})
		assert.PanicsWithValue(t, "stampede/backoff: maximum delay less than initial", func() {
			NewFibonacci(2*time.Second, time.Second)
		})
	})
	t.Run("zero to 144", func(t *testing.T) {
		p := NewFibonacci(0, 144*time.Second)
		assert.Equal(t, KindFibonacci, p.Kind())
		expected := []int{0, 0, 1, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 144, 144, 144}
		var s State
		for i, x := range expected {
			assert.Equal(t, time.Duration(x)*time.Second, p.Delay(i, &s), fmt.Sprintf("attempt %d", i))
		}
		assert.True(t, s.Capped)
		assert.Equal(t, 144*time.Second, p.Delay(1000, &s))
	})
	t.Run("nonzero initial", func(t *testing.T) {
		p := NewFibonacci(2*time.Second, 20*time.Second)
		expected := []int{2, 2, 3, 5, 8, 13, 20, 20}
		var s State
		for i, x := range expected {
			assert.Equal(t, time.Duration(x)*time.Second, p.Delay(i, &s), fmt.Sprintf("attempt %d", i))
		}
	})
	t.Run("independent states", func(t *testing.T) {
		p := NewFibonacci(0, 144*time.Second)
		var s1, s2 State
		for i := 0; i < 8; i++ {
			p.Delay(i, &s1)
		}
		assert.Equal(t, time.Duration(0), p.Delay(0, &s2))
		assert.Equal(t, time.Duration(0), p.Delay(1, &s2))
		assert.Equal(t, 13*time.Second, p.Delay(8, &s1))
	})
	t.Run("repeated and skipped attempts", func(t *testing.T) {
		p := NewFibonacci(0, 144*time.Second)
		var s State
		assert.Equal(t, 3*time.Second, p.Delay(5, &s))
		assert.Equal(t, 3*time.Second, p.Delay(5, &s))
		assert.Equal(t, time.Second, p.Delay(2, &s))
		assert.Equal(t, 8*time.Second, p.Delay(7, nil))
	})
	t.Run("zero maximum", func(t *testing.T) {
		p := NewFibonacci(0, 0)
		var s State
		for i := 0; i < 5; i++ {
			assert.Equal(t, time.Duration(0), p.Delay(i, &s))
		}
	})
	t.Run("overflow", func(t *testing.T) {
		const max = time.Duration(1<<63 - 1)
		p := NewFibonacci(max/2, max)
		var s State
		for i := 0; i < 10; i++ {
			assert.GreaterOrEqual(t, p.Delay(i, &s), time.Duration(0))
		}
		assert.True(t, s.Capped)
	})
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "fibonacci(initial_delay=0s, maximum_delay=2m24s)", fmt.Sprint(NewFibonacci(0, 144*time.Second)))
	})
}

func TestStateReset(t *testing.T) {
	s := State{Prev: 1, Curr: 2, Capped: true, n: 3, last: 4}
	s.Reset()
	assert.Equal(t, State{}, s)
}
