// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package backoff provides the policies that decide how long the retrying
client waits between a failed attempt and the next one.

Three policies are provided. Fixed waits the same amount of time before
every retry. Random draws each wait from a normal distribution truncated
to a closed range, which spreads the retries of many clients that failed
at the same moment. Fibonacci grows the wait along the Fibonacci
sequence until it reaches a cap.

	p := backoff.NewFibonacci(0, 144*time.Second)
	var s backoff.State
	for attempt := 0; attempt < 5; attempt++ {
		fmt.Println(p.Delay(attempt, &s)) // 0s 0s 1s 1s 2s
	}

The set of policies is closed: only the constructors in this package
return values that implement Policy.
*/
package backoff
