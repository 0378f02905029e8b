// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package stampede makes HTTP requests that retry failed attempts under a
configurable retry policy, pausing between attempts under a configurable
backoff policy, so that a struggling upstream service is not trampled by
its own clients.

There are two entry points. A RetryRequest makes independent requests
that share nothing:

	rr, err := stampede.NewRetryRequest()
	if err != nil {
		// A stampede.yml was found but is malformed.
	}
	e, err := rr.Get("https://www.example.com")

A RetrySession keeps cookies, pooled connections and default headers
across requests:

	s, err := stampede.NewRetrySession()
	...
	s.Header.Set("Authorization", "Bearer "+token)
	e, err := s.Post("https://www.example.com/upload", "application/json", body)

Both offer one method per HTTP verb plus Do, which executes a
request.Plan built by the caller.

The retry configuration comes from, in order of preference, the
WithConfig option, the file named by the STAMPEDE_CONFIG environment
variable, the nearest stampede.yml at or above the working directory or
in the home directory, and finally config.Default(). See package config.

	rr, err := stampede.NewRetryRequest(stampede.WithConfig(config.Config{
		RetryEnabled:   true,
		RetryPolicy:    retry.Fixed(3),
		BackoffEnabled: true,
		BackoffPolicy:  backoff.NewFibonacci(0, 30*time.Second),
	}))

Each attempt is classified by a retry.Decider. By default responses
with status 429, 502, 503 or 504 and transient transport errors are
retried, other transport errors fail the request at once, and any other
response, 404 included, is returned as a success. When retries run out
the error is an *ExhaustedError; a non-retriable transport error is a
*FatalError.

A request made under retry.Infinite never gives up on its own. Bound
it with a deadline on the plan context:

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	p, _ := request.NewPlanWithContext(ctx, "GET", url, nil)
	e, err := rr.Do(p)

Diagnostics go to a zerolog logger (WithLogger), and handlers installed
with WithHandlers run at each Event of an execution.
*/
package stampede
