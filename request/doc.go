// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request describes a logical HTTP request which may take several
attempts to complete, and the state of carrying it out.

A Plan is a re-playable description of the request: unlike an
http.Request, whose body is a one-shot stream, a Plan buffers its body
so that every attempt sends exactly the same bytes.

	p, err := request.NewPlan("PUT", "https://example.com/things/1", body)
	if err != nil {
		...
	}
	p.Header.Set("Content-Type", "application/json")

An Execution holds the state of one run of a Plan: the zero-based
attempt number, the outcome and response of the most recent attempt,
the backoff computed before the next attempt, and so on. It is created
when a retrying client starts on a plan, and handed back to the caller
when the client is done.
*/
package request
