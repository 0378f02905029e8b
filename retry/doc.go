// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry decides whether a failed HTTP request attempt should be
// retried.
//
// Two separate questions are answered here. A Decider classifies a
// single attempt: did it fail in a way that a retry might fix? A Policy
// then decides, given how many attempts were made, whether another one
// is allowed:
//
//	decider := retry.StatusCode(502, 503, 504).Or(retry.TransientErr)
//	policy := retry.Fixed(3)
//
// The set of policies is closed. Fixed bounds the number of attempts;
// Infinite never gives up on a retriable failure, which is only
// appropriate when the plan context bounds the execution.
package retry
