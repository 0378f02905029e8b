// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for the timeout of each individual
// attempt within a retrying request execution.
//
// A per-attempt timeout is independent of the retry and backoff
// policies: an attempt that times out is a transient failure and is
// retried like any other. The default policy, Infinite, sets no
// timeout, leaving the plan context as the only deadline.
package timeout
