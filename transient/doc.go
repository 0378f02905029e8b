// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport errors by how likely a retry
// of the same HTTP request attempt is to succeed.
//
// The classification is fixed. Client-side timeouts, connections that
// were refused, reset or aborted, unreachable hosts and networks, DNS
// lookup failures, any other failure to dial, and connections closed
// before a full response was read are transient. Everything else is
// not, notably malformed requests, unsupported URL schemes and TLS
// certificate verification failures.
package transient
