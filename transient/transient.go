// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"syscall"
)

// A Category is the transience category of a particular error, as
// reported by function Categorize().
//
// The category Not means the error is not transient from the perspective
// of completing an HTTP request attempt successfully, or in other words
// that a retry after encountering this error is very unlikely to succeed.
//
// All other categories indicate the error is transient from the
// perspective of completing an HTTP request attempt successfully, or in
// other words that a retry after encountering this error has some
// prospect of success.
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout. The server may be going
	// through a temporary period of slowness, or the client may succeed
	// on a future attempt waiting longer.
	//
	// Function Categorize() will return Timeout if the error or any of
	// its wrapped causes has a Timeout() function that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED.
	//
	// Connection refusal is classified as transient because it happens
	// while the service on the remote host is starting or restarting.
	ConnRefused
	// ConnReset indicates the remote host returned an RST packet on a
	// previously active TCP connection, and corresponds to the POSIX
	// error code ECONNRESET.
	//
	// Connection reset is typical of a remote service that is being
	// taken down mid-request, or of an overloaded load balancer.
	ConnReset
	// ConnAborted indicates the local network stack aborted the
	// connection, and corresponds to the POSIX error code ECONNABORTED.
	ConnAborted
	// Closed indicates the remote host closed the connection before a
	// complete HTTP response was read (io.EOF or io.ErrUnexpectedEOF).
	Closed
	// Unreachable indicates the local network stack found no route to
	// the remote host or network, and corresponds to the POSIX error
	// codes EHOSTUNREACH, ENETUNREACH, EHOSTDOWN and ENETDOWN.
	//
	// Routes come back when a failed-over network or host does.
	Unreachable
	// DNS indicates a DNS lookup of the remote host failed, whether the
	// resolver flagged the failure as temporary or reported the host as
	// not found. During an outage records are often briefly missing.
	DNS
	// Dial indicates any other failure to establish a connection, as
	// reported by a *net.OpError whose Op is "dial".
	Dial
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"ConnRefused",
	"ConnReset",
	"ConnAborted",
	"Closed",
	"Unreachable",
	"DNS",
	"Dial",
}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// Categorize returns the transience category of the given error. All
// non-nil transient errors result in a transience category other than
// Not. A nil error, and an error that is not transient from the
// perspective of completing an HTTP request attempt, both produce the
// return value Not.
//
// In assessing transience, Categorize looks at wrapped cause errors
// contained within err, not just err itself. However, Categorize never
// checks if an error has a Temporary() function that returns true, as
// the semantics of Temporary() aren't entirely clear.
//
// TLS certificate verification failures are never transient, even when
// they surface while dialing.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	if badCertificate(err) {
		return Not
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		case syscall.ECONNABORTED:
			return ConnAborted
		case syscall.EHOSTUNREACH, syscall.ENETUNREACH, syscall.EHOSTDOWN, syscall.ENETDOWN:
			return Unreachable
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return Dial
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return Closed
	}

	return Not
}

func badCertificate(err error) bool {
	var certErr *tls.CertificateVerificationError
	var authErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var invalidErr x509.CertificateInvalidError
	return errors.As(err, &certErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr)
}

// Is reports whether err is transient, i.e. whether Categorize(err)
// returns a category other than Not.
func Is(err error) bool {
	return Categorize(err) != Not
}

type hasTimeout interface {
	Timeout() bool
}
