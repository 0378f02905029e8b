// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stampede

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/gogama/stampede/config"
	"github.com/gogama/stampede/request"

	"golang.org/x/net/publicsuffix"
)

// A RetrySession makes HTTP requests with retry and backoff through one
// long-lived HTTPDoer, so cookies, pooled connections and the default
// headers in Header carry over from one call to the next.
//
// The default HTTPDoer is an http.Client with a cookie jar. Calls may
// run concurrently, but Header must not be changed while any call is
// in flight.
type RetrySession struct {
	// Header holds headers added to every plan executed in the session.
	// A header already set on the plan takes precedence.
	Header http.Header

	engine *engine
	doer   HTTPDoer
}

// NewRetrySession returns a RetrySession configured by opts.
//
// The retry configuration is resolved once, here. If it comes from a
// configuration file that cannot be decoded, the error is a
// *config.ParseError.
func NewRetrySession(opts ...Option) (*RetrySession, error) {
	o := buildOptions(opts)
	en, err := newEngine(o)
	if err != nil {
		return nil, err
	}

	doer := o.doer
	if doer == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
		doer = &http.Client{Jar: jar}
	}

	return &RetrySession{
		Header: make(http.Header),
		engine: en,
		doer:   doer,
	}, nil
}

// Config returns the retry configuration in use.
func (s *RetrySession) Config() config.Config {
	return s.engine.config
}

// Doer returns the HTTPDoer shared by every call of the session.
func (s *RetrySession) Doer() HTTPDoer {
	return s.doer
}

// Do executes the HTTP request plan p within the session, retrying
// failed attempts as configured. The result follows the rules of
// RetryRequest.Do.
//
// The session headers are applied to a copy of p, so p itself is not
// changed.
func (s *RetrySession) Do(p *request.Plan) (*request.Execution, error) {
	if p == nil {
		panic("stampede: nil plan")
	}
	if len(s.Header) > 0 {
		p = p.WithContext(p.Context())
		p.Header = p.Header.Clone()
		p.DefaultHeader(s.Header)
	}
	return s.engine.execute(p, s.doer)
}

// Get issues a GET to the specified URL, following the rules of Do.
func (s *RetrySession) Get(url string) (*request.Execution, error) {
	return Get(s, url)
}

// Head issues a HEAD to the specified URL, following the rules of Do.
func (s *RetrySession) Head(url string) (*request.Execution, error) {
	return Head(s, url)
}

// Options issues an OPTIONS to the specified URL, following the rules
// of Do.
func (s *RetrySession) Options(url string) (*request.Execution, error) {
	return Options(s, url)
}

// Delete issues a DELETE to the specified URL, following the rules of
// Do.
func (s *RetrySession) Delete(url string) (*request.Execution, error) {
	return Delete(s, url)
}

// Post issues a POST to the specified URL, following the rules of Do.
// The body may be nil, or a string, []byte, io.Reader or io.ReadCloser.
func (s *RetrySession) Post(url, contentType string, body interface{}) (*request.Execution, error) {
	return Post(s, url, contentType, body)
}

// Put issues a PUT to the specified URL. See Post.
func (s *RetrySession) Put(url, contentType string, body interface{}) (*request.Execution, error) {
	return Put(s, url, contentType, body)
}

// Patch issues a PATCH to the specified URL. See Post.
func (s *RetrySession) Patch(url, contentType string, body interface{}) (*request.Execution, error) {
	return Patch(s, url, contentType, body)
}

// PostForm issues a POST to the specified URL with data's keys and
// values URL-encoded as the body.
func (s *RetrySession) PostForm(url string, data url.Values) (*request.Execution, error) {
	return PostForm(s, url, data)
}

// CloseIdleConnections closes the idle connections of the session's
// HTTPDoer, if it supports doing so.
func (s *RetrySession) CloseIdleConnections() {
	if ic, ok := s.doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}
