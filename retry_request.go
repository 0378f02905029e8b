// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stampede

import (
	"net/http"
	"net/url"

	"github.com/gogama/stampede/config"
	"github.com/gogama/stampede/request"
)

// A RetryRequest makes independent HTTP requests with retry and
// backoff. Nothing is shared between two calls: each obtains a fresh
// HTTPDoer, and the doer's idle connections are closed when the call
// returns. Use a RetrySession to keep cookies and connections across
// calls.
//
// A RetryRequest is safe for concurrent use by multiple goroutines.
type RetryRequest struct {
	engine  *engine
	newDoer func() HTTPDoer
}

// NewRetryRequest returns a RetryRequest configured by opts.
//
// The retry configuration is resolved once, here. If it comes from a
// configuration file that cannot be decoded, the error is a
// *config.ParseError.
func NewRetryRequest(opts ...Option) (*RetryRequest, error) {
	o := buildOptions(opts)
	en, err := newEngine(o)
	if err != nil {
		return nil, err
	}

	newDoer := o.doerFactory
	if newDoer == nil && o.doer != nil {
		d := o.doer
		newDoer = func() HTTPDoer { return d }
	}
	if newDoer == nil {
		newDoer = newTransientClient
	}

	return &RetryRequest{
		engine:  en,
		newDoer: newDoer,
	}, nil
}

func newTransientClient() HTTPDoer {
	var transport http.RoundTripper
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = t.Clone()
	}
	return &http.Client{Transport: transport}
}

// Config returns the retry configuration in use.
func (rr *RetryRequest) Config() config.Config {
	return rr.engine.config
}

// Do executes the HTTP request plan p, retrying failed attempts as
// configured.
//
// Do panics if p is nil. Otherwise the returned Execution is never
// nil. On success the error is nil and the Execution holds the final
// response and its fully read body. A 404 or any other status the
// decider does not consider a failure is a success. Otherwise the
// error is one of:
//
//   - *ExhaustedError, when the last attempt failed and the retry
//     policy allows no more;
//   - *FatalError, when an attempt ended in a transport error that is
//     not worth retrying;
//   - *url.Error wrapping the context error, when the plan context
//     ended the execution.
func (rr *RetryRequest) Do(p *request.Plan) (*request.Execution, error) {
	doer := rr.newDoer()
	defer func() {
		if ic, ok := doer.(IdleCloser); ok {
			ic.CloseIdleConnections()
		}
	}()
	return rr.engine.execute(p, doer)
}

// Get issues a GET to the specified URL, following the rules of Do.
func (rr *RetryRequest) Get(url string) (*request.Execution, error) {
	return Get(rr, url)
}

// Head issues a HEAD to the specified URL, following the rules of Do.
func (rr *RetryRequest) Head(url string) (*request.Execution, error) {
	return Head(rr, url)
}

// Options issues an OPTIONS to the specified URL, following the rules
// of Do.
func (rr *RetryRequest) Options(url string) (*request.Execution, error) {
	return Options(rr, url)
}

// Delete issues a DELETE to the specified URL, following the rules of
// Do.
func (rr *RetryRequest) Delete(url string) (*request.Execution, error) {
	return Delete(rr, url)
}

// Post issues a POST to the specified URL, following the rules of Do.
// The body may be nil, or a string, []byte, io.Reader or io.ReadCloser.
func (rr *RetryRequest) Post(url, contentType string, body interface{}) (*request.Execution, error) {
	return Post(rr, url, contentType, body)
}

// Put issues a PUT to the specified URL. See Post.
func (rr *RetryRequest) Put(url, contentType string, body interface{}) (*request.Execution, error) {
	return Put(rr, url, contentType, body)
}

// Patch issues a PATCH to the specified URL. See Post.
func (rr *RetryRequest) Patch(url, contentType string, body interface{}) (*request.Execution, error) {
	return Patch(rr, url, contentType, body)
}

// PostForm issues a POST to the specified URL with data's keys and
// values URL-encoded as the body.
func (rr *RetryRequest) PostForm(url string, data url.Values) (*request.Execution, error) {
	return PostForm(rr, url, data)
}

// CloseIdleConnections does nothing, since a RetryRequest already
// closes idle connections after each call. It exists so that
// RetryRequest implements Executor.
func (rr *RetryRequest) CloseIdleConnections() {}
