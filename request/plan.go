// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

const nilCtxMsg = "stampede/request: nil context"

// A Plan contains a logical HTTP request for execution by a retrying
// client.
//
// The fields mirror the client-side fields of http.Request, except that
// the body is pre-buffered so that it can be sent once per attempt.
//
// Like an http.Request, a Plan has a context, which bounds the whole
// logical request: every attempt and every backoff wait in between.
// The context is the only way to stop an execution early.
type Plan struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.). An
	// empty string means GET.
	Method string

	// URL specifies the URL to access.
	URL *urlpkg.URL

	// Header contains the request header fields to be sent on every
	// attempt.
	Header http.Header

	// Body is the pre-buffered request body. A nil or empty body means
	// no request body is sent.
	Body []byte

	// Close stipulates whether to close the connection after each
	// attempt, preventing connection re-use between attempts.
	Close bool

	// Host optionally overrides the Host header to send. If empty, the
	// value of URL.Host is sent.
	Host string

	ctx context.Context
}

// NewPlan wraps NewPlanWithContext using the background context.
func NewPlan(method, url string, body interface{}) (*Plan, error) {
	return NewPlanWithContext(context.Background(), method, url, body)
}

// NewPlanWithContext returns a new Plan given a context, method, URL,
// and optional body.
//
// Parameter body may be nil (empty body), or a string, []byte,
// io.Reader, or io.ReadCloser; see BodyBytes.
func NewPlanWithContext(ctx context.Context, method, url string, body interface{}) (*Plan, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if method == "" {
		method = http.MethodGet
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("stampede/request: invalid method %q", method)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, err
	}
	u.Host = removeEmptyPort(u.Host)
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return &Plan{
		ctx:    ctx,
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Body:   b,
		Host:   u.Host,
	}, nil
}

// Context returns the plan's context, which is never nil.
func (p *Plan) Context() context.Context {
	if p.ctx != nil {
		return p.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of p with its context changed to
// ctx, which must be non-nil.
func (p *Plan) WithContext(ctx context.Context) *Plan {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	p2 := new(Plan)
	*p2 = *p
	p2.ctx = ctx
	return p2
}

// DefaultHeader copies every field of h whose key is not yet present
// in the plan header. It is how a session applies its shared headers
// without overriding the ones set on an individual plan.
func (p *Plan) DefaultHeader(h http.Header) {
	if len(h) == 0 {
		return
	}
	if p.Header == nil {
		p.Header = make(http.Header, len(h))
	}
	for k, vs := range h {
		k = http.CanonicalHeaderKey(k)
		if _, ok := p.Header[k]; ok {
			continue
		}
		p.Header[k] = append([]string(nil), vs...)
	}
}

// AddCookie adds a cookie to the plan. As with http.Request, all
// cookies are written into the same Cookie header, separated by
// semicolons, and only the name and value are sent.
func (p *Plan) AddCookie(c *http.Cookie) {
	c2 := &http.Cookie{Name: c.Name, Value: c.Value}
	s := c2.String()
	if h := p.Header.Get("Cookie"); h != "" {
		p.Header.Set("Cookie", h+"; "+s)
	} else {
		p.Header.Set("Cookie", s)
	}
}

// SetBasicAuth sets the plan's Authorization header to use HTTP Basic
// Authentication with the provided username and password.
func (p *Plan) SetBasicAuth(username, password string) {
	auth := username + ":" + password
	p.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(auth)))
}

// ToRequest creates the http.Request for one attempt of the plan. The
// context of the new request is set to ctx, which may not be nil.
//
// The URL and Header of the returned request reference the plan's own
// values; clone them before changing them.
func (p *Plan) ToRequest(ctx context.Context) *http.Request {
	r := (&http.Request{
		Method:     p.Method,
		URL:        p.URL,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     p.Header,
		Close:      p.Close,
		Host:       p.Host,
	}).WithContext(ctx)
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if len(p.Body) > 0 {
		body := p.Body
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		r.ContentLength = int64(len(body))
	}
	return r
}

func validMethod(method string) bool {
	// Method = token (RFC 7230 section 3.1.1). The empty method never
	// reaches here, it is interpreted as GET.
	return strings.IndexFunc(method, func(r rune) bool {
		return !httpguts.IsTokenRune(r)
	}) == -1
}

// removeEmptyPort strips the empty port in "host:" as mandated by
// RFC 3986 section 6.2.3.
func removeEmptyPort(host string) string {
	if strings.LastIndex(host, ":") > strings.LastIndex(host, "]") {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
