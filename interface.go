// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stampede

import (
	"net/http"
	"net/url"

	"github.com/gogama/stampede/request"
)

// Doer is the interface that wraps the basic Do method.
//
// Do executes an HTTP request plan, retrying as configured, and returns
// the final execution state and error, if any. RetryRequest and
// RetrySession implement Doer.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Doer interface {
	Do(p *request.Plan) (*request.Execution, error)
}

// Getter is the interface that wraps the basic Get method.
//
// Any Doer can be used to emulate a Getter via the Get function.
type Getter interface {
	Get(url string) (*request.Execution, error)
}

// Header is the interface that wraps the basic Head method.
//
// Any Doer can be used to emulate a Header via the Head function.
type Header interface {
	Head(url string) (*request.Execution, error)
}

// Optioner is the interface that wraps the basic Options method.
//
// Any Doer can be used to emulate an Optioner via the Options function.
type Optioner interface {
	Options(url string) (*request.Execution, error)
}

// Deleter is the interface that wraps the basic Delete method.
//
// Any Doer can be used to emulate a Deleter via the Delete function.
type Deleter interface {
	Delete(url string) (*request.Execution, error)
}

// Poster is the interface that wraps the basic Post method.
//
// The body parameter may be nil for an empty body, or a string, []byte,
// io.Reader or io.ReadCloser, as accepted by request.BodyBytes.
//
// Any Doer can be used to emulate a Poster via the Post function.
type Poster interface {
	Post(url, contentType string, body interface{}) (*request.Execution, error)
}

// Putter is the interface that wraps the basic Put method. Its body
// parameter follows the rules of Poster.
//
// Any Doer can be used to emulate a Putter via the Put function.
type Putter interface {
	Put(url, contentType string, body interface{}) (*request.Execution, error)
}

// Patcher is the interface that wraps the basic Patch method. Its body
// parameter follows the rules of Poster.
//
// Any Doer can be used to emulate a Patcher via the Patch function.
type Patcher interface {
	Patch(url, contentType string, body interface{}) (*request.Execution, error)
}

// FormPoster is the interface that wraps the basic PostForm method.
//
// PostForm issues a POST whose body is the URL-encoded keys and values
// from data, with content type application/x-www-form-urlencoded.
//
// Any Doer can be used to emulate a FormPoster via the PostForm
// function.
type FormPoster interface {
	PostForm(url string, data url.Values) (*request.Execution, error)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method.
//
// If the underlying implementation supports it, CloseIdleConnections
// closes any connections which were previously connected from previous
// requests but are now sitting idle in a "keep-alive" state. It does
// not interrupt any connections currently in use. Otherwise it does
// nothing.
type IdleCloser interface {
	CloseIdleConnections()
}

// Executor is the interface that groups the Do method with one method
// per HTTP verb and CloseIdleConnections.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Executor interface {
	Doer
	Getter
	Header
	Optioner
	Deleter
	Poster
	Putter
	Patcher
	FormPoster
	IdleCloser
}

// Get uses d to issue a GET to the specified URL.
//
// To make a request plan with custom headers, use request.NewPlan and
// d.Do.
func Get(d Doer, url string) (*request.Execution, error) {
	return noBody(d, http.MethodGet, url)
}

// Head uses d to issue a HEAD to the specified URL.
func Head(d Doer, url string) (*request.Execution, error) {
	return noBody(d, http.MethodHead, url)
}

// Options uses d to issue an OPTIONS to the specified URL.
func Options(d Doer, url string) (*request.Execution, error) {
	return noBody(d, http.MethodOptions, url)
}

// Delete uses d to issue a DELETE to the specified URL.
func Delete(d Doer, url string) (*request.Execution, error) {
	return noBody(d, http.MethodDelete, url)
}

// Post uses d to issue a POST to the specified URL with the given
// content type and body.
//
// The body parameter may be nil for an empty body, or a string, []byte,
// io.Reader or io.ReadCloser.
func Post(d Doer, url, contentType string, body interface{}) (*request.Execution, error) {
	return withBody(d, http.MethodPost, url, contentType, body)
}

// Put uses d to issue a PUT to the specified URL. Its parameters follow
// the rules of Post.
func Put(d Doer, url, contentType string, body interface{}) (*request.Execution, error) {
	return withBody(d, http.MethodPut, url, contentType, body)
}

// Patch uses d to issue a PATCH to the specified URL. Its parameters
// follow the rules of Post.
func Patch(d Doer, url, contentType string, body interface{}) (*request.Execution, error) {
	return withBody(d, http.MethodPatch, url, contentType, body)
}

// PostForm uses d to issue a POST to the specified URL, with data's
// keys and values URL-encoded as the request body.
//
// The Content-Type header is set to application/x-www-form-urlencoded.
// To set other headers, use request.NewPlan and d.Do.
func PostForm(d Doer, url string, data url.Values) (*request.Execution, error) {
	return Post(d, url, "application/x-www-form-urlencoded", data.Encode())
}

func noBody(d Doer, method, url string) (*request.Execution, error) {
	p, err := request.NewPlan(method, url, nil)
	if err != nil {
		return nil, err
	}
	return d.Do(p)
}

func withBody(d Doer, method, url, contentType string, body interface{}) (*request.Execution, error) {
	p, err := request.NewPlan(method, url, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		p.Header.Set("Content-Type", contentType)
	}
	return d.Do(p)
}

// Inflate converts any non-nil Doer into an Executor. This may be
// helpful when code that only has a Doer needs to call a function that
// requires an Executor.
func Inflate(d Doer) Executor {
	if d == nil {
		panic("stampede: nil doer")
	}

	if e, ok := d.(Executor); ok {
		return e
	}

	return inflated{d}
}

type inflated struct {
	doer Doer
}

func (i inflated) Do(p *request.Plan) (*request.Execution, error) {
	return i.doer.Do(p)
}

func (i inflated) Get(url string) (*request.Execution, error) {
	return Get(i.doer, url)
}

func (i inflated) Head(url string) (*request.Execution, error) {
	return Head(i.doer, url)
}

func (i inflated) Options(url string) (*request.Execution, error) {
	return Options(i.doer, url)
}

func (i inflated) Delete(url string) (*request.Execution, error) {
	return Delete(i.doer, url)
}

func (i inflated) Post(url, contentType string, body interface{}) (*request.Execution, error) {
	return Post(i.doer, url, contentType, body)
}

func (i inflated) Put(url, contentType string, body interface{}) (*request.Execution, error) {
	return Put(i.doer, url, contentType, body)
}

func (i inflated) Patch(url, contentType string, body interface{}) (*request.Execution, error) {
	return Patch(i.doer, url, contentType, body)
}

func (i inflated) PostForm(url string, data url.Values) (*request.Execution, error) {
	return PostForm(i.doer, url, data)
}

func (i inflated) CloseIdleConnections() {
	if ic, ok := i.doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}
