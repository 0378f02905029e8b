// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewPlan(t *testing.T) {
	for _, testCase := range newPlanTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			p, err := NewPlan(testCase.method, testCase.url, resolveBody(t, testCase.body))
			testCase.asserts(t, p, err)
			if p != nil {
				assert.Same(t, context.Background(), p.Context())
			}
		})
	}
}

func TestNewPlanWithContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "bar")
	for _, testCase := range newPlanTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			p, err := NewPlanWithContext(ctx, testCase.method, testCase.url, resolveBody(t, testCase.body))
			testCase.asserts(t, p, err)
			if p != nil {
				assert.Same(t, ctx, p.Context())
			}
		})
	}
	t.Run("nil context", func(t *testing.T) {
		//lint:ignore SA1012 testing nil context handling
		p, err := NewPlanWithContext(nil, "GET", "http://example.com", nil)
		assert.Nil(t, p)
		assert.EqualError(t, err, nilCtxMsg)
	})
}

var newPlanTestCases = []struct {
	name    string
	method  string
	url     string
	body    interface{}
	asserts func(*testing.T, *Plan, error)
}{
	{
		name:   "empty method means GET",
		method: "",
		url:    "https://foo.com",
		asserts: func(t *testing.T, p *Plan, err error) {
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, "GET", p.Method)
			assert.Equal(t, "https://foo.com", p.URL.String())
			assert.Equal(t, "foo.com", p.Host)
			assert.NotNil(t, p.Header)
			assert.Nil(t, p.Body)
		},
	},
	{
		name:   "OPTIONS method",
		method: "OPTIONS",
		url:    "https://bar.com/*",
		asserts: func(t *testing.T, p *Plan, err error) {
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, "OPTIONS", p.Method)
		},
	},
	{
		name:   "extension method",
		method: "Fake",
		url:    "http://baz.com",
		asserts: func(t *testing.T, p *Plan, err error) {
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, "Fake", p.Method)
		},
	},
	{
		name:   "remove empty port",
		method: "GET",
		url:    "http://ham:",
		asserts: func(t *testing.T, p *Plan, err error) {
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, "ham", p.Host)
			assert.Equal(t, "ham", p.URL.Host)
		},
	},
	{
		name:   "keep IPv6 host",
		method: "GET",
		url:    "http://[::1]:8080/",
		asserts: func(t *testing.T, p *Plan, err error) {
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, "[::1]:8080", p.Host)
		},
	},
	{
		name:   "body type string",
		method: "POST",
		url:    "str",
		body:   "str",
		asserts: func(t *testing.T, p *Plan, err error) {
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, []byte("str"), p.Body)
		},
	},
	{
		name:   "body type io.Reader",
		method: "PUT",
		url:    "io.Reader",
		body: func(_ *testing.T) interface{} {
			return strings.NewReader("io.Reader")
		},
		asserts: func(t *testing.T, p *Plan, err error) {
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, []byte("io.Reader"), p.Body)
		},
	},
	{
		name:   "error invalid method",
		method: "\tGET",
		url:    "eggs",
		asserts: func(t *testing.T, p *Plan, err error) {
			assert.Nil(t, p)
			assert.EqualError(t, err, `stampede/request: invalid method "\tGET"`)
		},
	},
	{
		name:   "error invalid method separator",
		method: "GET/POST",
		url:    "eggs",
		asserts: func(t *testing.T, p *Plan, err error) {
			assert.Nil(t, p)
			assert.Error(t, err)
		},
	},
	{
		name:   "error invalid URL",
		method: "GET",
		url:    ":::",
		asserts: func(t *testing.T, p *Plan, err error) {
			assert.Nil(t, p)
			assert.Error(t, err)
		},
	},
	{
		name:   "error invalid body type",
		method: "POST",
		url:    "spam",
		body:   map[string]int{},
		asserts: func(t *testing.T, p *Plan, err error) {
			assert.Nil(t, p)
			assert.EqualError(t, err, badBodyTypeMsg)
		},
	},
	{
		name:   "error body read",
		method: "PATCH",
		url:    "hello",
		body: func(t *testing.T) interface{} {
			m := newMockReadCloser(t)
			m.On("Read", mock.AnythingOfType("[]uint8")).
				Return(5, errors.New("problematic")).
				Once()
			return m
		},
		asserts: func(t *testing.T, p *Plan, err error) {
			assert.Nil(t, p)
			assert.EqualError(t, err, "problematic")
		},
	},
}

func resolveBody(t *testing.T, body interface{}) interface{} {
	if f, ok := body.(func(*testing.T) interface{}); ok {
		body = f(t)
	}
	return body
}

func TestPlan_DefaultHeader(t *testing.T) {
	p, err := NewPlan("GET", "http://example.com", nil)
	require.NoError(t, err)
	p.Header.Set("Accept", "text/plain")
	shared := http.Header{
		"Accept":     []string{"application/json"},
		"user-agent": []string{"stampede"},
		"X-Trace":    []string{"a", "b"},
	}
	p.DefaultHeader(shared)
	assert.Equal(t, "text/plain", p.Header.Get("Accept"))
	assert.Equal(t, "stampede", p.Header.Get("User-Agent"))
	assert.Equal(t, []string{"a", "b"}, p.Header["X-Trace"])
	p.Header["X-Trace"][0] = "z"
	assert.Equal(t, "a", shared["X-Trace"][0], "shared header must not be aliased")
	t.Run("nil plan header", func(t *testing.T) {
		q := &Plan{}
		q.DefaultHeader(http.Header{"Accept": []string{"*/*"}})
		assert.Equal(t, "*/*", q.Header.Get("Accept"))
	})
}

func TestPlan_AddCookie(t *testing.T) {
	p, err := NewPlan("", "cookietown", nil)
	require.NoError(t, err)
	r, err := http.NewRequest("", "cookietown", nil)
	require.NoError(t, err)
	for _, c := range []*http.Cookie{
		{Name: "foo", Value: "bar"},
		{Name: "foo", Value: "baz", Path: "a/b/c", Secure: true},
	} {
		p.AddCookie(c)
		r.AddCookie(c)
	}
	assert.Equal(t, "foo=bar; foo=baz", p.Header.Get("Cookie"))
	assert.Equal(t, r.Header["Cookie"], p.Header["Cookie"])
}

func TestPlan_SetBasicAuth(t *testing.T) {
	p, err := NewPlan("", "http://superdoopersecure.com", nil)
	require.NoError(t, err)
	r, err := http.NewRequest("", "http://superdoopersecure.com", nil)
	require.NoError(t, err)
	p.SetBasicAuth("patsy", "password")
	r.SetBasicAuth("patsy", "password")
	assert.Equal(t, "Basic cGF0c3k6cGFzc3dvcmQ=", p.Header.Get("Authorization"))
	assert.Equal(t, r.Header["Authorization"], p.Header["Authorization"])
}

func TestPlan_WithContext(t *testing.T) {
	p, err := NewPlan("PATCH", "test", "body")
	require.NoError(t, err)
	t.Run("nil context", func(t *testing.T) {
		assert.PanicsWithValue(t, nilCtxMsg, func() {
			//lint:ignore SA1012 testing nil context handling
			p.WithContext(nil)
		})
	})
	t.Run("valid context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := p.WithContext(ctx)
		assert.NotSame(t, p, q)
		assert.Same(t, context.Background(), p.Context())
		assert.Same(t, ctx, q.Context())
		assert.Equal(t, p.Body, q.Body)
	})
}

func TestPlan_ToRequest(t *testing.T) {
	t.Run("fields", func(t *testing.T) {
		p, err := NewPlan("HEAD", "http://example.com/x", nil)
		require.NoError(t, err)
		p.Close = true
		p.Host = "override.example.com"
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		r := p.ToRequest(ctx)
		require.NotNil(t, r)
		assert.Equal(t, "HEAD", r.Method)
		assert.Same(t, p.URL, r.URL)
		assert.True(t, r.Close)
		assert.Equal(t, "override.example.com", r.Host)
		assert.Same(t, ctx, r.Context())
	})
	t.Run("body empty", func(t *testing.T) {
		for _, body := range []interface{}{nil, "", []byte{}, strings.NewReader("")} {
			p, err := NewPlan("DELETE", "test", body)
			require.NoError(t, err)
			r := p.ToRequest(context.Background())
			assert.Nil(t, r.Body)
			assert.Nil(t, r.GetBody)
			assert.Equal(t, int64(0), r.ContentLength)
		}
	})
	t.Run("body replayable", func(t *testing.T) {
		p, err := NewPlan("POST", "test", "foo")
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			r := p.ToRequest(context.Background())
			assert.Equal(t, int64(3), r.ContentLength)
			b, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.Equal(t, "foo", string(b))
			rc, err := r.GetBody()
			require.NoError(t, err)
			b, err = io.ReadAll(rc)
			assert.NoError(t, err)
			assert.Equal(t, "foo", string(b))
		}
	})
}
