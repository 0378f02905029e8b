// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stampede

import (
	"github.com/gogama/stampede/request"
)

// A HandlerGroup is a group of event handler chains, one per Event.
// The zero value is an empty group.
//
// Install handlers before passing the group to WithHandlers. A group
// must not be changed while executions that use it are in flight.
type HandlerGroup struct {
	handlers [][]Handler
}

// PushBack adds an event handler to the back of the chain for evt.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("stampede: nil handler")
	}
	if evt < 0 || int(evt) >= numEvents {
		panic("stampede: invalid event")
	}

	if g.handlers == nil {
		g.handlers = make([][]Handler, numEvents)
	}

	g.handlers[evt] = append(g.handlers[evt], h)
}

// Len returns the number of handlers in the chain for evt.
func (g *HandlerGroup) Len(evt Event) int {
	i := int(evt)
	if i < 0 || i >= len(g.handlers) {
		return 0
	}
	return len(g.handlers[i])
}

func (g *HandlerGroup) run(evt Event, e *request.Execution) {
	i := int(evt)
	if i < len(g.handlers) {
		for _, h := range g.handlers[i] {
			h.Handle(evt, e)
		}
	}
}

// A Handler handles the occurrence of an event during a request
// execution.
type Handler interface {
	Handle(Event, *request.Execution)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers.
type HandlerFunc func(Event, *request.Execution)

// Handle calls f(evt, e).
func (f HandlerFunc) Handle(evt Event, e *request.Execution) {
	f(evt, e)
}
