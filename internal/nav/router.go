// Package nav maps path-style routes to view-activation handlers and keeps a
// history stack so transitions can be reversed without refetching.
package nav

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Section identifies the navigational affordance a route belongs to. At most
// one section is active at a time.
type Section int

const (
	SectionNone Section = iota
	SectionOrders
	SectionSecDefs
	SectionExecutions
)

// String returns the section's display name.
func (s Section) String() string {
	switch s {
	case SectionOrders:
		return "orders"
	case SectionSecDefs:
		return "secdefs"
	case SectionExecutions:
		return "executions"
	}
	return "none"
}

// Handler activates the view for a matched route. The id argument holds the
// captured ":id" segment, or zero for list routes.
type Handler func(id int)

type route struct {
	segments []string // ":id" marks a capture segment
	section  Section
	handler  Handler
}

// Router dispatches paths to handlers and records each successful transition
// on a history stack.
type Router struct {
	mu      sync.Mutex
	routes  []route
	history []string
	current string
	section Section
}

// NewRouter creates a router with no routes registered.
func NewRouter() *Router {
	return &Router{}
}

// Handle registers a path pattern. Patterns are slash-separated literals
// with an optional ":id" capture segment, e.g. "orders/:id". The empty
// pattern matches the root path.
func (r *Router) Handle(pattern string, section Section, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route{
		segments: splitPath(pattern),
		section:  section,
		handler:  h,
	})
}

// Navigate matches the path against the registered patterns, invokes the
// handler, and pushes the previous path onto the history stack. An unknown
// path is an error and changes nothing.
func (r *Router) Navigate(path string) error {
	return r.dispatch(path, true)
}

// Back pops the most recent path off the history stack and re-dispatches it.
// It reports false when there is nothing to go back to.
func (r *Router) Back() bool {
	r.mu.Lock()
	if len(r.history) == 0 {
		r.mu.Unlock()
		return false
	}
	prev := r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	r.mu.Unlock()

	return r.dispatch(prev, false) == nil
}

// Current returns the current path.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// ActiveSection returns the section of the current route.
func (r *Router) ActiveSection() Section {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.section
}

func (r *Router) dispatch(path string, push bool) error {
	segments := splitPath(path)

	r.mu.Lock()
	var matched *route
	var id int
	for i := range r.routes {
		if gotID, ok := match(r.routes[i].segments, segments); ok {
			matched = &r.routes[i]
			id = gotID
			break
		}
	}
	if matched == nil {
		r.mu.Unlock()
		return fmt.Errorf("no route for %q", path)
	}

	if push && r.current != path {
		r.history = append(r.history, r.current)
	}
	r.current = path
	r.section = matched.section
	handler := matched.handler
	r.mu.Unlock()

	if handler != nil {
		handler(id)
	}
	return nil
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// match compares a pattern against path segments, capturing a numeric ":id"
// segment. Non-numeric values in an ":id" position do not match.
func match(pattern, segments []string) (id int, ok bool) {
	if len(pattern) != len(segments) {
		return 0, false
	}
	for i, p := range pattern {
		if p == ":id" {
			n, err := strconv.Atoi(segments[i])
			if err != nil {
				return 0, false
			}
			id = n
			continue
		}
		if p != segments[i] {
			return 0, false
		}
	}
	return id, true
}
