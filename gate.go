package dxcapture

import "sync"

// useGuard coordinates session teardown with in-flight operations. Users
// bracket device access with enter/leave; shut flips the guard closed and
// blocks until every admitted user has left, so resources released after
// shut returns cannot be reached by a concurrent user. The zero value is an
// open guard.
type useGuard struct {
	mu     sync.Mutex
	closed bool
	users  sync.WaitGroup
}

// enter admits a user. Returns false once the guard has been shut; a false
// return means the caller must not touch guarded resources.
func (g *useGuard) enter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.users.Add(1)
	return true
}

// leave retires a user admitted by enter.
func (g *useGuard) leave() {
	g.users.Done()
}

// open reports whether the guard has not been shut.
func (g *useGuard) open() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.closed
}

// shut closes the guard and waits for in-flight users to leave. Returns
// false if the guard was already shut.
func (g *useGuard) shut() bool {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return false
	}
	g.closed = true
	g.mu.Unlock()
	g.users.Wait()
	return true
}
