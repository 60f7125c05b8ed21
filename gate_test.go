package dxcapture

import (
	"sync"
	"testing"
	"time"
)

func TestUseGuardZeroValueOpen(t *testing.T) {
	var g useGuard
	if !g.open() {
		t.Fatal("zero-value guard should be open")
	}
	if !g.enter() {
		t.Fatal("enter on open guard failed")
	}
	g.leave()
}

func TestUseGuardEnterAfterShut(t *testing.T) {
	var g useGuard
	g.shut()

	if g.open() {
		t.Fatal("guard still open after shut")
	}
	// Every attempt after shut fails, not just the first.
	for i := 0; i < 3; i++ {
		if g.enter() {
			t.Fatal("enter succeeded after shut")
		}
	}
}

func TestUseGuardShutIdempotent(t *testing.T) {
	var g useGuard
	if !g.shut() {
		t.Fatal("first shut should report the transition")
	}
	if g.shut() {
		t.Fatal("second shut should be a no-op")
	}
}

func TestUseGuardShutWaitsForUsers(t *testing.T) {
	var g useGuard

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		if !g.enter() {
			close(entered)
			return
		}
		close(entered)
		<-release
		g.leave()
	}()
	<-entered

	done := make(chan struct{})
	go func() {
		g.shut()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("shut returned while a user was still in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shut did not return after the user left")
	}
}

func TestUseGuardConcurrentUsers(t *testing.T) {
	var g useGuard

	var inFlight sync.WaitGroup
	var admitted, rejected sync.Map
	for i := 0; i < 8; i++ {
		inFlight.Add(1)
		go func(id int) {
			defer inFlight.Done()
			for j := 0; j < 100; j++ {
				if g.enter() {
					admitted.Store(id, true)
					g.leave()
				} else {
					rejected.Store(id, true)
					return
				}
			}
		}(i)
	}

	time.Sleep(time.Millisecond)
	g.shut()
	// After shut returns, no user can be in flight and no new user enters.
	if g.enter() {
		t.Fatal("enter succeeded after shut returned")
	}
	inFlight.Wait()
}
