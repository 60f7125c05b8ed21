package dxcapture

import (
	"sync"
	"testing"
)

func TestFrameSlotEmpty(t *testing.T) {
	var s frameSlot
	if _, _, ok := s.current(); ok {
		t.Fatal("empty slot reported a texture")
	}
	if _, ok := s.snapshot(nil); ok {
		t.Fatal("empty slot snapshot reported a texture")
	}
	if prev := s.drain(); prev != 0 {
		t.Fatalf("drain of empty slot returned %#x", prev)
	}
}

func TestFrameSlotLatestWins(t *testing.T) {
	var s frameSlot

	if prev := s.replace(0x100); prev != 0 {
		t.Fatalf("first replace returned %#x, want 0", prev)
	}
	if prev := s.replace(0x200); prev != 0x100 {
		t.Fatalf("second replace returned %#x, want 0x100", prev)
	}

	tex, _, ok := s.current()
	if !ok || tex != 0x200 {
		t.Fatalf("current = %#x ok=%v, want 0x200", tex, ok)
	}
}

func TestFrameSlotGenerationMonotonic(t *testing.T) {
	var s frameSlot

	s.replace(0x100)
	_, g1, _ := s.current()
	s.replace(0x200)
	_, g2, _ := s.current()

	if g2 <= g1 {
		t.Fatalf("generation did not advance: %d then %d", g1, g2)
	}
}

func TestFrameSlotSnapshotRetains(t *testing.T) {
	var s frameSlot
	s.replace(0x300)

	var retained uintptr
	tex, ok := s.snapshot(func(p uintptr) { retained = p })
	if !ok || tex != 0x300 {
		t.Fatalf("snapshot = %#x ok=%v, want 0x300", tex, ok)
	}
	if retained != 0x300 {
		t.Fatalf("retain saw %#x, want 0x300", retained)
	}

	// Snapshot is non-destructive.
	if cur, _, ok := s.current(); !ok || cur != 0x300 {
		t.Fatalf("slot no longer holds texture after snapshot: %#x ok=%v", cur, ok)
	}
}

func TestFrameSlotDrain(t *testing.T) {
	var s frameSlot
	s.replace(0x400)

	if prev := s.drain(); prev != 0x400 {
		t.Fatalf("drain returned %#x, want 0x400", prev)
	}
	if _, _, ok := s.current(); ok {
		t.Fatal("slot still holds a texture after drain")
	}
}

// A producer replacing concurrently with consumer reads must never lose a
// texture: every value stored is eventually returned exactly once, either as
// a replace's prev or by the final drain.
func TestFrameSlotConcurrentNoLeak(t *testing.T) {
	var s frameSlot
	const n = 1000

	released := make(map[uintptr]bool, n)
	var relMu sync.Mutex
	release := func(p uintptr) {
		relMu.Lock()
		if released[p] {
			t.Errorf("texture %#x released twice", p)
		}
		released[p] = true
		relMu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := uintptr(1); i <= n; i++ {
			if prev := s.replace(i); prev != 0 {
				release(prev)
			}
		}
	}()
	go func() {
		defer wg.Done()
		var lastGen uint64
		for i := 0; i < n; i++ {
			_, gen, ok := s.current()
			if ok && gen < lastGen {
				t.Errorf("generation went backwards: %d after %d", gen, lastGen)
				return
			}
			if ok {
				lastGen = gen
			}
		}
	}()
	wg.Wait()

	if prev := s.drain(); prev != 0 {
		release(prev)
	}

	relMu.Lock()
	defer relMu.Unlock()
	if len(released) != n {
		t.Fatalf("released %d textures, want %d", len(released), n)
	}
}
