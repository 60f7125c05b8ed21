package dxcapture

import "sync"

// frameSlot is the synchronization boundary between the frame-arrived
// callback (producer) and the pull API (consumer): a single mutex-guarded
// holder for the most recently copied staging texture. Writes are
// latest-wins: no queue, no backpressure. The lock is held only for the
// pointer swap or read, never across GPU copies or CPU mapping.
type frameSlot struct {
	mu  sync.Mutex
	tex uintptr // ID3D11Texture2D (staging), 0 when empty
	gen uint64  // bumped on every replace; read paths observe it non-decreasing
}

// replace stores tex and returns the previously held texture. Ownership of
// the returned texture transfers to the caller, which must release it.
func (s *frameSlot) replace(tex uintptr) (prev uintptr) {
	s.mu.Lock()
	prev = s.tex
	s.tex = tex
	s.gen++
	s.mu.Unlock()
	return prev
}

// current returns the held texture without removing it, plus its generation.
// ok is false while the slot has never been populated (or was drained).
func (s *frameSlot) current() (tex uintptr, gen uint64, ok bool) {
	s.mu.Lock()
	tex, gen = s.tex, s.gen
	s.mu.Unlock()
	return tex, gen, tex != 0
}

// snapshot returns the held texture with retain applied under the lock, so
// the caller's reference survives a concurrent replace. retain must be cheap;
// it runs with the lock held.
func (s *frameSlot) snapshot(retain func(uintptr)) (tex uintptr, ok bool) {
	s.mu.Lock()
	tex = s.tex
	if tex != 0 && retain != nil {
		retain(tex)
	}
	s.mu.Unlock()
	return tex, tex != 0
}

// drain empties the slot and returns the texture that was held, if any.
// Used on session close; the caller releases the returned texture.
func (s *frameSlot) drain() (prev uintptr) {
	s.mu.Lock()
	prev = s.tex
	s.tex = 0
	s.mu.Unlock()
	return prev
}
