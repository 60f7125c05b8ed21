package dxcapture

import (
	"hash/crc32"
	"sync"
	"sync/atomic"
)

// FrameDiffer detects repeated frames via a CRC32 hash of the raw pixel
// data. Pull consumers that poll faster than frames arrive observe the same
// frame more than once; a differ lets them skip the duplicates.
type FrameDiffer struct {
	mu          sync.Mutex
	lastHash    uint32
	hasLastHash bool
	skipped     atomic.Uint64
	total       atomic.Uint64
}

func NewFrameDiffer() *FrameDiffer {
	return &FrameDiffer{}
}

// Changed hashes the frame and returns true if it differs from the previous
// frame seen. Returns true for the first frame.
func (d *FrameDiffer) Changed(frame *RawFrameData) bool {
	d.total.Add(1)
	h := crc32.ChecksumIEEE(frame.Data)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hasLastHash && h == d.lastHash {
		d.skipped.Add(1)
		return false
	}
	d.lastHash = h
	d.hasLastHash = true
	return true
}

// Reset clears the stored hash.
func (d *FrameDiffer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hasLastHash = false
}

// Stats returns (frames checked, duplicates skipped).
func (d *FrameDiffer) Stats() (total, skipped uint64) {
	return d.total.Load(), d.skipped.Load()
}
