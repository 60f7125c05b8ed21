package dxcapture

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the capture pipeline. ErrNoTexture is the one
// retryable kind: frame delivery is asynchronous, so the slot is empty right
// after construction and briefly between frames.
var (
	// ErrNotActive is returned by pull operations after the session closed.
	ErrNotActive = errors.New("capture is not active")

	// ErrNoTexture means no frame has been copied into the slot yet.
	ErrNoTexture = errors.New("no texture")

	// ErrDeniedAccessCPURead means the staging texture lacks CPU read access.
	ErrDeniedAccessCPURead = errors.New("cpu read access required")

	// ErrUnsupportedBufferType means the texture is not a staging resource.
	ErrUnsupportedBufferType = errors.New("unsupported buffer type: must be a staging texture")

	// ErrNotSupported is returned on platforms without Windows.Graphics.Capture.
	ErrNotSupported = errors.New("screen capture not supported on this platform")
)

// PixelFormatError reports a texture in any pixel format other than
// 32-bit BGRA unsigned-normalized.
type PixelFormatError struct {
	Format uint32 // DXGI_FORMAT value
}

func (e *PixelFormatError) Error() string {
	return fmt.Sprintf("unsupported pixel format: %d", e.Format)
}

// BackendError wraps a failure surfaced by the graphics/capture API: device
// creation, interface casting, texture allocation, mapping, or the capture
// subsystem itself.
type BackendError struct {
	Op  string // the call that failed, e.g. "D3D11CreateDevice"
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// backendErr builds a BackendError from a failed HRESULT.
func backendErr(op string, hr uint32) error {
	return &BackendError{Op: op, Err: fmt.Errorf("HRESULT 0x%08X", hr)}
}

// backendWrap builds a BackendError around an existing error.
func backendWrap(op string, err error) error {
	return &BackendError{Op: op, Err: err}
}
