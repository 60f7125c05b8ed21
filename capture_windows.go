//go:build windows

package dxcapture

import (
	"image"
	"log/slog"
	"sync"
	"unsafe"
)

// Surface is an opaque reference to a WinRT IDirect3DSurface handed out by
// TakeSurface. The holder must either pass it to ToRawFrame and then Release
// it, or Release it directly.
type Surface uintptr

// Release frees the surface reference.
func (s Surface) Release() {
	comRelease(uintptr(s))
}

// Capture is an active capture session: a free-threaded frame pool bound to
// one Device and target, an arrival callback that copies each delivered frame
// into a fresh staging texture, and a single-slot holder the pull API reads.
//
// A successfully constructed Capture is already active. NewCapture takes
// ownership of the Device, including on failure; it is released when the
// session closes.
//
// The gate brackets every use of the device's handles. Close shuts it and
// waits out in-flight users before releasing anything, so neither the
// arrival callback nor a concurrent pull can reach a released handle.
type Capture struct {
	dev *Device

	framePool uintptr // IDirect3D11CaptureFramePool
	session   uintptr // IGraphicsCaptureSession
	handler   *frameArrivedHandler
	token     int64

	slot      frameSlot
	gate      useGuard
	closeOnce sync.Once
	closeErr  error
}

// NewCapture builds and starts a capture session for the device's target.
// Construction and activation are atomic: either an active session is
// returned, or every partially created resource is released, including the
// device, and an error is returned.
func NewCapture(dev *Device) (*Capture, error) {
	size, err := itemSize(dev.item)
	if err != nil {
		dev.Release()
		return nil, err
	}

	statics, err := activationFactory(classCaptureFramePool, iidFramePoolStatics2)
	if err != nil {
		dev.Release()
		return nil, err
	}
	defer comRelease(statics)

	// One buffered frame, delivered free-threaded, fixed BGRA8 format.
	var framePool uintptr
	if _, err := comCall(statics, framePoolCreateFreeThreaded,
		dev.winrtDevice,
		uintptr(directXPixelFormatBGRA8),
		1, // numberOfBuffers
		uintptr(pack64(uint32(size.Height), uint32(size.Width))), // SizeInt32 by value
		uintptr(unsafe.Pointer(&framePool)),
	); err != nil {
		dev.Release()
		return nil, backendWrap("Direct3D11CaptureFramePool::CreateFreeThreaded", err)
	}

	var session uintptr
	if _, err := comCall(framePool, framePoolCreateCaptureSession,
		dev.item,
		uintptr(unsafe.Pointer(&session)),
	); err != nil {
		_ = closeClosable(framePool)
		comRelease(framePool)
		dev.Release()
		return nil, backendWrap("Direct3D11CaptureFramePool::CreateCaptureSession", err)
	}

	c := &Capture{
		dev:       dev,
		framePool: framePool,
		session:   session,
	}
	c.handler = newFrameArrivedHandler(c.onFrameArrived)

	if _, err := comCall(framePool, framePoolAddFrameArrived,
		c.handler.ptr(),
		uintptr(unsafe.Pointer(&c.token)),
	); err != nil {
		frameArrivedRelease(c.handler.ptr())
		_ = closeClosable(session)
		comRelease(session)
		_ = closeClosable(framePool)
		comRelease(framePool)
		dev.Release()
		return nil, backendWrap("Direct3D11CaptureFramePool::add_FrameArrived", err)
	}

	if _, err := comCall(session, captureSessionStartCapture); err != nil {
		comCall(framePool, framePoolRemoveFrameArrived, uintptr(c.token))
		frameArrivedRelease(c.handler.ptr())
		_ = closeClosable(session)
		comRelease(session)
		_ = closeClosable(framePool)
		comRelease(framePool)
		dev.Release()
		return nil, backendWrap("GraphicsCaptureSession::StartCapture", err)
	}

	slog.Info("capture session started",
		"target", dev.kind.String(), "width", size.Width, "height", size.Height)
	return c, nil
}

// Active reports whether the session has not been closed.
func (c *Capture) Active() bool {
	return c.gate.open()
}

// onFrameArrived runs on the capture runtime's worker thread once per
// delivered frame. It copies the frame's texture into a brand-new staging
// texture and publishes it to the slot. Failures are logged and dropped:
// they never crash the worker or block on the consumer, and they leave the
// slot untouched.
func (c *Capture) onFrameArrived(pool uintptr) {
	if !c.gate.enter() {
		return
	}
	defer c.gate.leave()

	var frame uintptr
	if _, err := comCall(pool, framePoolTryGetNextFrame, uintptr(unsafe.Pointer(&frame))); err != nil {
		slog.Warn("TryGetNextFrame failed", "error", err)
		return
	}
	if frame == 0 {
		// Pool drained; with pool size 1 this just means we already took it.
		return
	}
	defer comRelease(frame)

	var surface uintptr
	if _, err := comCall(frame, captureFrameGetSurface, uintptr(unsafe.Pointer(&surface))); err != nil {
		slog.Warn("Direct3D11CaptureFrame::get_Surface failed", "error", err)
		return
	}
	defer comRelease(surface)

	texture, err := fromDirect3DSurface(surface)
	if err != nil {
		slog.Warn("frame surface is not a 2D texture", "error", err)
		return
	}
	defer comRelease(texture)

	var desc texture2DDesc
	comVoidCall(texture, d3d11Texture2DGetDesc, uintptr(unsafe.Pointer(&desc)))
	stagingDesc := stagingDescFor(desc)

	var staging uintptr
	if _, err := comCall(c.dev.d3dDevice, d3d11DeviceCreateTexture2D,
		uintptr(unsafe.Pointer(&stagingDesc)),
		0, // pInitialData
		uintptr(unsafe.Pointer(&staging)),
	); err != nil {
		slog.Warn("CreateTexture2D staging failed", "error", err)
		return
	}

	// GPU-to-GPU copy into the staging texture, then publish. The lock is
	// held only for the pointer swap; the previous staging texture is
	// released by us, the overwriter.
	comVoidCall(c.dev.d3dContext, d3d11CtxCopyResource, staging, texture)
	if prev := c.slot.replace(staging); prev != 0 {
		comRelease(prev)
	}
}

// TakeSurface returns the most recently captured frame as an abstract
// surface without removing it from the slot: a later pull may re-extract the
// same frame if no newer one arrived. Returns ErrNotActive after Close and
// ErrNoTexture while no frame has been delivered yet (retry in that case).
func (c *Capture) TakeSurface() (Surface, error) {
	if !c.gate.enter() {
		return 0, ErrNotActive
	}
	defer c.gate.leave()

	// AddRef under the slot lock so a concurrent overwrite cannot free the
	// texture while we convert it.
	tex, ok := c.slot.snapshot(comAddRef)
	if !ok {
		return 0, ErrNoTexture
	}
	surface, err := toDirect3DSurface(tex)
	comRelease(tex)
	if err != nil {
		return 0, err
	}
	return Surface(surface), nil
}

// ToRawFrame maps a staging surface into CPU memory and extracts a tightly
// packed BGRA8 buffer, correcting for GPU row-pitch padding. The surface is
// validated first: pixel format, then usage, then CPU read access. The
// caller keeps ownership of the surface. Returns ErrNotActive after Close.
func (c *Capture) ToRawFrame(surface Surface) (*RawFrameData, error) {
	if !c.gate.enter() {
		return nil, ErrNotActive
	}
	defer c.gate.leave()

	texture, err := fromDirect3DSurface(uintptr(surface))
	if err != nil {
		return nil, err
	}
	defer comRelease(texture)

	var desc texture2DDesc
	comVoidCall(texture, d3d11Texture2DGetDesc, uintptr(unsafe.Pointer(&desc)))
	if err := validateReadback(desc); err != nil {
		return nil, err
	}

	var mapped mappedSubresource
	if _, err := comCall(c.dev.d3dContext, d3d11CtxMap,
		texture,
		0, // Subresource
		uintptr(d3d11MapRead),
		0, // Flags
		uintptr(unsafe.Pointer(&mapped)),
	); err != nil {
		return nil, backendWrap("ID3D11DeviceContext::Map", err)
	}
	defer comVoidCall(c.dev.d3dContext, d3d11CtxUnmap, texture, 0)

	width, height := int(desc.Width), int(desc.Height)
	src := unsafe.Slice((*byte)(unsafe.Pointer(mapped.PData)), height*int(mapped.RowPitch))
	data, err := packRows(src, width, height, int(mapped.RowPitch))
	if err != nil {
		return nil, backendWrap("row readback", err)
	}

	frame := &RawFrameData{Width: width, Height: height, Data: data}
	if err := frame.validate(); err != nil {
		return nil, backendWrap("frame extraction", err)
	}
	return frame, nil
}

// RawFrame pulls the current frame: TakeSurface then ToRawFrame, either
// error propagated unchanged. A fresh buffer is produced on every call.
func (c *Capture) RawFrame() (*RawFrameData, error) {
	surface, err := c.TakeSurface()
	if err != nil {
		return nil, err
	}
	defer surface.Release()
	return c.ToRawFrame(surface)
}

// ImageFrame pulls the current frame as an *image.RGBA.
func (c *Capture) ImageFrame() (*image.RGBA, error) {
	raw, err := c.RawFrame()
	if err != nil {
		return nil, err
	}
	return raw.RGBA(), nil
}

// Close ends the session: the gate is shut first, waiting out any in-flight
// arrival callback or pull, then the underlying session and frame pool are
// closed, the callback is unregistered, the slot is drained and the device
// released. A second Close is a no-op.
func (c *Capture) Close() error {
	c.closeOnce.Do(func() {
		c.gate.shut()

		comCall(c.framePool, framePoolRemoveFrameArrived, uintptr(c.token))
		if err := closeClosable(c.session); err != nil {
			c.closeErr = err
		}
		if err := closeClosable(c.framePool); err != nil && c.closeErr == nil {
			c.closeErr = err
		}
		comRelease(c.session)
		c.session = 0
		comRelease(c.framePool)
		c.framePool = 0
		frameArrivedRelease(c.handler.ptr())

		if prev := c.slot.drain(); prev != 0 {
			comRelease(prev)
		}
		c.dev.Release()
		slog.Info("capture session closed")
	})
	return c.closeErr
}
