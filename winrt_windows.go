//go:build windows

package dxcapture

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
)

// WinRT runtime classes and interface IDs for Windows.Graphics.Capture and
// the Direct3D 11 interop surface.
const (
	classGraphicsCaptureItem = "Windows.Graphics.Capture.GraphicsCaptureItem"
	classCaptureFramePool    = "Windows.Graphics.Capture.Direct3D11CaptureFramePool"
)

var (
	iidGraphicsCaptureItemInterop = ole.NewGUID("{3628E81B-3CAC-4C60-B7F4-23CE0E0C3356}")
	iidGraphicsCaptureItem        = ole.NewGUID("{79C3F95B-31F7-4EC2-A464-632EF5D30760}")
	iidFramePoolStatics2          = ole.NewGUID("{589B103F-6BBC-5DF5-A991-02E28B3B66D5}")
	iidClosable                   = ole.NewGUID("{30D5A829-7FA4-4026-83BB-D75BAE4EA99E}")
	iidDirect3DDxgiAccess         = ole.NewGUID("{A9B3D012-3DF2-4EE3-B8D1-8695F457D3C1}")
	iidDirect3DDevice             = ole.NewGUID("{A37624AB-8D5F-4650-9D3E-9EAE3D9BC670}")
	iidDirect3DSurface            = ole.NewGUID("{0BF4A146-13C1-4694-BEE3-7ABF15EAF586}")
	iidAgileObject                = ole.NewGUID("{94EA2B94-E9CC-49E0-C0FF-EE64CA8F5B90}")

	iidDXGIDevice     = ole.NewGUID("{54EC77FA-1377-44E6-8C32-88FD5F44C84C}")
	iidDXGISurface    = ole.NewGUID("{CAFCB56C-6AC3-4889-BF47-9E23BBD260EC}")
	iidD3D11Texture2D = ole.NewGUID("{6F15AAF2-D208-4E89-9AB4-489535D34F9C}")
)

// WinRT vtable indices. IInspectable-based interfaces start their own methods
// at slot 6 (IUnknown 0-2, IInspectable 3-5); IUnknown-based ones at slot 3.
const (
	// IGraphicsCaptureItem
	captureItemGetDisplayName = 6
	captureItemGetSize        = 7

	// IGraphicsCaptureItemInterop (IUnknown-based)
	interopCreateForWindow  = 3
	interopCreateForMonitor = 4

	// IDirect3D11CaptureFramePoolStatics2
	framePoolCreateFreeThreaded = 6

	// IDirect3D11CaptureFramePool
	framePoolTryGetNextFrame      = 7
	framePoolAddFrameArrived      = 8
	framePoolRemoveFrameArrived   = 9
	framePoolCreateCaptureSession = 10

	// IGraphicsCaptureSession
	captureSessionStartCapture = 6

	// IClosable
	closableClose = 6

	// IDirect3D11CaptureFrame
	captureFrameGetSurface = 6

	// IDirect3DDxgiInterfaceAccess (IUnknown-based)
	dxgiAccessGetInterface = 3
)

// DirectXPixelFormat.B8G8R8A8UIntNormalized; numerically equal to
// DXGI_FORMAT_B8G8R8A8_UNORM.
const directXPixelFormatBGRA8 = 87

// sizeInt32 matches Windows.Graphics.SizeInt32.
type sizeInt32 struct {
	Width  int32
	Height int32
}

var roInitOnce sync.Once

// roInit initializes the Windows Runtime for the process, multithreaded.
// S_FALSE/RPC_E_CHANGED_MODE from prior initialization are not failures, so
// the result is intentionally ignored.
func roInit() {
	roInitOnce.Do(func() {
		_ = ole.RoInitialize(1) // RO_INIT_MULTITHREADED
	})
}

// activationFactory fetches the activation factory of a runtime class, cast
// to the requested interface.
func activationFactory(class string, iid *ole.GUID) (uintptr, error) {
	roInit()
	insp, err := ole.RoGetActivationFactory(class, iid)
	if err != nil {
		return 0, backendWrap("RoGetActivationFactory "+class, err)
	}
	return uintptr(unsafe.Pointer(insp)), nil
}

// captureItemInterop returns the IGraphicsCaptureItemInterop factory used to
// build GraphicsCaptureItems from raw HMONITOR/HWND handles.
func captureItemInterop() (uintptr, error) {
	return activationFactory(classGraphicsCaptureItem, iidGraphicsCaptureItemInterop)
}

// createItemForMonitor wraps an HMONITOR into a GraphicsCaptureItem.
func createItemForMonitor(hmon uintptr) (uintptr, error) {
	interop, err := captureItemInterop()
	if err != nil {
		return 0, err
	}
	defer comRelease(interop)

	var item uintptr
	if _, err := comCall(interop, interopCreateForMonitor,
		hmon,
		uintptr(unsafe.Pointer(iidGraphicsCaptureItem)),
		uintptr(unsafe.Pointer(&item)),
	); err != nil {
		return 0, backendWrap("IGraphicsCaptureItemInterop::CreateForMonitor", err)
	}
	return item, nil
}

// createItemForWindow wraps an HWND into a GraphicsCaptureItem.
func createItemForWindow(hwnd uintptr) (uintptr, error) {
	interop, err := captureItemInterop()
	if err != nil {
		return 0, err
	}
	defer comRelease(interop)

	var item uintptr
	if _, err := comCall(interop, interopCreateForWindow,
		hwnd,
		uintptr(unsafe.Pointer(iidGraphicsCaptureItem)),
		uintptr(unsafe.Pointer(&item)),
	); err != nil {
		return 0, backendWrap("IGraphicsCaptureItemInterop::CreateForWindow", err)
	}
	return item, nil
}

// itemSize reads GraphicsCaptureItem.Size.
func itemSize(item uintptr) (sizeInt32, error) {
	var size sizeInt32
	if _, err := comCall(item, captureItemGetSize, uintptr(unsafe.Pointer(&size))); err != nil {
		return sizeInt32{}, backendWrap("GraphicsCaptureItem::get_Size", err)
	}
	return size, nil
}

// hstringToString converts and frees a WinRT HSTRING received from a
// property getter.
func hstringToString(h uintptr) string {
	hs := ole.HString(h)
	s := hs.String()
	_ = ole.DeleteHString(hs)
	return s
}

// closeClosable invokes IClosable::Close on a WinRT object that implements
// it (frame pool, capture session).
func closeClosable(obj uintptr) error {
	closable, err := comQueryInterface(obj, iidClosable)
	if err != nil {
		return backendWrap("QueryInterface IClosable", err)
	}
	defer comRelease(closable)
	if _, err := comCall(closable, closableClose); err != nil {
		return backendWrap("IClosable::Close", err)
	}
	return nil
}

// --- FrameArrived delegate ---
//
// The frame pool takes a TypedEventHandler<Direct3D11CaptureFramePool,
// IInspectable>. The handler is a minimal COM object built with
// syscall.NewCallback: QueryInterface answers IUnknown, IAgileObject and the
// parameterized delegate IID with itself and E_NOINTERFACE for everything
// else, so the runtime can never call through a vtable slot the handler
// does not have.

// iidFrameArrivedHandler is the instantiated IID of
// TypedEventHandler<Direct3D11CaptureFramePool, IInspectable>: the
// TypedEventHandler`2 parameterized interface
// ({9de1c534-6ae1-11e0-84e1-18a905bcc53f}) over the frame pool's default
// interface and IInspectable.
var iidFrameArrivedHandler = parameterizedIID(
	"pinterface({9de1c534-6ae1-11e0-84e1-18a905bcc53f};" +
		"rc(Windows.Graphics.Capture.Direct3D11CaptureFramePool;" +
		"{24eb6d22-1975-422e-82e7-780dbd8ddf24});" +
		"cinterface(IInspectable))")

type frameArrivedHandler struct {
	vtbl    *frameArrivedVtbl
	refs    int32
	onFrame func(pool uintptr)
}

type frameArrivedVtbl struct {
	queryInterface uintptr
	addRef         uintptr
	release        uintptr
	invoke         uintptr
}

var frameArrivedVtable = &frameArrivedVtbl{
	queryInterface: syscall.NewCallback(frameArrivedQI),
	addRef:         syscall.NewCallback(frameArrivedAddRef),
	release:        syscall.NewCallback(frameArrivedRelease),
	invoke:         syscall.NewCallback(frameArrivedInvoke),
}

// handlerRegistry pins live handlers so the GC cannot collect an object the
// capture runtime still references.
var (
	handlerMu       sync.Mutex
	handlerRegistry = map[*frameArrivedHandler]struct{}{}
)

// newFrameArrivedHandler allocates a handler with one reference owned by the
// caller.
func newFrameArrivedHandler(onFrame func(pool uintptr)) *frameArrivedHandler {
	h := &frameArrivedHandler{vtbl: frameArrivedVtable, refs: 1, onFrame: onFrame}
	handlerMu.Lock()
	handlerRegistry[h] = struct{}{}
	handlerMu.Unlock()
	return h
}

func (h *frameArrivedHandler) ptr() uintptr {
	return uintptr(unsafe.Pointer(h))
}

func frameArrivedQI(this, iid, out uintptr) uintptr {
	if out == 0 {
		return 0x80004003 // E_POINTER
	}
	want := (*ole.GUID)(unsafe.Pointer(iid))
	if ole.IsEqualGUID(want, ole.IID_IUnknown) ||
		ole.IsEqualGUID(want, iidAgileObject) ||
		ole.IsEqualGUID(want, iidFrameArrivedHandler) {
		*(*uintptr)(unsafe.Pointer(out)) = this
		frameArrivedAddRef(this)
		return 0 // S_OK
	}
	*(*uintptr)(unsafe.Pointer(out)) = 0
	return 0x80004002 // E_NOINTERFACE
}

func frameArrivedAddRef(this uintptr) uintptr {
	h := (*frameArrivedHandler)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&h.refs, 1))
}

func frameArrivedRelease(this uintptr) uintptr {
	h := (*frameArrivedHandler)(unsafe.Pointer(this))
	refs := atomic.AddInt32(&h.refs, -1)
	if refs == 0 {
		handlerMu.Lock()
		delete(handlerRegistry, h)
		handlerMu.Unlock()
	}
	return uintptr(refs)
}

func frameArrivedInvoke(this, sender, _ uintptr) uintptr {
	h := (*frameArrivedHandler)(unsafe.Pointer(this))
	if h.onFrame != nil {
		h.onFrame(sender)
	} else {
		slog.Debug("frame arrived after handler detached")
	}
	return 0 // S_OK
}
