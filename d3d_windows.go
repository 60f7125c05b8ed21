//go:build windows

package dxcapture

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"
)

var (
	d3d11DLL = syscall.NewLazyDLL("d3d11.dll")
	user32   = syscall.NewLazyDLL("user32.dll")

	procD3D11CreateDevice = d3d11DLL.NewProc("D3D11CreateDevice")
	// WinRT Direct3D interop entry points live in d3d11.dll as well.
	procCreateDirect3D11DeviceFromDXGIDevice   = d3d11DLL.NewProc("CreateDirect3D11DeviceFromDXGIDevice")
	procCreateDirect3D11SurfaceFromDXGISurface = d3d11DLL.NewProc("CreateDirect3D11SurfaceFromDXGISurface")

	procGetDesktopWindow  = user32.NewProc("GetDesktopWindow")
	procMonitorFromWindow = user32.NewProc("MonitorFromWindow")
)

// D3D11 constants
const (
	d3dDriverTypeHardware = 1
	d3dFeatureLevel11_0   = 0xb000
	d3d11SDKVersion       = 7

	d3d11CreateDeviceBGRASupport = 0x20

	monitorDefaultToPrimary = 1

	// ID3D11Device vtable
	d3d11DeviceCreateTexture2D     = 5
	d3d11DeviceGetImmediateContext = 40

	// ID3D11Texture2D vtable
	d3d11Texture2DGetDesc = 10

	// ID3D11DeviceContext vtable
	d3d11CtxMap          = 14
	d3d11CtxUnmap        = 15
	d3d11CtxCopyResource = 47
)

// mappedSubresource matches D3D11_MAPPED_SUBRESOURCE.
type mappedSubresource struct {
	PData      uintptr
	RowPitch   uint32
	DepthPitch uint32
}

// Device owns the GPU device handles backing one capture target: the native
// D3D11 device and immediate context, the WinRT IDirect3DDevice the capture
// frame pool requires, and the GraphicsCaptureItem being captured. A Device
// is created once per target, never mutated, and released exactly once by
// the session that owns it.
type Device struct {
	mu sync.Mutex

	d3dDevice   uintptr // ID3D11Device
	d3dContext  uintptr // ID3D11DeviceContext (immediate)
	winrtDevice uintptr // IDirect3DDevice
	item        uintptr // IGraphicsCaptureItem
	kind        TargetKind
}

// NewDevice creates a Device for the primary monitor.
func NewDevice() (*Device, error) {
	desktop, _, _ := procGetDesktopWindow.Call()
	hmon, _, _ := procMonitorFromWindow.Call(desktop, uintptr(monitorDefaultToPrimary))
	if hmon == 0 {
		return nil, backendWrap("MonitorFromWindow", fmt.Errorf("no primary monitor"))
	}
	roInit()
	item, err := createItemForMonitor(hmon)
	if err != nil {
		return nil, err
	}
	return newDeviceFromItem(item, TargetMonitor)
}

// NewDeviceFromDisplay creates a Device for the display with the given
// 1-based id, as ordered by Displays.
func NewDeviceFromDisplay(displayID int) (*Device, error) {
	displays, err := Displays()
	if err != nil {
		return nil, err
	}
	if displayID < 1 || displayID > len(displays) {
		return nil, fmt.Errorf("display id %d out of range [1..%d]", displayID, len(displays))
	}
	roInit()
	item, err := createItemForMonitor(displays[displayID-1].Handle)
	if err != nil {
		return nil, err
	}
	return newDeviceFromItem(item, TargetMonitor)
}

// NewDeviceFromWindow creates a Device for the first capturable window whose
// title contains caption (case-insensitive).
func NewDeviceFromWindow(caption string) (*Device, error) {
	windows, err := FindWindow(caption)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("window %q not found", caption)
	}
	roInit()
	item, err := createItemForWindow(windows[0].Handle)
	if err != nil {
		return nil, err
	}
	return newDeviceFromItem(item, TargetWindow)
}

// newDeviceFromItem finishes construction: D3D11 device + context, then the
// WinRT device wrapper. Takes ownership of item, including on failure.
// One-shot setup; any failure is fatal, no retries.
func newDeviceFromItem(item uintptr, kind TargetKind) (*Device, error) {
	var device, context uintptr
	featureLevel := uint32(d3dFeatureLevel11_0)
	var actualLevel uint32

	hr, _, _ := procD3D11CreateDevice.Call(
		0,                                      // pAdapter (NULL = default)
		uintptr(d3dDriverTypeHardware),         // DriverType
		0,                                      // Software
		uintptr(d3d11CreateDeviceBGRASupport),  // Flags
		uintptr(unsafe.Pointer(&featureLevel)), // pFeatureLevels
		1,                                      // FeatureLevels count
		uintptr(d3d11SDKVersion),               // SDKVersion
		uintptr(unsafe.Pointer(&device)),       // ppDevice
		uintptr(unsafe.Pointer(&actualLevel)),  // pFeatureLevel
		uintptr(unsafe.Pointer(&context)),      // ppImmediateContext
	)
	if int32(hr) < 0 {
		comRelease(item)
		return nil, backendErr("D3D11CreateDevice", uint32(hr))
	}

	winrtDevice, err := toDirect3DDevice(device)
	if err != nil {
		comRelease(context)
		comRelease(device)
		comRelease(item)
		return nil, err
	}

	return &Device{
		d3dDevice:   device,
		d3dContext:  context,
		winrtDevice: winrtDevice,
		item:        item,
		kind:        kind,
	}, nil
}

// Kind reports whether the device targets a monitor or a window.
func (d *Device) Kind() TargetKind { return d.kind }

// DisplayName returns the capture item's display name.
func (d *Device) DisplayName() (string, error) {
	var hstr uintptr
	if _, err := comCall(d.item, captureItemGetDisplayName, uintptr(unsafe.Pointer(&hstr))); err != nil {
		return "", backendWrap("GraphicsCaptureItem::get_DisplayName", err)
	}
	return hstringToString(hstr), nil
}

// Size returns the capture item's pixel size.
func (d *Device) Size() (width, height int, err error) {
	size, err := itemSize(d.item)
	if err != nil {
		return 0, 0, err
	}
	return int(size.Width), int(size.Height), nil
}

// Release frees all GPU and WinRT resources. Idempotent.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.item != 0 {
		comRelease(d.item)
		d.item = 0
	}
	if d.winrtDevice != 0 {
		comRelease(d.winrtDevice)
		d.winrtDevice = 0
	}
	if d.d3dContext != 0 {
		comRelease(d.d3dContext)
		d.d3dContext = 0
	}
	if d.d3dDevice != 0 {
		comRelease(d.d3dDevice)
		d.d3dDevice = 0
	}
}

// toDirect3DDevice wraps a native ID3D11Device into the WinRT
// IDirect3DDevice the capture frame pool speaks.
func toDirect3DDevice(d3dDevice uintptr) (uintptr, error) {
	dxgiDevice, err := comQueryInterface(d3dDevice, iidDXGIDevice)
	if err != nil {
		return 0, backendWrap("QueryInterface IDXGIDevice", err)
	}
	defer comRelease(dxgiDevice)

	var insp uintptr
	hr, _, _ := procCreateDirect3D11DeviceFromDXGIDevice.Call(
		dxgiDevice,
		uintptr(unsafe.Pointer(&insp)),
	)
	if int32(hr) < 0 {
		return 0, backendErr("CreateDirect3D11DeviceFromDXGIDevice", uint32(hr))
	}
	defer comRelease(insp)

	device, err := comQueryInterface(insp, iidDirect3DDevice)
	if err != nil {
		return 0, backendWrap("QueryInterface IDirect3DDevice", err)
	}
	return device, nil
}

// toDirect3DSurface wraps a native ID3D11Texture2D into a WinRT
// IDirect3DSurface. Fails with a BackendError if the texture is not backed
// by a DXGI surface.
func toDirect3DSurface(texture uintptr) (uintptr, error) {
	dxgiSurface, err := comQueryInterface(texture, iidDXGISurface)
	if err != nil {
		return 0, backendWrap("QueryInterface IDXGISurface", err)
	}
	defer comRelease(dxgiSurface)

	var insp uintptr
	hr, _, _ := procCreateDirect3D11SurfaceFromDXGISurface.Call(
		dxgiSurface,
		uintptr(unsafe.Pointer(&insp)),
	)
	if int32(hr) < 0 {
		return 0, backendErr("CreateDirect3D11SurfaceFromDXGISurface", uint32(hr))
	}
	defer comRelease(insp)

	surface, err := comQueryInterface(insp, iidDirect3DSurface)
	if err != nil {
		return 0, backendWrap("QueryInterface IDirect3DSurface", err)
	}
	return surface, nil
}

// fromDirect3DSurface resolves a WinRT IDirect3DSurface back to its native
// ID3D11Texture2D. Fails with a BackendError if the surface is not backed by
// a 2-D texture.
func fromDirect3DSurface(surface uintptr) (uintptr, error) {
	access, err := comQueryInterface(surface, iidDirect3DDxgiAccess)
	if err != nil {
		return 0, backendWrap("QueryInterface IDirect3DDxgiInterfaceAccess", err)
	}
	defer comRelease(access)

	var texture uintptr
	if _, err := comCall(access, dxgiAccessGetInterface,
		uintptr(unsafe.Pointer(iidD3D11Texture2D)),
		uintptr(unsafe.Pointer(&texture)),
	); err != nil {
		return 0, backendWrap("IDirect3DDxgiInterfaceAccess::GetInterface ID3D11Texture2D", err)
	}
	return texture, nil
}
