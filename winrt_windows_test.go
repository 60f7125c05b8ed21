//go:build windows

package dxcapture

import (
	"testing"
	"unsafe"

	"github.com/go-ole/go-ole"
)

func TestFrameArrivedQIKnownInterfaces(t *testing.T) {
	h := newFrameArrivedHandler(nil)
	defer frameArrivedRelease(h.ptr())

	for _, iid := range []*ole.GUID{ole.IID_IUnknown, iidAgileObject, iidFrameArrivedHandler} {
		var out uintptr
		hr := frameArrivedQI(h.ptr(), uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&out)))
		if hr != 0 {
			t.Fatalf("QI(%s) = 0x%08X, want S_OK", iid.String(), uint32(hr))
		}
		if out != h.ptr() {
			t.Fatalf("QI(%s) returned %#x, want the handler itself", iid.String(), out)
		}
		frameArrivedRelease(h.ptr()) // drop the reference QI added
	}
}

func TestFrameArrivedQIUnknownInterface(t *testing.T) {
	h := newFrameArrivedHandler(nil)
	defer frameArrivedRelease(h.ptr())

	marshal := ole.NewGUID("{00000003-0000-0000-C000-000000000046}") // IMarshal
	out := uintptr(1)
	hr := frameArrivedQI(h.ptr(), uintptr(unsafe.Pointer(marshal)), uintptr(unsafe.Pointer(&out)))
	if uint32(hr) != 0x80004002 {
		t.Fatalf("QI(IMarshal) = 0x%08X, want E_NOINTERFACE", uint32(hr))
	}
	if out != 0 {
		t.Fatal("out pointer not cleared on E_NOINTERFACE")
	}
}

func TestFrameArrivedQINullOut(t *testing.T) {
	h := newFrameArrivedHandler(nil)
	defer frameArrivedRelease(h.ptr())

	hr := frameArrivedQI(h.ptr(), uintptr(unsafe.Pointer(ole.IID_IUnknown)), 0)
	if uint32(hr) != 0x80004003 {
		t.Fatalf("QI with nil out = 0x%08X, want E_POINTER", uint32(hr))
	}
}
