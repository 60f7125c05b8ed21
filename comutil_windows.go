//go:build windows

package dxcapture

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
)

// COM vtable calling infrastructure. All Direct3D and Windows.Graphics.Capture
// objects are held as raw interface pointers and invoked by vtable index;
// no cgo. GUIDs use go-ole's layout-compatible representation.

// IUnknown vtable indices, fixed by the COM ABI.
const (
	vtblQueryInterface = 0
	vtblAddRef         = 1
	vtblRelease        = 2
)

// comVtblFn resolves a COM vtable function pointer by index.
func comVtblFn(obj uintptr, idx int) uintptr {
	vtablePtr := *(*uintptr)(unsafe.Pointer(obj))
	return *(*uintptr)(unsafe.Pointer(vtablePtr + uintptr(idx)*unsafe.Sizeof(uintptr(0))))
}

// comCall invokes a COM vtable method at the given index and converts a
// failing HRESULT into an error.
func comCall(obj uintptr, vtableIdx int, args ...uintptr) (uintptr, error) {
	allArgs := make([]uintptr, 0, 1+len(args))
	allArgs = append(allArgs, obj)
	allArgs = append(allArgs, args...)
	ret, _, _ := syscall.SyscallN(comVtblFn(obj, vtableIdx), allArgs...)
	if int32(ret) < 0 {
		return ret, fmt.Errorf("COM vtable[%d] HRESULT 0x%08X", vtableIdx, uint32(ret))
	}
	return ret, nil
}

// comVoidCall invokes a vtable method that returns void (GetDesc,
// CopyResource, Unmap).
func comVoidCall(obj uintptr, vtableIdx int, args ...uintptr) {
	allArgs := make([]uintptr, 0, 1+len(args))
	allArgs = append(allArgs, obj)
	allArgs = append(allArgs, args...)
	syscall.SyscallN(comVtblFn(obj, vtableIdx), allArgs...)
}

// comQueryInterface casts obj to the interface identified by iid.
func comQueryInterface(obj uintptr, iid *ole.GUID) (uintptr, error) {
	var out uintptr
	_, err := comCall(obj, vtblQueryInterface,
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&out)),
	)
	if err != nil {
		return 0, err
	}
	return out, nil
}

// comAddRef calls IUnknown::AddRef.
func comAddRef(obj uintptr) {
	if obj != 0 {
		syscall.SyscallN(comVtblFn(obj, vtblAddRef), obj)
	}
}

// comRelease calls IUnknown::Release.
func comRelease(obj uintptr) {
	if obj != 0 {
		syscall.SyscallN(comVtblFn(obj, vtblRelease), obj)
	}
}

// pack64 packs two uint32 values into a single uint64 (high << 32 | low).
// Used to pass 8-byte structs (SizeInt32) by value through SyscallN.
func pack64(high, low uint32) uint64 {
	return uint64(high)<<32 | uint64(low)
}
