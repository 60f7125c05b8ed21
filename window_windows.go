//go:build windows

package dxcapture

import (
	"fmt"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"golang.org/x/sys/windows"
)

var (
	kernel32 = syscall.NewLazyDLL("kernel32.dll")
	dwmapi   = syscall.NewLazyDLL("dwmapi.dll")

	procEnumWindows          = user32.NewProc("EnumWindows")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
	procGetClassNameW        = user32.NewProc("GetClassNameW")
	procIsWindowVisible      = user32.NewProc("IsWindowVisible")
	procGetAncestor          = user32.NewProc("GetAncestor")
	procGetShellWindow       = user32.NewProc("GetShellWindow")
	procGetWindowLongW       = user32.NewProc("GetWindowLongW")

	procGetConsoleTitleW = kernel32.NewProc("GetConsoleTitleW")
	procSetConsoleTitleW = kernel32.NewProc("SetConsoleTitleW")

	procDwmGetWindowAttribute = dwmapi.NewProc("DwmGetWindowAttribute")
)

const (
	gaRoot = 2 // GA_ROOT

	gwlStyle   = 0xFFFFFFF0 // GWL_STYLE (-16)
	gwlExStyle = 0xFFFFFFEC // GWL_EXSTYLE (-20)

	wsDisabled     = 0x08000000
	wsExToolWindow = 0x00000080

	dwmwaCloaked    = 14
	dwmCloakedShell = 2
)

// isCapturableWindow applies the capturability filter: visible, titled,
// root-level, enabled, not a tool window, not the shell window, not a
// DWM-cloaked UWP frame, and not one of the known shell-owned windows.
func isCapturableWindow(w WindowInfo) bool {
	shell, _, _ := procGetShellWindow.Call()
	if w.Title == "" || w.Handle == shell {
		return false
	}
	if vis, _, _ := procIsWindowVisible.Call(w.Handle); vis == 0 {
		return false
	}
	if root, _, _ := procGetAncestor.Call(w.Handle, uintptr(gaRoot)); root != w.Handle {
		return false
	}

	style, _, _ := procGetWindowLongW.Call(w.Handle, uintptr(gwlStyle))
	if uint32(style)&wsDisabled != 0 {
		return false
	}
	exStyle, _, _ := procGetWindowLongW.Call(w.Handle, uintptr(gwlExStyle))
	if uint32(exStyle)&wsExToolWindow != 0 {
		return false
	}

	if w.ClassName == "Windows.UI.Core.CoreWindow" || w.ClassName == "ApplicationFrameWindow" {
		var cloaked uint32
		hr, _, _ := procDwmGetWindowAttribute.Call(
			w.Handle,
			uintptr(dwmwaCloaked),
			uintptr(unsafe.Pointer(&cloaked)),
			unsafe.Sizeof(cloaked),
		)
		if int32(hr) >= 0 && cloaked == dwmCloakedShell {
			return false
		}
	}

	return !isKnownBlockedWindow(w)
}

// windowText reads a window's title.
func windowText(hwnd uintptr) string {
	length, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if length == 0 {
		return ""
	}
	buf := make([]uint16, length+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), length+1)
	return windows.UTF16ToString(buf)
}

// windowClassName reads a window's class name.
func windowClassName(hwnd uintptr) string {
	var buf [256]uint16
	procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:])
}

// Shared EnumWindows callback; see the monitor enumeration for why it is a
// single permanent callback with a guarded accumulator.
var (
	enumWindowsMu  sync.Mutex
	enumWindowsAcc []WindowInfo

	enumWindowProc = syscall.NewCallback(func(hwnd, lparam uintptr) uintptr {
		info := WindowInfo{
			Handle:    hwnd,
			Title:     windowText(hwnd),
			ClassName: windowClassName(hwnd),
		}
		if isCapturableWindow(info) {
			enumWindowsAcc = append(enumWindowsAcc, info)
		}
		return 1
	})
)

// CapturableWindows enumerates the top-level windows that
// Windows.Graphics.Capture can target.
//
// The enumerating console window would match itself by title, so the console
// title is masked with a unique value for the duration of the pass and
// restored on every exit path.
func CapturableWindows() ([]WindowInfo, error) {
	enumWindowsMu.Lock()
	defer enumWindowsMu.Unlock()

	restore := maskConsoleTitle()
	defer restore()

	enumWindowsAcc = nil
	ret, _, _ := procEnumWindows.Call(enumWindowProc, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumWindows failed")
	}
	windowList := enumWindowsAcc
	enumWindowsAcc = nil
	return windowList, nil
}

// FindWindow returns the capturable windows whose title contains caption,
// case-insensitively.
func FindWindow(caption string) ([]WindowInfo, error) {
	windowList, err := CapturableWindows()
	if err != nil {
		return nil, err
	}
	return matchWindows(windowList, caption), nil
}

// maskConsoleTitle temporarily sets the console title to a unique value and
// returns a func restoring the original. A no-console process (GUI host) has
// no title to mask; both calls are best-effort there.
func maskConsoleTitle() (restore func()) {
	var buf [256]uint16
	n, _, _ := procGetConsoleTitleW.Call(uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return func() {}
	}
	original := buf[:n+1]

	temp, err := windows.UTF16PtrFromString(uuid.NewString())
	if err != nil {
		return func() {}
	}
	procSetConsoleTitleW.Call(uintptr(unsafe.Pointer(temp)))
	// Give the window manager a beat to pick up the title change before
	// EnumWindows runs.
	time.Sleep(40 * time.Millisecond)

	return func() {
		procSetConsoleTitleW.Call(uintptr(unsafe.Pointer(&original[0])))
	}
}
