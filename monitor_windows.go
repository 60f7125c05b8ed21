//go:build windows

package dxcapture

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = user32.NewProc("GetMonitorInfoW")
)

// monitorInfoEx matches MONITORINFOEXW (104 bytes).
type monitorInfoEx struct {
	CbSize    uint32
	RcMonitor [4]int32 // left, top, right, bottom
	RcWork    [4]int32
	DwFlags   uint32
	SzDevice  [32]uint16
}

const monitorInfoPrimary = 1 // MONITORINFOF_PRIMARY

// EnumDisplayMonitors wants a C callback; syscall.NewCallback allocations are
// permanent, so one shared callback feeds a guarded accumulator.
var (
	enumMonitorsMu  sync.Mutex
	enumMonitorsAcc []DisplayInfo
	enumMonitorsErr error

	enumMonitorProc = syscall.NewCallback(func(hmon, hdc, lprc, lparam uintptr) uintptr {
		var mi monitorInfoEx
		mi.CbSize = uint32(unsafe.Sizeof(mi))
		ret, _, _ := procGetMonitorInfoW.Call(hmon, uintptr(unsafe.Pointer(&mi)))
		if ret == 0 {
			enumMonitorsErr = fmt.Errorf("GetMonitorInfoW failed for monitor 0x%X", hmon)
			return 1 // keep enumerating; surface the error afterwards
		}
		enumMonitorsAcc = append(enumMonitorsAcc, DisplayInfo{
			Handle:  hmon,
			Name:    windows.UTF16ToString(mi.SzDevice[:]),
			Width:   int(mi.RcMonitor[2] - mi.RcMonitor[0]),
			Height:  int(mi.RcMonitor[3] - mi.RcMonitor[1]),
			Primary: mi.DwFlags&monitorInfoPrimary != 0,
		})
		return 1
	})
)

// Displays enumerates all connected displays in OS order.
func Displays() ([]DisplayInfo, error) {
	enumMonitorsMu.Lock()
	defer enumMonitorsMu.Unlock()

	enumMonitorsAcc = nil
	enumMonitorsErr = nil
	ret, _, _ := procEnumDisplayMonitors.Call(0, 0, enumMonitorProc, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors failed")
	}
	if enumMonitorsErr != nil {
		return nil, enumMonitorsErr
	}
	displays := enumMonitorsAcc
	enumMonitorsAcc = nil
	return displays, nil
}
