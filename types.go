package dxcapture

import "strings"

// TargetKind identifies what a capture target points at.
type TargetKind int

const (
	// TargetMonitor captures an entire display.
	TargetMonitor TargetKind = iota
	// TargetWindow captures a single top-level window.
	TargetWindow
)

func (k TargetKind) String() string {
	switch k {
	case TargetMonitor:
		return "monitor"
	case TargetWindow:
		return "window"
	default:
		return "unknown"
	}
}

// DisplayInfo describes a connected display as reported by the OS.
type DisplayInfo struct {
	Handle  uintptr // HMONITOR
	Name    string  // device name, e.g. `\\.\DISPLAY1`
	Width   int
	Height  int
	Primary bool
}

// WindowInfo describes a capturable top-level window.
type WindowInfo struct {
	Handle    uintptr // HWND
	Title     string
	ClassName string
}

// matchWindows filters windows whose title contains query,
// case-insensitively. An empty query matches everything.
func matchWindows(windows []WindowInfo, query string) []WindowInfo {
	q := strings.ToLower(query)
	var out []WindowInfo
	for _, w := range windows {
		if strings.Contains(strings.ToLower(w.Title), q) {
			out = append(out, w)
		}
	}
	return out
}

// isKnownBlockedWindow reports shell-owned windows that EnumWindows lists but
// Windows.Graphics.Capture cannot capture.
func isKnownBlockedWindow(w WindowInfo) bool {
	switch {
	case w.Title == "Task View" && w.ClassName == "Windows.UI.Core.CoreWindow":
		return true
	case w.Title == "DesktopWindowXamlSource" && w.ClassName == "Windows.UI.Core.CoreWindow":
		return true
	case w.Title == "PopupHost" && w.ClassName == "Xaml_WindowedPopupClass":
		return true
	}
	return false
}
