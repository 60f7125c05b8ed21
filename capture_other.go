//go:build !windows

package dxcapture

import "image"

// Windows.Graphics.Capture only exists on Windows. These stubs keep the
// package (and its portable logic) buildable elsewhere; every operation
// reports ErrNotSupported.

type Device struct {
	kind TargetKind
}

func NewDevice() (*Device, error)                  { return nil, ErrNotSupported }
func NewDeviceFromDisplay(int) (*Device, error)    { return nil, ErrNotSupported }
func NewDeviceFromWindow(string) (*Device, error)  { return nil, ErrNotSupported }
func (d *Device) Kind() TargetKind                 { return d.kind }
func (d *Device) DisplayName() (string, error)     { return "", ErrNotSupported }
func (d *Device) Size() (width, height int, err error) { return 0, 0, ErrNotSupported }
func (d *Device) Release()                         {}

type Surface uintptr

func (s Surface) Release() {}

type Capture struct{}

func NewCapture(*Device) (*Capture, error) { return nil, ErrNotSupported }

func (c *Capture) Active() bool                                { return false }
func (c *Capture) TakeSurface() (Surface, error)               { return 0, ErrNotSupported }
func (c *Capture) ToRawFrame(Surface) (*RawFrameData, error)   { return nil, ErrNotSupported }
func (c *Capture) RawFrame() (*RawFrameData, error)            { return nil, ErrNotSupported }
func (c *Capture) ImageFrame() (*image.RGBA, error)            { return nil, ErrNotSupported }
func (c *Capture) Close() error                                { return nil }

func Displays() ([]DisplayInfo, error)            { return nil, ErrNotSupported }
func CapturableWindows() ([]WindowInfo, error)    { return nil, ErrNotSupported }
func FindWindow(string) ([]WindowInfo, error)     { return nil, ErrNotSupported }
