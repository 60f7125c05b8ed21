// Package dxcapture captures live frames of a display or window on Windows
// using the Windows.Graphics.Capture API and Direct3D 11, and exposes them as
// CPU-accessible pixel buffers.
//
// The capture mechanism is push-based: the OS delivers frames asynchronously
// on its own worker thread. dxcapture bridges that to a pull-based API: each
// delivered frame is copied into a fresh staging texture and parked in a
// single latest-wins slot, and RawFrame reads whatever is current.
//
// Typical use:
//
//	dev, err := dxcapture.NewDevice()
//	if err != nil {
//		log.Fatal(err)
//	}
//	cap, err := dxcapture.NewCapture(dev)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer cap.Close()
//
//	var raw *dxcapture.RawFrameData
//	for {
//		raw, err = cap.RawFrame()
//		if errors.Is(err, dxcapture.ErrNoTexture) {
//			// Delivery is asynchronous; no frame has arrived yet.
//			continue
//		}
//		break
//	}
//
// Data is tightly packed BGRA8 (blue, green, red, alpha, 8 bits each);
// row-pitch padding from the GPU layout is already removed.
package dxcapture
