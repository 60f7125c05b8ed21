package dxcapture

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
)

// RawFrameData is one extracted frame: tightly packed BGRA8 bytes with all
// row-pitch padding removed, len(Data) == Width*Height*4. It is an immutable
// value produced fresh on every successful pull.
type RawFrameData struct {
	Width  int
	Height int
	Data   []byte
}

// RGBA converts the frame into an *image.RGBA, swapping the blue and red
// channels. The returned image does not alias Data.
func (f *RawFrameData) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	bgraToRGBA(img.Pix, f.Data)
	return img
}

// EncodePNG writes the frame as PNG.
func (f *RawFrameData) EncodePNG(w io.Writer) error {
	return png.Encode(w, f.RGBA())
}

// EncodeBMP writes the frame as BMP.
func (f *RawFrameData) EncodeBMP(w io.Writer) error {
	return bmp.Encode(w, f.RGBA())
}

// bgraToRGBA copies src (BGRA) into dst (RGBA). Both slices must hold the
// same number of whole pixels.
func bgraToRGBA(dst, src []byte) {
	n := len(src) &^ 3
	for i := 0; i < n; i += 4 {
		dst[i] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i]
		dst[i+3] = src[i+3]
	}
}

// validate checks the structural invariant on an extracted frame.
func (f *RawFrameData) validate() error {
	if want := f.Width * f.Height * bgraBytesPerPixel; len(f.Data) != want {
		return fmt.Errorf("frame data length %d, want %d (%dx%d)", len(f.Data), want, f.Width, f.Height)
	}
	return nil
}
