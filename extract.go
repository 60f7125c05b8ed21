package dxcapture

import "fmt"

// D3D11/DXGI constants shared by the readback path. Values are fixed by the
// Windows SDK headers.
const (
	dxgiFormatB8G8R8A8 = 87 // DXGI_FORMAT_B8G8R8A8_UNORM

	d3d11UsageStaging  = 3       // D3D11_USAGE_STAGING
	d3d11CPUAccessRead = 0x20000 // D3D11_CPU_ACCESS_READ
	d3d11MapRead       = 1       // D3D11_MAP_READ

	bgraBytesPerPixel = 4
)

// texture2DDesc matches D3D11_TEXTURE2D_DESC (44 bytes).
type texture2DDesc struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleCount    uint32 // DXGI_SAMPLE_DESC.Count
	SampleQuality  uint32 // DXGI_SAMPLE_DESC.Quality
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

// stagingDescFor derives the description of the staging copy of a delivered
// frame texture: same dimensions and format, CPU-readable, no GPU bindings.
func stagingDescFor(src texture2DDesc) texture2DDesc {
	dst := src
	dst.Usage = d3d11UsageStaging
	dst.BindFlags = 0
	dst.CPUAccessFlags = d3d11CPUAccessRead
	dst.MiscFlags = 0
	return dst
}

// validateReadback checks that a texture can be mapped for CPU readback.
// The checks are ordered and mutually exclusive: pixel format first, then
// usage, then CPU access.
func validateReadback(desc texture2DDesc) error {
	if desc.Format != dxgiFormatB8G8R8A8 {
		return &PixelFormatError{Format: desc.Format}
	}
	if desc.Usage != d3d11UsageStaging {
		return ErrUnsupportedBufferType
	}
	if desc.CPUAccessFlags&d3d11CPUAccessRead == 0 {
		return ErrDeniedAccessCPURead
	}
	return nil
}

// packRows copies the logical rows of a mapped texture into a tightly packed
// buffer, dropping the per-row padding the GPU layout may carry
// (rowPitch >= width*bpp). src must hold at least height*rowPitch bytes.
func packRows(src []byte, width, height, rowPitch int) ([]byte, error) {
	rowBytes := width * bgraBytesPerPixel
	if rowPitch < rowBytes {
		return nil, fmt.Errorf("row pitch %d smaller than row size %d", rowPitch, rowBytes)
	}
	if need := height * rowPitch; len(src) < need {
		return nil, fmt.Errorf("mapped buffer %d bytes, need %d", len(src), need)
	}

	data := make([]byte, height*rowBytes)
	if rowPitch == rowBytes {
		// No padding: single copy.
		copy(data, src[:len(data)])
		return data, nil
	}
	for y := 0; y < height; y++ {
		copy(data[y*rowBytes:(y+1)*rowBytes], src[y*rowPitch:y*rowPitch+rowBytes])
	}
	return data, nil
}
