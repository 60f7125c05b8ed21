package dxcapture

import (
	"bytes"
	"errors"
	"testing"
)

func stagingDesc(width, height uint32) texture2DDesc {
	return texture2DDesc{
		Width:          width,
		Height:         height,
		MipLevels:      1,
		ArraySize:      1,
		Format:         dxgiFormatB8G8R8A8,
		SampleCount:    1,
		Usage:          d3d11UsageStaging,
		CPUAccessFlags: d3d11CPUAccessRead,
	}
}

func TestStagingDescForStripsGPUBindings(t *testing.T) {
	src := texture2DDesc{
		Width:       1920,
		Height:      1080,
		MipLevels:   1,
		ArraySize:   1,
		Format:      dxgiFormatB8G8R8A8,
		SampleCount: 1,
		Usage:       0,    // D3D11_USAGE_DEFAULT
		BindFlags:   0x28, // SHADER_RESOURCE | RENDER_TARGET
		MiscFlags:   0x800,
	}

	dst := stagingDescFor(src)

	if dst.Width != src.Width || dst.Height != src.Height || dst.Format != src.Format {
		t.Fatalf("staging desc changed dimensions or format: %+v", dst)
	}
	if dst.Usage != d3d11UsageStaging {
		t.Errorf("Usage = %d, want %d", dst.Usage, d3d11UsageStaging)
	}
	if dst.BindFlags != 0 || dst.MiscFlags != 0 {
		t.Errorf("BindFlags/MiscFlags not cleared: %+v", dst)
	}
	if dst.CPUAccessFlags != d3d11CPUAccessRead {
		t.Errorf("CPUAccessFlags = 0x%X, want 0x%X", dst.CPUAccessFlags, d3d11CPUAccessRead)
	}
}

func TestValidateReadbackAccepts(t *testing.T) {
	if err := validateReadback(stagingDesc(4, 4)); err != nil {
		t.Fatalf("valid staging desc rejected: %v", err)
	}
}

func TestValidateReadbackPixelFormat(t *testing.T) {
	desc := stagingDesc(4, 4)
	desc.Format = 28 // DXGI_FORMAT_R8G8B8A8_UNORM

	err := validateReadback(desc)
	var pfe *PixelFormatError
	if !errors.As(err, &pfe) {
		t.Fatalf("err = %v, want PixelFormatError", err)
	}
	if pfe.Format != 28 {
		t.Errorf("Format = %d, want 28", pfe.Format)
	}
}

func TestValidateReadbackUsage(t *testing.T) {
	desc := stagingDesc(4, 4)
	desc.Usage = 0 // D3D11_USAGE_DEFAULT

	if err := validateReadback(desc); !errors.Is(err, ErrUnsupportedBufferType) {
		t.Fatalf("err = %v, want ErrUnsupportedBufferType", err)
	}
}

func TestValidateReadbackCPUAccess(t *testing.T) {
	desc := stagingDesc(4, 4)
	desc.CPUAccessFlags = 0

	if err := validateReadback(desc); !errors.Is(err, ErrDeniedAccessCPURead) {
		t.Fatalf("err = %v, want ErrDeniedAccessCPURead", err)
	}
}

// The checks fire in a fixed order, so a texture failing several of them
// reports the earliest one.
func TestValidateReadbackOrdering(t *testing.T) {
	desc := stagingDesc(4, 4)
	desc.Format = 28
	desc.Usage = 0
	desc.CPUAccessFlags = 0

	err := validateReadback(desc)
	var pfe *PixelFormatError
	if !errors.As(err, &pfe) {
		t.Fatalf("err = %v, want PixelFormatError first", err)
	}

	desc.Format = dxgiFormatB8G8R8A8
	if err := validateReadback(desc); !errors.Is(err, ErrUnsupportedBufferType) {
		t.Fatalf("err = %v, want ErrUnsupportedBufferType second", err)
	}
}

func TestPackRowsNoPadding(t *testing.T) {
	// 2x2 frame, rowPitch == rowBytes.
	src := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}

	got, err := packRows(src, 2, 2, 8)
	if err != nil {
		t.Fatalf("packRows: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("got %v, want %v", got, src)
	}
}

func TestPackRowsDropsPadding(t *testing.T) {
	// 2x2 frame with 4 bytes of per-row padding (rowPitch 12, rowBytes 8).
	src := []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 0xEE, 0xEE, 0xEE, 0xEE,
		9, 10, 11, 12, 13, 14, 15, 16, 0xEE, 0xEE, 0xEE, 0xEE,
	}
	want := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}

	got, err := packRows(src, 2, 2, 12)
	if err != nil {
		t.Fatalf("packRows: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if bytes.Contains(got, []byte{0xEE}) {
		t.Fatal("padding bytes leaked into packed output")
	}
}

func TestPackRowsPitchTooSmall(t *testing.T) {
	if _, err := packRows(make([]byte, 64), 4, 2, 8); err == nil {
		t.Fatal("expected error for rowPitch < width*4")
	}
}

func TestPackRowsShortBuffer(t *testing.T) {
	if _, err := packRows(make([]byte, 10), 2, 2, 8); err == nil {
		t.Fatal("expected error for undersized mapped buffer")
	}
}

func TestPackRowsOutputDoesNotAliasInput(t *testing.T) {
	src := make([]byte, 16)
	got, err := packRows(src, 2, 2, 8)
	if err != nil {
		t.Fatalf("packRows: %v", err)
	}
	got[0] = 0xFF
	if src[0] != 0 {
		t.Fatal("packed output aliases the mapped buffer")
	}
}
