package dxcapture

import (
	"errors"
	"strings"
	"testing"
)

func TestBackendErrorUnwrap(t *testing.T) {
	err := backendWrap("ID3D11DeviceContext::Map", ErrNoTexture)
	if !errors.Is(err, ErrNoTexture) {
		t.Fatal("BackendError should unwrap to its cause")
	}

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatal("errors.As failed for BackendError")
	}
	if be.Op != "ID3D11DeviceContext::Map" {
		t.Errorf("Op = %q", be.Op)
	}
}

func TestBackendErrHRESULTFormat(t *testing.T) {
	err := backendErr("D3D11CreateDevice", 0x887A0005)
	msg := err.Error()
	if !strings.Contains(msg, "D3D11CreateDevice") || !strings.Contains(msg, "0x887A0005") {
		t.Fatalf("message %q missing op or HRESULT", msg)
	}
}

func TestPixelFormatErrorMessage(t *testing.T) {
	err := &PixelFormatError{Format: 28}
	if !strings.Contains(err.Error(), "28") {
		t.Fatalf("message %q missing format value", err.Error())
	}

	var pfe *PixelFormatError
	if !errors.As(error(err), &pfe) || pfe.Format != 28 {
		t.Fatal("errors.As failed for PixelFormatError")
	}
}

func TestSentinelsDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotActive,
		ErrNoTexture,
		ErrDeniedAccessCPURead,
		ErrUnsupportedBufferType,
		ErrNotSupported,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %d matches sentinel %d", i, j)
			}
		}
	}
}
