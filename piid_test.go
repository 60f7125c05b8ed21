package dxcapture

import (
	"testing"

	"github.com/go-ole/go-ole"
)

// IVector<String> is the worked example in the WinRT type-system
// documentation; its instantiated IID is published there.
func TestParameterizedIIDKnownValue(t *testing.T) {
	got := parameterizedIID("pinterface({913337e9-11a1-4345-a3a2-4e7f956e222d};string)")
	want := ole.NewGUID("{98B9ACC1-4B56-532E-AC73-03D5291CCA90}")
	if !ole.IsEqualGUID(got, want) {
		t.Fatalf("IID = %s, want %s", got.String(), want.String())
	}
}

func TestParameterizedIIDVersionAndVariant(t *testing.T) {
	g := parameterizedIID("pinterface({9de1c534-6ae1-11e0-84e1-18a905bcc53f};cinterface(IInspectable);cinterface(IInspectable))")
	if v := g.Data3 >> 12; v != 5 {
		t.Errorf("UUID version = %d, want 5", v)
	}
	if g.Data4[0]&0xc0 != 0x80 {
		t.Errorf("variant bits = 0x%02X, want RFC 4122 (10xxxxxx)", g.Data4[0])
	}
}

func TestParameterizedIIDDeterministic(t *testing.T) {
	const sig = "pinterface({913337e9-11a1-4345-a3a2-4e7f956e222d};string)"
	if !ole.IsEqualGUID(parameterizedIID(sig), parameterizedIID(sig)) {
		t.Fatal("same signature produced different IIDs")
	}
	other := parameterizedIID(sig + ";string")
	if ole.IsEqualGUID(parameterizedIID(sig), other) {
		t.Fatal("different signatures produced the same IID")
	}
}
