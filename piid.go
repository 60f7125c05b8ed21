package dxcapture

import (
	"crypto/sha1"
	"encoding/binary"

	"github.com/go-ole/go-ole"
)

// wrtPinterfaceNamespace is the fixed namespace GUID for WinRT parameterized
// type instantiations, {11f47ad5-7b73-42c0-abae-878b1e16adee}, in the
// big-endian byte order RFC 4122 hashing requires.
var wrtPinterfaceNamespace = [16]byte{
	0x11, 0xf4, 0x7a, 0xd5, 0x7b, 0x73, 0x42, 0xc0,
	0xab, 0xae, 0x87, 0x8b, 0x1e, 0x16, 0xad, 0xee,
}

// parameterizedIID derives the IID of a parameterized WinRT interface
// instantiation from its type signature: a name-based SHA-1 UUID (RFC 4122
// section 4.3) over the pinterface namespace and the signature string.
func parameterizedIID(signature string) *ole.GUID {
	h := sha1.New()
	h.Write(wrtPinterfaceNamespace[:])
	h.Write([]byte(signature))
	sum := h.Sum(nil)

	var b [16]byte
	copy(b[:], sum)
	b[6] = b[6]&0x0f | 0x50 // version 5 (name-based, SHA-1)
	b[8] = b[8]&0x3f | 0x80 // RFC 4122 variant

	guid := &ole.GUID{
		Data1: binary.BigEndian.Uint32(b[0:4]),
		Data2: binary.BigEndian.Uint16(b[4:6]),
		Data3: binary.BigEndian.Uint16(b[6:8]),
	}
	copy(guid.Data4[:], b[8:16])
	return guid
}
