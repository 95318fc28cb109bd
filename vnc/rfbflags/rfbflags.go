// Package rfbflags holds the small boolean wire flags used throughout the
// RFB pixel format (BigEndian, TrueColor), which the wire protocol encodes
// as a single byte (0 or non-zero) rather than a real bool.
package rfbflags

// RFBFlag is a wire boolean: any non-zero byte means true.
type RFBFlag uint8

// IsTrue reports whether the flag byte is set.
func (f RFBFlag) IsTrue() bool { return f != 0 }

// FromBool converts a Go bool to its wire representation.
func FromBool(b bool) RFBFlag {
	if b {
		return RFBFlag(1)
	}
	return RFBFlag(0)
}

// AsByte returns the flag's single-byte wire form.
func (f RFBFlag) AsByte() uint8 { return uint8(f) }
