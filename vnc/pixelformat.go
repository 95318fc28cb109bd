package vnc

import (
	"fmt"

	"github.com/ScottEllisNovatex/RemoteCapture/vnc/rfbflags"
)

// ChannelOrder names how a truecolor pixel's bytes map onto R/G/B channels,
// derived from a PixelFormat's masks and shifts. It is the chokepoint the
// open question in spec.md §9 asks for: decoders never delegate pixel-format
// conversion to an image library, they convert explicitly through this tag.
type ChannelOrder string

const (
	OrderRGB   ChannelOrder = "RGB"
	OrderBGR   ChannelOrder = "BGR"
	OrderRGBX  ChannelOrder = "RGBX"
	OrderBGRX  ChannelOrder = "BGRX"
	OrderXRGB  ChannelOrder = "XRGB"
	OrderXBGR  ChannelOrder = "XBGR"
	OrderBGR16 ChannelOrder = "BGR;16"
	OrderUnknown ChannelOrder = ""
)

// PixelFormat mirrors the 16-byte wire structure sent in ServerInit and
// SetPixelFormat. See RFC 6143 §7.4.
type PixelFormat struct {
	BPP        uint8
	Depth      uint8
	BigEndian  rfbflags.RFBFlag
	TrueColor  rfbflags.RFBFlag
	RedMax     uint16
	GreenMax   uint16
	BlueMax    uint16
	RedShift   uint8
	GreenShift uint8
	BlueShift  uint8
}

// BytesPerPixel returns bpp/8, the "bypp" used throughout the wire format.
func (pf PixelFormat) BytesPerPixel() int {
	return int(pf.BPP) / 8
}

// ChannelOrder derives the abstract channel-ordering tag used by the pixel
// conversion chokepoint (parseColor). Ported from RemoteCapture.py's
// setImageMode, which special-cases the "Screens 3.889"/VMware 16bpp
// thousands-color mode and otherwise builds an "RGBX"-shaped tag out of the
// byte offsets implied by the shifts.
func (pf PixelFormat) ChannelOrder() ChannelOrder {
	if pf.BPP == 16 && pf.Depth == 16 &&
		pf.TrueColor.IsTrue() && !pf.BigEndian.IsTrue() &&
		pf.RedMax == 31 && pf.GreenMax == 63 && pf.BlueMax == 31 &&
		pf.RedShift == 11 && pf.GreenShift == 5 && pf.BlueShift == 0 {
		return OrderBGR16
	}

	bypp := pf.BytesPerPixel()
	if bypp != 3 && bypp != 4 {
		return OrderUnknown
	}
	if !pf.TrueColor.IsTrue() {
		return OrderUnknown
	}

	offsets := [3]int{int(pf.RedShift) / 8, int(pf.GreenShift) / 8, int(pf.BlueShift) / 8}
	letters := [3]byte{'R', 'G', 'B'}
	pixel := make([]byte, bypp)
	for i := range pixel {
		pixel[i] = 'X'
	}
	for i, off := range offsets {
		if off < 0 || off >= bypp {
			return OrderUnknown
		}
		pixel[off] = letters[i]
	}
	if pf.BigEndian.IsTrue() {
		// Big-endian formats store the most-significant byte first; the
		// shift-derived offset is little-endian-relative, so flip it.
		reversed := make([]byte, bypp)
		for i, b := range pixel {
			reversed[bypp-1-i] = b
		}
		pixel = reversed
	}
	return ChannelOrder(pixel)
}

// String implements fmt.Stringer for debug logging.
func (pf PixelFormat) String() string {
	return fmt.Sprintf("PixelFormat{bpp=%d depth=%d bigEndian=%v trueColor=%v "+
		"max=(%d,%d,%d) shift=(%d,%d,%d)}",
		pf.BPP, pf.Depth, pf.BigEndian.IsTrue(), pf.TrueColor.IsTrue(),
		pf.RedMax, pf.GreenMax, pf.BlueMax, pf.RedShift, pf.GreenShift, pf.BlueShift)
}

// DefaultPixelFormat is the 32-bit truecolor RGB format RemoteCapture.py
// requests via SetPixelFormat when the server's native format has no known
// channel order (see ClientConn.SetImageMode).
var DefaultPixelFormat = PixelFormat{
	BPP:        32,
	Depth:      24,
	BigEndian:  rfbflags.FromBool(false),
	TrueColor:  rfbflags.FromBool(true),
	RedMax:     255,
	GreenMax:   255,
	BlueMax:    255,
	RedShift:   0,
	GreenShift: 8,
	BlueShift:  16,
}
