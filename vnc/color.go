package vnc

import "fmt"

// Color is a canonical 3-byte RGB sample. The framebuffer canvas is always
// stored in this form; every decoder except ZRLE converts incoming wire
// pixels into Color through parseColor before pasting them (ZRLE maps its
// 3-byte CPIXELs straight to R, G, B).
type Color struct {
	R, G, B uint8
}

// parseColor reads one pixel's worth of bytes (pf.BytesPerPixel() of them)
// and converts it to a canonical Color using pf's channel order. This is the
// single conversion chokepoint mentioned in SPEC_FULL.md's open-question
// decision: Raw, RRE, CoRRE, Hextile and Cursor pixels all funnel through
// here; ZRLE's CPIXELs do not (see cpixelsToColors).
func parseColor(pf PixelFormat, raw []byte) (Color, error) {
	bypp := pf.BytesPerPixel()
	if len(raw) < bypp {
		return Color{}, fmt.Errorf("vnc: short pixel: need %d bytes, got %d", bypp, len(raw))
	}
	switch pf.ChannelOrder() {
	case OrderBGR16:
		var v uint16
		if pf.BigEndian.IsTrue() {
			v = uint16(raw[0])<<8 | uint16(raw[1])
		} else {
			v = uint16(raw[1])<<8 | uint16(raw[0])
		}
		r := uint8((v >> 11) & 0x1f)
		g := uint8((v >> 5) & 0x3f)
		b := uint8(v & 0x1f)
		return Color{
			R: scaleChannel(r, 31),
			G: scaleChannel(g, 63),
			B: scaleChannel(b, 31),
		}, nil
	case OrderRGB:
		return Color{R: raw[0], G: raw[1], B: raw[2]}, nil
	case OrderBGR:
		return Color{R: raw[2], G: raw[1], B: raw[0]}, nil
	case OrderRGBX:
		return Color{R: raw[0], G: raw[1], B: raw[2]}, nil
	case OrderBGRX:
		return Color{R: raw[2], G: raw[1], B: raw[0]}, nil
	case OrderXRGB:
		return Color{R: raw[1], G: raw[2], B: raw[3]}, nil
	case OrderXBGR:
		return Color{R: raw[3], G: raw[2], B: raw[1]}, nil
	default:
		return Color{}, fmt.Errorf("vnc: unsupported pixel format: %s", pf)
	}
}

// scaleChannel rescales a max-bounded channel sample (e.g. 5-bit, 0..31) up
// to the full 0..255 byte range used by Color.
func scaleChannel(v, max uint8) uint8 {
	if max == 0 {
		return 0
	}
	return uint8((uint32(v) * 255) / uint32(max))
}
