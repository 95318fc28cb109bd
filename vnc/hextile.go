package vnc

const hextileTile = 16

const (
	hextileRaw                 = 1 << 0
	hextileBackgroundSpecified = 1 << 1
	hextileForegroundSpecified = 1 << 2
	hextileAnySubrects         = 1 << 3
	hextileSubrectsColoured    = 1 << 4
)

// hextileEncoding implements RFC 6143 §7.7.5: the rectangle is split into
// 16x16 tiles (smaller at the right/bottom edge), each carrying a
// subencoding bitmask. Background and foreground colours persist from one
// tile to the next within a rectangle, which is why bg/fg live in local
// variables scoped to this call rather than per-tile state. Ported from
// rfb.py's _handleDecodeHextile/_doConnection's rolling bg/fg tracking.
type hextileEncoding struct{}

func (hextileEncoding) read(c *ClientConn, rect *Rectangle) error {
	pixels := make([]Color, int(rect.Width)*int(rect.Height))
	var bg, fg Color
	haveBG, haveFG := false, false

	for ty := 0; ty < int(rect.Height); ty += hextileTile {
		th := min(hextileTile, int(rect.Height)-ty)
		for tx := 0; tx < int(rect.Width); tx += hextileTile {
			tw := min(hextileTile, int(rect.Width)-tx)

			flags, err := readUint8(c.conn)
			if err != nil {
				return newProtocolError("reading hextile subencoding", err)
			}

			if flags&hextileRaw != 0 {
				raw, err := readPixels(c, tw*th)
				if err != nil {
					return newProtocolError("reading hextile raw tile", err)
				}
				blit(pixels, int(rect.Width), tx, ty, tw, th, raw)
				continue
			}

			if flags&hextileBackgroundSpecified != 0 {
				bgPix, err := readPixels(c, 1)
				if err != nil {
					return newProtocolError("reading hextile background", err)
				}
				bg = bgPix[0]
				haveBG = true
			}
			if !haveBG {
				return newProtocolError("hextile tile has no background colour", nil)
			}
			paintRect(pixels, int(rect.Width), uint16(tx), uint16(ty), uint16(tw), uint16(th), bg)

			if flags&hextileForegroundSpecified != 0 {
				fgPix, err := readPixels(c, 1)
				if err != nil {
					return newProtocolError("reading hextile foreground", err)
				}
				fg = fgPix[0]
				haveFG = true
			}

			if flags&hextileAnySubrects == 0 {
				continue
			}
			numSubrects, err := readUint8(c.conn)
			if err != nil {
				return newProtocolError("reading hextile subrect count", err)
			}
			coloured := flags&hextileSubrectsColoured != 0
			for i := uint8(0); i < numSubrects; i++ {
				color := fg
				if coloured {
					colorPix, err := readPixels(c, 1)
					if err != nil {
						return newProtocolError("reading hextile subrect colour", err)
					}
					color = colorPix[0]
				} else if !haveFG {
					return newProtocolError("hextile subrect has no foreground colour", nil)
				}
				xy, err := readUint8(c.conn)
				if err != nil {
					return newProtocolError("reading hextile subrect xy", err)
				}
				wh, err := readUint8(c.conn)
				if err != nil {
					return newProtocolError("reading hextile subrect wh", err)
				}
				sx, sy := int(xy>>4), int(xy&0x0f)
				sw, sh := int(wh>>4)+1, int(wh&0x0f)+1
				paintRect(pixels, int(rect.Width), uint16(tx+sx), uint16(ty+sy), uint16(sw), uint16(sh), color)
			}
		}
	}
	rect.Pixels = pixels
	return nil
}

func blit(pixels []Color, stride, x, y, w, h int, src []Color) {
	for row := 0; row < h; row++ {
		copy(pixels[(y+row)*stride+x:(y+row)*stride+x+w], src[row*w:(row+1)*w])
	}
}
