package vnc

import (
	"github.com/ScottEllisNovatex/RemoteCapture/vnc/zrle"
)

// zrleEncoding implements RFC 6143 §7.7.6 by delegating tile decode to
// vnc/zrle. The persistent inflate Stream lives on ClientConn (one per
// connection, never reset), not here: this type is stateless and only
// exists to satisfy the encoding interface.
type zrleEncoding struct{}

func (zrleEncoding) read(c *ClientConn, rect *Rectangle) error {
	length, err := readUint32(c.conn)
	if err != nil {
		return newProtocolError("reading zrle length", err)
	}
	compressed, err := c.readExact(int(length))
	if err != nil {
		return newProtocolError("reading zrle payload", err)
	}
	if c.zrleStream == nil {
		c.zrleStream = zrle.NewStream()
	}
	stream, err := c.zrleStream.Feed(compressed)
	if err != nil {
		return newZRLEError("opening stream", err)
	}

	pixels := make([]Color, int(rect.Width)*int(rect.Height))
	for ty := 0; ty < int(rect.Height); ty += zrle.TileSize {
		th := minInt(zrle.TileSize, int(rect.Height)-ty)
		for tx := 0; tx < int(rect.Width); tx += zrle.TileSize {
			tw := minInt(zrle.TileSize, int(rect.Width)-tx)
			tile := make([]zrle.CPixel, tw*th)
			if err := zrle.DecodeTile(stream, tw, th, tile); err != nil {
				return newZRLEError("decoding tile", err)
			}
			blit(pixels, int(rect.Width), tx, ty, tw, th, cpixelsToColors(tile))
		}
	}
	rect.Pixels = pixels
	return nil
}

func cpixelsToColors(tile []zrle.CPixel) []Color {
	out := make([]Color, len(tile))
	for i, p := range tile {
		out[i] = Color{R: p[0], G: p[1], B: p[2]}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// cursorPseudoEncoding implements the Cursor pseudo-encoding (RFC 6143
// §7.8.1): the rectangle's x/y is the cursor hotspot, width/height its
// size, and the body is width*height pixels plus a 1-bpp bitmask (rows
// padded to a whole byte), used to composite the cursor onto the canvas
// without destroying what's underneath.
type cursorPseudoEncoding struct{}

func (cursorPseudoEncoding) read(c *ClientConn, rect *Rectangle) error {
	if rect.Width == 0 || rect.Height == 0 {
		return nil
	}
	pixels, err := readPixels(c, int(rect.Width)*int(rect.Height))
	if err != nil {
		return newProtocolError("reading cursor pixels", err)
	}
	maskBytes := ((int(rect.Width) + 7) / 8) * int(rect.Height)
	mask, err := c.readExact(maskBytes)
	if err != nil {
		return newProtocolError("reading cursor mask", err)
	}
	rect.CursorPixels = pixels
	rect.CursorMask = mask
	return nil
}

// desktopSizePseudoEncoding implements the DesktopSize pseudo-encoding
// (RFC 6143 §7.8.2): the rectangle carries no body, its width/height in
// the header is the new framebuffer size.
type desktopSizePseudoEncoding struct{}

func (desktopSizePseudoEncoding) read(c *ClientConn, rect *Rectangle) error {
	return nil
}
