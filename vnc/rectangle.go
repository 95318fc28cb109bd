package vnc

import (
	"github.com/ScottEllisNovatex/RemoteCapture/vnc/encodings"
)

// Rectangle is one decoded FramebufferUpdate rectangle: its position and
// size on the wire, which encoding produced it, and (for pixel-carrying
// encodings) the pixels to paste at (X, Y). CopyRect and the
// pseudo-encodings leave Pixels nil: Cursor carries its payload in
// CursorPixels/CursorMask, and DesktopSize's new framebuffer size is the
// rectangle's own Width/Height (RFC 6143 §7.8.2).
type Rectangle struct {
	X, Y, Width, Height uint16
	EncodingType        encodings.Encoding

	Pixels []Color

	CursorPixels []Color
	CursorMask   []byte
}

// encoding is implemented by each wire encoding's decoder. Read consumes
// exactly the rectangle's body (the header is already parsed into rect)
// and populates rect's Pixels/Cursor fields. Ported from the teacher's
// Encoding interface (CambridgeSoftwareLtd/go-vnc's encodings.go), trimmed
// to the one method this client actually needs: decoding is a one-shot,
// stateless-per-rectangle operation, there's nothing here to Marshal.
type encoding interface {
	read(c *ClientConn, rect *Rectangle) error
}

func decoderFor(t encodings.Encoding) (encoding, error) {
	switch t {
	case encodings.Raw:
		return rawEncoding{}, nil
	case encodings.CopyRect:
		return copyRectEncoding{}, nil
	case encodings.RRE:
		return rreEncoding{}, nil
	case encodings.CoRRE:
		return corREEncoding{}, nil
	case encodings.Hextile:
		return hextileEncoding{}, nil
	case encodings.ZRLE:
		return zrleEncoding{}, nil
	case encodings.CursorPseudo:
		return cursorPseudoEncoding{}, nil
	case encodings.DesktopSizePseudo:
		return desktopSizePseudoEncoding{}, nil
	default:
		return nil, errUnknownEncoding
	}
}

// readPixels reads n pixels (n*bypp bytes) and converts each to a Color
// via the chokepoint parseColor, per c's current PixelFormat.
func readPixels(c *ClientConn, n int) ([]Color, error) {
	bypp := c.PixelFormat.BytesPerPixel()
	raw, err := c.readExact(n * bypp)
	if err != nil {
		return nil, err
	}
	out := make([]Color, n)
	for i := 0; i < n; i++ {
		color, err := parseColor(c.PixelFormat, raw[i*bypp:(i+1)*bypp])
		if err != nil {
			return nil, err
		}
		out[i] = color
	}
	return out, nil
}

// rawEncoding implements RFC 6143 §7.7.1: width*height pixels, row-major,
// no compression.
type rawEncoding struct{}

func (rawEncoding) read(c *ClientConn, rect *Rectangle) error {
	pixels, err := readPixels(c, int(rect.Width)*int(rect.Height))
	if err != nil {
		return newProtocolError("reading raw rectangle", err)
	}
	rect.Pixels = pixels
	return nil
}

// copyRectEncoding implements RFC 6143 §7.7.2: copy a same-size rectangle
// already on screen. The source position is all this encoding carries;
// the framebuffer.Canvas does the actual copy.
type copyRectEncoding struct{}

// copyRectSrc is stashed on the ClientConn (pendingCopyRectSrc) by
// copyRectEncoding.read so
// the canvas copy can happen without growing the Rectangle struct with a
// field only one encoding uses on the hot path; see applyRectangle.
type copyRectSrc struct{ srcX, srcY uint16 }

func (copyRectEncoding) read(c *ClientConn, rect *Rectangle) error {
	srcX, err := readUint16(c.conn)
	if err != nil {
		return newProtocolError("reading copyrect src x", err)
	}
	srcY, err := readUint16(c.conn)
	if err != nil {
		return newProtocolError("reading copyrect src y", err)
	}
	c.pendingCopyRectSrc = &copyRectSrc{srcX, srcY}
	return nil
}

// rreEncoding implements RFC 6143 §7.7.3: a background colour plus a list
// of solid-coloured subrectangles.
type rreEncoding struct{}

type rreRect struct {
	x, y, width, height uint16
	color               Color
}

func (rreEncoding) read(c *ClientConn, rect *Rectangle) error {
	numRects, err := readUint32(c.conn)
	if err != nil {
		return newProtocolError("reading rre subrect count", err)
	}
	bg, err := readPixels(c, 1)
	if err != nil {
		return newProtocolError("reading rre background", err)
	}
	pixels := fillColor(rect.Width, rect.Height, bg[0])

	for i := uint32(0); i < numRects; i++ {
		colorPix, err := readPixels(c, 1)
		if err != nil {
			return newProtocolError("reading rre subrect color", err)
		}
		hdr, err := readN(c.conn, 8)
		if err != nil {
			return newProtocolError("reading rre subrect header", err)
		}
		sub := rreRect{
			x:      beUint16(hdr[0:2]),
			y:      beUint16(hdr[2:4]),
			width:  beUint16(hdr[4:6]),
			height: beUint16(hdr[6:8]),
			color:  colorPix[0],
		}
		paintRect(pixels, int(rect.Width), sub.x, sub.y, sub.width, sub.height, sub.color)
	}
	rect.Pixels = pixels
	return nil
}

// corREEncoding implements RFC 6143 §7.7.4: RRE with 8-bit subrectangle
// coordinates, used when a rectangle is small enough that 8 bits suffice.
type corREEncoding struct{}

func (corREEncoding) read(c *ClientConn, rect *Rectangle) error {
	numRects, err := readUint32(c.conn)
	if err != nil {
		return newProtocolError("reading corre subrect count", err)
	}
	bg, err := readPixels(c, 1)
	if err != nil {
		return newProtocolError("reading corre background", err)
	}
	pixels := fillColor(rect.Width, rect.Height, bg[0])

	for i := uint32(0); i < numRects; i++ {
		colorPix, err := readPixels(c, 1)
		if err != nil {
			return newProtocolError("reading corre subrect color", err)
		}
		hdr, err := readN(c.conn, 4)
		if err != nil {
			return newProtocolError("reading corre subrect header", err)
		}
		x, y, w, h := uint16(hdr[0]), uint16(hdr[1]), uint16(hdr[2]), uint16(hdr[3])
		paintRect(pixels, int(rect.Width), x, y, w, h, colorPix[0])
	}
	rect.Pixels = pixels
	return nil
}

func beUint16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }

func fillColor(width, height uint16, c Color) []Color {
	pixels := make([]Color, int(width)*int(height))
	for i := range pixels {
		pixels[i] = c
	}
	return pixels
}

func paintRect(pixels []Color, stride int, x, y, w, h uint16, c Color) {
	for row := uint16(0); row < h; row++ {
		for col := uint16(0); col < w; col++ {
			idx := int(y+row)*stride + int(x+col)
			if idx >= 0 && idx < len(pixels) {
				pixels[idx] = c
			}
		}
	}
}
