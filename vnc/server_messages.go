package vnc

import (
	"errors"
	"net"
	"time"

	"github.com/ScottEllisNovatex/RemoteCapture/vnc/encodings"
)

const (
	smsgFramebufferUpdate = 0
	smsgSetColourMapEntries = 1
	smsgBell              = 2
	smsgServerCutText     = 3
)

// Run blocks, reading and dispatching server-to-client messages until the
// connection closes or a protocol error occurs. It corresponds to rfb.py's
// _handleConnection dispatch loop, minus the Twisted reactor.
func (c *ClientConn) Run() error {
	for {
		if _, err := c.ReadMessage(time.Time{}); err != nil {
			return err
		}
	}
}

// ReadMessage reads and fully processes exactly one server-to-client
// message — a whole FramebufferUpdate with every one of its rectangles, a
// Bell, a ServerCutText, or a skipped SetColourMapEntries — and returns.
// deadline bounds only the wait for the next message's type byte; the
// instant that byte arrives the deadline is cleared, so nothing can
// interrupt the rest of the message once it has started. This is the seam
// session.Factory uses to interleave its 10 Hz recorder tick with the
// protocol loop on a single goroutine: a tick can only ever land between
// two calls to ReadMessage, never inside one.
func (c *ClientConn) ReadMessage(deadline time.Time) (timedOut bool, err error) {
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return false, newProtocolError("setting read deadline", err)
	}
	msgType, err := readUint8(c.conn)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true, nil
		}
		return false, newProtocolError("reading server message type", err)
	}
	if err := c.conn.SetReadDeadline(time.Time{}); err != nil {
		return false, newProtocolError("clearing read deadline", err)
	}

	switch msgType {
	case smsgFramebufferUpdate:
		if err := c.handleFramebufferUpdate(); err != nil {
			return false, err
		}
	case smsgSetColourMapEntries:
		if err := c.skipSetColourMapEntries(); err != nil {
			return false, err
		}
	case smsgBell:
		if c.Handler != nil {
			c.Handler.OnBell()
		}
	case smsgServerCutText:
		if err := c.handleServerCutText(); err != nil {
			return false, err
		}
	default:
		c.logf("vnc: unknown server message type %d", msgType)
		return false, newProtocolError("unknown server message type", nil)
	}
	return false, nil
}

func (c *ClientConn) handleFramebufferUpdate() error {
	if _, err := c.readExact(1); err != nil { // padding
		return newProtocolError("reading framebuffer update padding", err)
	}
	numRects, err := readUint16(c.conn)
	if err != nil {
		return newProtocolError("reading rectangle count", err)
	}
	if c.Handler != nil {
		c.Handler.OnBeginUpdate()
	}
	for i := 0; i < int(numRects); i++ {
		if err := c.readOneRectangle(); err != nil {
			if errors.Is(err, errUnknownEncoding) {
				c.logf("vnc: %s, skipping to next rectangle", err)
				continue
			}
			return err
		}
	}
	if c.Handler != nil {
		c.Handler.OnCommitUpdate()
	}
	return nil
}

func (c *ClientConn) readOneRectangle() error {
	hdr, err := c.readExact(8)
	if err != nil {
		return newProtocolError("reading rectangle header", err)
	}
	encType, err := readInt32(c.conn)
	if err != nil {
		return newProtocolError("reading rectangle encoding type", err)
	}
	rect := &Rectangle{
		X:            beUint16(hdr[0:2]),
		Y:            beUint16(hdr[2:4]),
		Width:        beUint16(hdr[4:6]),
		Height:       beUint16(hdr[6:8]),
		EncodingType: encodings.Encoding(encType),
	}

	dec, err := decoderFor(rect.EncodingType)
	if err != nil {
		return err
	}
	if err := dec.read(c, rect); err != nil {
		return err
	}
	c.applyRectangle(rect)
	if c.Handler != nil {
		c.Handler.OnRectangle(rect)
	}
	return nil
}

// applyRectangle paints a decoded rectangle's effect onto the canvas. It's
// the seam the teacher's encodings.go leaves to ClientConn's caller
// (updateRectangle/copyRectangle/fillRectangle in rfb.py); here it's
// folded into the read loop since framebuffer.Canvas already knows how to
// paste/copy/resize/composite.
func (c *ClientConn) applyRectangle(rect *Rectangle) {
	if c.canvas == nil {
		return
	}
	switch rect.EncodingType {
	case encodings.CopyRect:
		if c.pendingCopyRectSrc != nil {
			c.canvas.CopyRect(int(c.pendingCopyRectSrc.srcX), int(c.pendingCopyRectSrc.srcY),
				int(rect.X), int(rect.Y), int(rect.Width), int(rect.Height))
			c.pendingCopyRectSrc = nil
		}
	case encodings.CursorPseudo:
		c.canvas.SetCursor(int(rect.X), int(rect.Y), int(rect.Width), int(rect.Height),
			rect.CursorPixels, rect.CursorMask)
	case encodings.DesktopSizePseudo:
		c.Width, c.Height = rect.Width, rect.Height
		c.canvas.Resize(int(rect.Width), int(rect.Height))
		if c.Handler != nil {
			c.Handler.OnDesktopSize(rect.Width, rect.Height)
		}
	default:
		c.canvas.Paste(int(rect.X), int(rect.Y), int(rect.Width), int(rect.Height), rect.Pixels)
	}
}

// skipSetColourMapEntries consumes SetColourMapEntries (RFC 6143 §7.6.2).
// Only ever sent for palette-indexed pixel formats; SetImageMode always
// negotiates truecolor, so this repo never requests palette mode, but a
// server is still free to send one before the client's first
// SetPixelFormat completes, so the message must at least be skipped
// correctly rather than desynchronising the stream.
func (c *ClientConn) skipSetColourMapEntries() error {
	if _, err := c.readExact(1); err != nil { // padding
		return newProtocolError("reading colour map padding", err)
	}
	if _, err := readUint16(c.conn); err != nil { // first colour
		return newProtocolError("reading colour map first colour", err)
	}
	n, err := readUint16(c.conn)
	if err != nil {
		return newProtocolError("reading colour map count", err)
	}
	if _, err := c.readExact(int(n) * 6); err != nil {
		return newProtocolError("reading colour map entries", err)
	}
	return nil
}

func (c *ClientConn) handleServerCutText() error {
	if _, err := c.readExact(3); err != nil { // padding
		return newProtocolError("reading server cut text padding", err)
	}
	length, err := readUint32(c.conn)
	if err != nil {
		return newProtocolError("reading server cut text length", err)
	}
	text, err := c.readExact(int(length))
	if err != nil {
		return newProtocolError("reading server cut text", err)
	}
	if c.Handler != nil {
		c.Handler.OnServerCutText(string(text))
	}
	return nil
}
