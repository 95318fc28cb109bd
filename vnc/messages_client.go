package vnc

import (
	"github.com/ScottEllisNovatex/RemoteCapture/vnc/encodings"
	"github.com/ScottEllisNovatex/RemoteCapture/vnc/rfbflags"
)

const (
	msgSetPixelFormat           = 0
	msgSetEncodings             = 2
	msgFramebufferUpdateRequest = 3
	msgKeyEvent                 = 4
	msgPointerEvent             = 5
	msgClientCutText            = 6
)

// send serializes and writes a client-to-server message, holding mu so
// concurrent callers (e.g. the read/tick loop requesting an update while
// another goroutine sends a key event) don't interleave
// their bytes on the wire.
func (c *ClientConn) send(m Marshaler) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.conn.Write(data)
	return err
}

// SetPixelFormat requests the server switch to pf for all subsequent
// FramebufferUpdates (RFC 6143 §7.5.1). Ported from rfb.py's
// setPixelFormat; the server applies it immediately, so SetPixelFormat
// updates c.PixelFormat only once the message has been written successfully.
type setPixelFormatMsg struct {
	pf PixelFormat
}

func (m setPixelFormatMsg) Marshal() ([]byte, error) {
	b := newBuffer()
	b.writeUint8(msgSetPixelFormat)
	b.Write([]byte{0, 0, 0}) // padding
	b.writeUint8(m.pf.BPP)
	b.writeUint8(m.pf.Depth)
	b.writeUint8(m.pf.BigEndian.AsByte())
	b.writeUint8(m.pf.TrueColor.AsByte())
	b.writeUint16(m.pf.RedMax)
	b.writeUint16(m.pf.GreenMax)
	b.writeUint16(m.pf.BlueMax)
	b.writeUint8(m.pf.RedShift)
	b.writeUint8(m.pf.GreenShift)
	b.writeUint8(m.pf.BlueShift)
	b.Write([]byte{0, 0, 0}) // padding
	return b.Bytes(), nil
}

func (c *ClientConn) SetPixelFormat(pf PixelFormat) error {
	if err := c.send(setPixelFormatMsg{pf: pf}); err != nil {
		return err
	}
	c.PixelFormat = pf
	return nil
}

// SetImageMode is ported from RemoteCapture.py's setImageMode: it picks a
// convenient truecolor pixel format to request so decoders always see one
// of the channel orders parseColor understands, rather than negotiating
// whatever native format the server happens to default to. Servers whose
// native format already has a known channel order (ChannelOrder() != "",
// which includes the 16-bit BGR;16 layout) are left alone; everything else
// gets DefaultPixelFormat.
func (c *ClientConn) SetImageMode() error {
	if c.PixelFormat.ChannelOrder() != OrderUnknown {
		return nil
	}
	return c.SetPixelFormat(DefaultPixelFormat)
}

// setEncodingsMsg implements RFC 6143 §7.5.2.
type setEncodingsMsg struct {
	encs []encodings.Encoding
}

func (m setEncodingsMsg) Marshal() ([]byte, error) {
	b := newBuffer()
	b.writeUint8(msgSetEncodings)
	b.writeUint8(0) // padding
	b.writeUint16(uint16(len(m.encs)))
	for _, e := range m.encs {
		b.writeInt32(int32(e))
	}
	return b.Bytes(), nil
}

// defaultEncodings is the set RemoteCapture negotiates: every rectangle
// encoding this package can decode, plus both pseudo-encodings, matching
// rfb.py's setEncodings() call in vncConnectionMade.
var defaultEncodings = []encodings.Encoding{
	encodings.CopyRect,
	encodings.RRE,
	encodings.CoRRE,
	encodings.Hextile,
	encodings.ZRLE,
	encodings.Raw,
	encodings.CursorPseudo,
	encodings.DesktopSizePseudo,
}

// SetEncodings declares which rectangle and pseudo encodings the client
// accepts. Calling with nil sends defaultEncodings.
func (c *ClientConn) SetEncodings(encs []encodings.Encoding) error {
	if encs == nil {
		encs = defaultEncodings
	}
	c.encodings = encs
	return c.send(setEncodingsMsg{encs: encs})
}

// framebufferUpdateRequestMsg implements RFC 6143 §7.5.3.
type framebufferUpdateRequestMsg struct {
	incremental            bool
	x, y, width, height uint16
}

func (m framebufferUpdateRequestMsg) Marshal() ([]byte, error) {
	b := newBuffer()
	b.writeUint8(msgFramebufferUpdateRequest)
	b.writeUint8(rfbflags.FromBool(m.incremental).AsByte())
	b.writeUint16(m.x)
	b.writeUint16(m.y)
	b.writeUint16(m.width)
	b.writeUint16(m.height)
	return b.Bytes(), nil
}

// FramebufferUpdateRequest asks the server for a (possibly incremental)
// update of the given rectangle. The paced recorder calls this once per
// tick with incremental=true over the full screen.
func (c *ClientConn) FramebufferUpdateRequest(incremental bool, x, y, width, height uint16) error {
	return c.send(framebufferUpdateRequestMsg{incremental, x, y, width, height})
}

// keyEventMsg implements RFC 6143 §7.5.4. Supplemented feature: spec.md
// scopes out driving input, but names the wire encoding as in-scope so a
// future control surface can use it without touching the protocol engine.
type keyEventMsg struct {
	down bool
	key  uint32
}

func (m keyEventMsg) Marshal() ([]byte, error) {
	b := newBuffer()
	b.writeUint8(msgKeyEvent)
	b.writeUint8(rfbflags.FromBool(m.down).AsByte())
	b.Write([]byte{0, 0}) // padding
	b.writeUint32(m.key)
	return b.Bytes(), nil
}

func (c *ClientConn) KeyEvent(down bool, key uint32) error {
	return c.send(keyEventMsg{down, key})
}

// pointerEventMsg implements RFC 6143 §7.5.5.
type pointerEventMsg struct {
	buttonMask uint8
	x, y       uint16
}

func (m pointerEventMsg) Marshal() ([]byte, error) {
	b := newBuffer()
	b.writeUint8(msgPointerEvent)
	b.writeUint8(m.buttonMask)
	b.writeUint16(m.x)
	b.writeUint16(m.y)
	return b.Bytes(), nil
}

func (c *ClientConn) PointerEvent(buttonMask uint8, x, y uint16) error {
	return c.send(pointerEventMsg{buttonMask, x, y})
}

// clientCutTextMsg implements RFC 6143 §7.5.6.
type clientCutTextMsg struct {
	text string
}

func (m clientCutTextMsg) Marshal() ([]byte, error) {
	b := newBuffer()
	b.writeUint8(msgClientCutText)
	b.Write([]byte{0, 0, 0}) // padding
	b.writeUint32(uint32(len(m.text)))
	b.WriteString(m.text)
	return b.Bytes(), nil
}

func (c *ClientConn) ClientCutText(text string) error {
	return c.send(clientCutTextMsg{text})
}
