package vnc

import (
	"bytes"
	"fmt"

	"github.com/ScottEllisNovatex/RemoteCapture/vnc/rfbflags"
)

const (
	secTypeInvalid = 0
	secTypeNone    = 1
	secTypeVNCAuth = 2
)

// handshakeVersion implements RFC 6143 §7.1.1: both sides send a 12-byte
// "RFB xxx.yyy\n" version string. Ported from rfb.py's _handleInitial; the
// client doesn't just echo the server's string back (a server like
// "Screens" advertising a non-standard 3.889 would get its own oddity
// echoed right back at it, which real servers reject) — it picks the
// highest of {3.3, 3.7, 3.8} not exceeding what the server offered and
// writes that back instead.
func (c *ClientConn) handshakeVersion() error {
	raw, err := c.readExact(12)
	if err != nil {
		return newProtocolError("reading protocol version", err)
	}
	var major, minor int
	if _, err := fmt.Sscanf(string(raw), "RFB %03d.%03d\n", &major, &minor); err != nil {
		return newProtocolError(fmt.Sprintf("malformed version string %q", raw), err)
	}
	if major != 3 {
		return newProtocolError(fmt.Sprintf("unsupported major version %d", major), nil)
	}
	chosenMinor := 3
	for _, m := range []int{7, 8} {
		if m <= minor {
			chosenMinor = m
		}
	}
	c.serverMajor, c.serverMinor = major, chosenMinor
	c.logf("vnc: server offered %d.%d, choosing %d.%d", major, minor, major, chosenMinor)

	chosen := []byte(fmt.Sprintf("RFB %03d.%03d\n", major, chosenMinor))
	if _, err := c.conn.Write(chosen); err != nil {
		return newProtocolError("writing protocol version", err)
	}
	return nil
}

// handshakeSecurity implements RFC 6143 §7.1.2: for 3.3 the server
// unilaterally picks a security type; for 3.7+ the server offers a list
// and the client picks one. Only None and VNC DES auth are implemented,
// matching rfb.py's _handleAuth/_handleVNCAuth.
func (c *ClientConn) handshakeSecurity(cfg Config) error {
	var secType uint8

	if c.serverMinor < 7 {
		v, err := readUint32(c.conn)
		if err != nil {
			return newProtocolError("reading security type (3.3)", err)
		}
		secType = uint8(v)
		if secType == secTypeInvalid {
			return c.readConnFailedReason()
		}
	} else {
		count, err := readUint8(c.conn)
		if err != nil {
			return newProtocolError("reading security type count", err)
		}
		if count == 0 {
			return c.readConnFailedReason()
		}
		types, err := readN(c.conn, int(count))
		if err != nil {
			return newProtocolError("reading security types", err)
		}
		// rfb.py's _handleSecurityTypes does sec_type = max(valid_types),
		// independent of whether a password is configured; a server that
		// offers only VNCAuth still gets VNCAuth chosen, and a failed auth
		// surfaces its own AuthError rather than this code picking None
		// behind the caller's back.
		switch {
		case bytes.IndexByte(types, secTypeVNCAuth) >= 0:
			secType = secTypeVNCAuth
		case bytes.IndexByte(types, secTypeNone) >= 0:
			secType = secTypeNone
		default:
			return &AuthError{Reason: "server offers no supported security type"}
		}
		b := newBuffer()
		b.writeUint8(secType)
		if _, err := c.conn.Write(b.Bytes()); err != nil {
			return newProtocolError("writing chosen security type", err)
		}
	}

	switch secType {
	case secTypeNone:
		// Nothing further to exchange for 3.3; 3.7+ still sends a
		// SecurityResult below.
	case secTypeVNCAuth:
		if err := c.vncAuth(cfg.Password); err != nil {
			return err
		}
	default:
		return &AuthError{Reason: fmt.Sprintf("unsupported security type %d", secType)}
	}

	if c.serverMinor >= 7 || secType == secTypeVNCAuth {
		return c.readSecurityResult()
	}
	return nil
}

func (c *ClientConn) vncAuth(password string) error {
	challenge, err := c.readExact(16)
	if err != nil {
		return newProtocolError("reading vnc auth challenge", err)
	}
	response, err := vncAuthResponse(password, challenge)
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(response); err != nil {
		return newProtocolError("writing vnc auth response", err)
	}
	return nil
}

func (c *ClientConn) readSecurityResult() error {
	result, err := readUint32(c.conn)
	if err != nil {
		return newProtocolError("reading security result", err)
	}
	if result != 0 {
		return c.readConnFailedReason()
	}
	return nil
}

func (c *ClientConn) readConnFailedReason() error {
	length, err := readUint32(c.conn)
	if err != nil {
		return &AuthError{Reason: "connection failed (no reason given)"}
	}
	reason, err := readN(c.conn, int(length))
	if err != nil {
		return &AuthError{Reason: "connection failed (truncated reason)"}
	}
	return &AuthError{Reason: string(reason)}
}

// clientInit sends the single-byte ClientInit message (RFC 6143 §7.3.1).
func (c *ClientConn) clientInit(cfg Config) error {
	shared := cfg.Shared || !cfg.Exclusive
	b := newBuffer()
	b.writeUint8(rfbflags.FromBool(shared).AsByte())
	_, err := c.conn.Write(b.Bytes())
	return err
}

// serverInit reads ServerInit (RFC 6143 §7.3.2): framebuffer size, the
// server's native PixelFormat, and its desktop name. Ported from rfb.py's
// _handleServerInit/_handleServerName.
func (c *ClientConn) serverInit() error {
	width, err := readUint16(c.conn)
	if err != nil {
		return newProtocolError("reading framebuffer width", err)
	}
	height, err := readUint16(c.conn)
	if err != nil {
		return newProtocolError("reading framebuffer height", err)
	}
	pfRaw, err := c.readExact(16)
	if err != nil {
		return newProtocolError("reading server pixel format", err)
	}
	nameLen, err := readUint32(c.conn)
	if err != nil {
		return newProtocolError("reading desktop name length", err)
	}
	nameRaw, err := c.readExact(int(nameLen))
	if err != nil {
		return newProtocolError("reading desktop name", err)
	}

	pf := PixelFormat{
		BPP:        pfRaw[0],
		Depth:      pfRaw[1],
		BigEndian:  rfbflags.RFBFlag(pfRaw[2]),
		TrueColor:  rfbflags.RFBFlag(pfRaw[3]),
		RedMax:     uint16(pfRaw[4])<<8 | uint16(pfRaw[5]),
		GreenMax:   uint16(pfRaw[6])<<8 | uint16(pfRaw[7]),
		BlueMax:    uint16(pfRaw[8])<<8 | uint16(pfRaw[9]),
		RedShift:   pfRaw[10],
		GreenShift: pfRaw[11],
		BlueShift:  pfRaw[12],
	}

	c.Width = width
	c.Height = height
	c.PixelFormat = pf
	c.DesktopName = string(nameRaw)
	if c.canvas != nil {
		c.canvas.Resize(int(width), int(height))
	}
	return nil
}
