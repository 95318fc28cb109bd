package vnc

import (
	"log"
	"net"
	"sync"

	"github.com/ScottEllisNovatex/RemoteCapture/vnc/encodings"
	"github.com/ScottEllisNovatex/RemoteCapture/vnc/zrle"
)

// Handler lets a caller observe protocol events without subclassing
// ClientConn, mirroring the override points rfb.py exposes on RFBClient
// (beginUpdate, commitUpdate, updateRectangle, copyRectangle,
// fillRectangle, updateCursor, updateDesktopSize, bell, copy_text). The
// Handler as a whole is optional: ClientConn checks it for nil before
// calling any method, but a non-nil Handler must implement all of them.
type Handler interface {
	// OnBeginUpdate fires once per FramebufferUpdate message, before its
	// rectangles are processed.
	OnBeginUpdate()
	// OnCommitUpdate fires once a FramebufferUpdate message's rectangles
	// have all been applied.
	OnCommitUpdate()
	// OnRectangle fires for every decoded rectangle, pseudo-encodings
	// included, after it has been applied to the canvas passed to Connect.
	OnRectangle(rect *Rectangle)
	// OnBell fires on a server Bell message. Ported from rfb.py's bell().
	OnBell()
	// OnServerCutText fires on a ServerCutText message. Ported from
	// rfb.py's copy_text().
	OnServerCutText(text string)
	// OnDesktopSize fires when the DesktopSize pseudo-encoding reports a
	// new width/height.
	OnDesktopSize(width, height uint16)
}

// Canvas is the subset of framebuffer.Canvas the protocol engine needs,
// kept as an interface here so the vnc package doesn't import framebuffer
// and create a dependency cycle; framebuffer.Canvas satisfies it.
type Canvas interface {
	Paste(x, y, width, height int, pixels []Color)
	CopyRect(srcX, srcY, dstX, dstY, width, height int)
	Fill(x, y, width, height int, c Color)
	Size() (width, height int)
	Resize(width, height int)
	SetCursor(x, y, width, height int, pixels []Color, mask []byte)
}

// ClientConn is one RFB connection: the version/security handshake, the
// negotiated PixelFormat and encoding set, and the read loop that decodes
// FramebufferUpdate rectangles into a Canvas. It corresponds to rfb.py's
// RFBClient, minus the Twisted Protocol base class the single-threaded
// model here doesn't need.
type ClientConn struct {
	conn   net.Conn
	Logger *log.Logger

	PixelFormat  PixelFormat
	Width        uint16
	Height       uint16
	DesktopName  string

	Handler Handler
	canvas  Canvas

	encodings []encodings.Encoding

	serverMajor, serverMinor int
	pendingCopyRectSrc       *copyRectSrc
	zrleStream               *zrle.Stream

	mu sync.Mutex
}

// Config drives Connect. It is a plain options struct, not a flags/env
// parser: argument parsing is out of scope for this library, matching
// rfb.py's RFBFactory(password, shared) constructor shape.
type Config struct {
	Password string
	Shared   bool
	// Exclusive, when true and Shared is false, requests a non-shared
	// session (shared=false on the wire); the flag sent is
	// Shared || !Exclusive. Defaults to shared access, matching
	// RemoteCapture.py.
	Exclusive bool
}

// Connect performs the RFB handshake over conn (version negotiation,
// security negotiation and optional VNC DES auth, ClientInit/ServerInit)
// and returns a ClientConn ready to have SetEncodings/SetPixelFormat
// called and its read loop driven. canvas receives decoded pixel data;
// it may be nil if the caller only wants the handshake.
func Connect(conn net.Conn, cfg Config, canvas Canvas) (*ClientConn, error) {
	c := &ClientConn{
		conn:   conn,
		Logger: log.Default(),
		canvas: canvas,
	}

	if err := c.handshakeVersion(); err != nil {
		return nil, err
	}
	if err := c.handshakeSecurity(cfg); err != nil {
		return nil, err
	}
	if err := c.clientInit(cfg); err != nil {
		return nil, err
	}
	if err := c.serverInit(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close closes the underlying connection.
func (c *ClientConn) Close() error {
	return c.conn.Close()
}

// readExact reads exactly n bytes from the connection, blocking until all
// of them have arrived whatever the socket's chunk boundaries. Used by the
// handshake and by the server-message and rectangle decoders alike.
func (c *ClientConn) readExact(n int) ([]byte, error) {
	return readN(c.conn, n)
}

func (c *ClientConn) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}

