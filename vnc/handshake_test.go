package vnc

import (
	"io"
	"net"
	"testing"
)

// TestHandshakeVersion_ChoosesHighestSupported exercises RFC 6143 §7.1.1: the
// client must compute and write back the highest of {3.3, 3.7, 3.8} not
// exceeding the server's advertised version, not echo the server's raw
// string. "Screens" is known to advertise a non-standard 3.889 (see
// original_source/RemoteCapture.py's setImageMode quirks); real servers
// reject getting that exact oddity echoed back, so 3.8 is what must go out.
func TestHandshakeVersion_ChoosesHighestSupported(t *testing.T) {
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close(); client.Close() })

	respCh := make(chan []byte, 1)
	go func() {
		server.Write([]byte("RFB 003.889\n"))
		buf := make([]byte, 12)
		io.ReadFull(server, buf)
		respCh <- buf
	}()

	c := &ClientConn{conn: client}
	if err := c.handshakeVersion(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(<-respCh); got != "RFB 003.008\n" {
		t.Fatalf("got %q, want %q", got, "RFB 003.008\n")
	}
	if c.serverMajor != 3 || c.serverMinor != 8 {
		t.Fatalf("got negotiated %d.%d, want 3.8", c.serverMajor, c.serverMinor)
	}
}

// TestHandshakeVersion_CapsAt33 checks the floor: a server offering less
// than 3.7 gets 3.3 chosen, never a minor the client doesn't actually
// support.
func TestHandshakeVersion_CapsAt33(t *testing.T) {
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close(); client.Close() })

	respCh := make(chan []byte, 1)
	go func() {
		server.Write([]byte("RFB 003.003\n"))
		buf := make([]byte, 12)
		io.ReadFull(server, buf)
		respCh <- buf
	}()

	c := &ClientConn{conn: client}
	if err := c.handshakeVersion(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(<-respCh); got != "RFB 003.003\n" {
		t.Fatalf("got %q, want %q", got, "RFB 003.003\n")
	}
}

// TestHandshakeSecurity_PrefersVNCAuthRegardlessOfPassword exercises RFC
// 6143 §7.1.2's 3.7+ list-and-choose form. rfb.py's _handleSecurityTypes
// picks max(valid_types) unconditionally; a server offering {None, VNCAuth}
// must get VNCAuth chosen even when the caller has configured no password
// at all — the server is the authority on whether the empty password is
// accepted, not the client.
func TestHandshakeSecurity_PrefersVNCAuthRegardlessOfPassword(t *testing.T) {
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close(); client.Close() })

	chosenCh := make(chan byte, 1)
	go func() {
		server.Write([]byte{2, secTypeNone, secTypeVNCAuth}) // count=2, {1,2}
		chosen := make([]byte, 1)
		io.ReadFull(server, chosen)
		chosenCh <- chosen[0]

		server.Write(make([]byte, 16)) // vnc auth challenge
		resp := make([]byte, 16)
		io.ReadFull(server, resp)

		server.Write([]byte{0, 0, 0, 0}) // SecurityResult: OK
	}()

	c := &ClientConn{conn: client, serverMinor: 7}
	if err := c.handshakeSecurity(Config{Password: ""}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := <-chosenCh; got != secTypeVNCAuth {
		t.Fatalf("got security type %d, want VNCAuth (%d)", got, secTypeVNCAuth)
	}
}

// TestHandshakeSecurity_VNCAuthOnlyWithNoPasswordAttemptsExchange covers the
// server-offers-VNCAuth-only case: the client must still perform the DES
// exchange instead of failing locally before attempting it.
func TestHandshakeSecurity_VNCAuthOnlyWithNoPasswordAttemptsExchange(t *testing.T) {
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close(); client.Close() })

	respCh := make(chan []byte, 1)
	go func() {
		server.Write([]byte{1, secTypeVNCAuth}) // count=1, {2}
		chosen := make([]byte, 1)
		io.ReadFull(server, chosen)

		server.Write(make([]byte, 16)) // challenge
		resp := make([]byte, 16)
		io.ReadFull(server, resp)
		respCh <- resp

		server.Write([]byte{0, 0, 0, 1}) // SecurityResult: failed
		server.Write([]byte{0, 0, 0, 0}) // reason length 0
	}()

	c := &ClientConn{conn: client, serverMinor: 7}
	err := c.handshakeSecurity(Config{Password: ""})
	if err == nil {
		t.Fatalf("expected the server's own auth failure to surface as an error")
	}
	if len(<-respCh) != 16 {
		t.Fatalf("expected the client to attempt the DES exchange despite no configured password")
	}
}

// TestServerInit_ParsesFramebufferGeometryAndName covers RFC 6143 §7.3.2.
func TestServerInit_ParsesFramebufferGeometryAndName(t *testing.T) {
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close(); client.Close() })

	go func() {
		var msg []byte
		msg = append(msg, 0x04, 0x00) // width 1024
		msg = append(msg, 0x02, 0x00) // height 512
		pf := make([]byte, 16)
		pf[0] = 32 // bpp
		pf[1] = 24 // depth
		msg = append(msg, pf...)
		msg = append(msg, 0, 0, 0, 4) // name length 4
		msg = append(msg, []byte("test")...)
		server.Write(msg)
	}()

	c := &ClientConn{conn: client}
	if err := c.serverInit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Width != 1024 || c.Height != 512 {
		t.Fatalf("got %dx%d, want 1024x512", c.Width, c.Height)
	}
	if c.DesktopName != "test" {
		t.Fatalf("got desktop name %q, want %q", c.DesktopName, "test")
	}
	if c.PixelFormat.BPP != 32 || c.PixelFormat.Depth != 24 {
		t.Fatalf("got pixel format %+v", c.PixelFormat)
	}
}
