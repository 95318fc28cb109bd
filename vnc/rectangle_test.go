package vnc

import (
	"net"
	"testing"
)

func testConn(t *testing.T, data []byte) *ClientConn {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close(); client.Close() })
	go func() {
		server.Write(data)
	}()
	return &ClientConn{conn: client, PixelFormat: DefaultPixelFormat}
}

func TestRREEncoding_Read(t *testing.T) {
	// numRects=1, background=(0,0,0), one subrect at (1,0,2,1) colour (255,0,0)
	data := []byte{0, 0, 0, 1}
	data = append(data, 0, 0, 0, 0xff) // background RGBX
	data = append(data, 255, 0, 0, 0xff) // subrect colour RGBX
	data = append(data, 0, 1, 0, 0, 0, 2, 0, 1) // x=1 y=0 w=2 h=1
	c := testConn(t, data)

	rect := &Rectangle{Width: 4, Height: 1}
	if err := (rreEncoding{}).read(c, rect); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rect.Pixels[0] != (Color{}) {
		t.Fatalf("expected background at 0, got %+v", rect.Pixels[0])
	}
	if rect.Pixels[1] != (Color{R: 255}) || rect.Pixels[2] != (Color{R: 255}) {
		t.Fatalf("expected subrect colour at 1,2, got %+v", rect.Pixels)
	}
	if rect.Pixels[3] != (Color{}) {
		t.Fatalf("expected background at 3, got %+v", rect.Pixels[3])
	}
}

func TestCoRREEncoding_Read(t *testing.T) {
	data := []byte{0, 0, 0, 1}
	data = append(data, 0, 0, 0, 0xff)
	data = append(data, 0, 255, 0, 0xff)
	data = append(data, 0, 0, 2, 1) // x=0 y=0 w=2 h=1
	c := testConn(t, data)

	rect := &Rectangle{Width: 2, Height: 1}
	if err := (corREEncoding{}).read(c, rect); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range rect.Pixels {
		if p != (Color{G: 255}) {
			t.Fatalf("expected green fill, got %+v", rect.Pixels)
		}
	}
}

func TestHextileEncoding_RawTile(t *testing.T) {
	flags := byte(hextileRaw)
	data := []byte{flags}
	for i := 0; i < 16*16; i++ {
		data = append(data, 1, 2, 3, 0xff)
	}
	c := testConn(t, data)
	rect := &Rectangle{Width: 16, Height: 16}
	if err := (hextileEncoding{}).read(c, rect); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rect.Pixels[0] != (Color{R: 1, G: 2, B: 3}) {
		t.Fatalf("got %+v", rect.Pixels[0])
	}
}

func TestHextileEncoding_BackgroundAndSubrects(t *testing.T) {
	flags := byte(hextileBackgroundSpecified | hextileForegroundSpecified | hextileAnySubrects)
	data := []byte{flags}
	data = append(data, 0, 0, 0, 0xff)   // background black
	data = append(data, 255, 255, 255, 0xff) // foreground white
	data = append(data, 1)               // one subrect
	data = append(data, 0x00, 0x00)      // x=0 y=0, w=1 h=1 (encoded as 0 => actual 1)
	c := testConn(t, data)

	rect := &Rectangle{Width: 16, Height: 16}
	if err := (hextileEncoding{}).read(c, rect); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rect.Pixels[0] != (Color{R: 255, G: 255, B: 255}) {
		t.Fatalf("expected foreground subrect at 0,0, got %+v", rect.Pixels[0])
	}
	if rect.Pixels[len(rect.Pixels)-1] != (Color{}) {
		t.Fatalf("expected background elsewhere, got %+v", rect.Pixels[len(rect.Pixels)-1])
	}
}
