package zrle

import (
	"bytes"
	"testing"
)

func cpx(r, g, b byte) CPixel { return CPixel{r, g, b} }

func TestDecodeTile_Raw(t *testing.T) {
	data := []byte{0} // subencoding 0 = raw
	data = append(data, 1, 2, 3, 4, 5, 6) // two pixels
	out := make([]CPixel, 2)
	if err := DecodeTile(bytes.NewReader(data), 2, 1, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != cpx(1, 2, 3) || out[1] != cpx(4, 5, 6) {
		t.Fatalf("got %v", out)
	}
}

func TestDecodeTile_Solid(t *testing.T) {
	data := []byte{1, 9, 8, 7}
	out := make([]CPixel, 4)
	if err := DecodeTile(bytes.NewReader(data), 2, 2, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range out {
		if c != cpx(9, 8, 7) {
			t.Fatalf("got %v", out)
		}
	}
}

func TestDecodeTile_PlainRLE(t *testing.T) {
	// one run of 257 pixels of the same colour: 255 + 2 -> extra bytes 255,1
	data := []byte{128, 5, 6, 7, 255, 1}
	out := make([]CPixel, 257)
	if err := DecodeTile(bytes.NewReader(data), 257, 1, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range out {
		if c != cpx(5, 6, 7) {
			t.Fatalf("run length mismatch: %v", out)
		}
	}
}

func TestDecodeTile_PaletteRLE(t *testing.T) {
	// palette size 2, two runs: index 0 run of 3 (0x80|0, extra=2), index 1 run of 1
	data := []byte{130,
		1, 1, 1, // palette[0]
		2, 2, 2, // palette[1]
		0x80, 2, // index 0, run extra 2 -> run length 3
		0x01, // index 1, run length 1
	}
	out := make([]CPixel, 4)
	if err := DecodeTile(bytes.NewReader(data), 4, 1, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []CPixel{cpx(1, 1, 1), cpx(1, 1, 1), cpx(1, 1, 1), cpx(2, 2, 2)}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("got %v want %v", out, want)
		}
	}
}

func TestDecodeTile_PackedPalette(t *testing.T) {
	// palette size 2 -> 1 bit per index, 4-wide row packed into 1 byte, MSB first
	data := []byte{2,
		0, 0, 0, // palette[0] black
		255, 255, 255, // palette[1] white
		0b10100000, // indices 1,0,1,0 then padding
	}
	out := make([]CPixel, 4)
	if err := DecodeTile(bytes.NewReader(data), 4, 1, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []CPixel{cpx(255, 255, 255), cpx(0, 0, 0), cpx(255, 255, 255), cpx(0, 0, 0)}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("got %v want %v", out, want)
		}
	}
}

func TestDecodeTile_IllegalSubencoding129(t *testing.T) {
	data := []byte{129}
	out := make([]CPixel, 1)
	if err := DecodeTile(bytes.NewReader(data), 1, 1, out); err == nil {
		t.Fatalf("expected error for subencoding 129")
	}
}
