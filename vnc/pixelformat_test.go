package vnc

import (
	"testing"

	"github.com/ScottEllisNovatex/RemoteCapture/vnc/rfbflags"
)

func TestChannelOrder_DefaultFormatIsRGBX(t *testing.T) {
	if got := DefaultPixelFormat.ChannelOrder(); got != OrderRGBX {
		t.Fatalf("got %s, want %s", got, OrderRGBX)
	}
}

func TestChannelOrder_BGR16Quirk(t *testing.T) {
	pf := PixelFormat{
		BPP: 16, Depth: 16,
		TrueColor: rfbflags.FromBool(true),
		RedMax:    31, GreenMax: 63, BlueMax: 31,
		RedShift: 11, GreenShift: 5, BlueShift: 0,
	}
	if got := pf.ChannelOrder(); got != OrderBGR16 {
		t.Fatalf("got %s, want %s", got, OrderBGR16)
	}
}

func TestChannelOrder_PaletteFormatIsUnknown(t *testing.T) {
	pf := PixelFormat{BPP: 32, Depth: 24, TrueColor: rfbflags.FromBool(false)}
	if got := pf.ChannelOrder(); got != OrderUnknown {
		t.Fatalf("got %s, want unknown", got)
	}
}

func TestBytesPerPixel(t *testing.T) {
	pf := PixelFormat{BPP: 32}
	if pf.BytesPerPixel() != 4 {
		t.Fatalf("got %d, want 4", pf.BytesPerPixel())
	}
}
