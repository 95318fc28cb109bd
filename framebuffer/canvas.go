// Package framebuffer implements the two-dimensional pixel canvas a
// vnc.ClientConn paints FramebufferUpdate rectangles onto: paste, copy,
// fill, auto-grow, and non-destructive cursor sprite compositing.
package framebuffer

import (
	"sync"

	"github.com/ScottEllisNovatex/RemoteCapture/vnc"
)

// Canvas is a mutable RGB grid plus an optional cursor sprite composited
// on top of it. It satisfies vnc.Canvas. session.Factory's single-threaded
// read/tick loop is the only caller.
type Canvas struct {
	mu     sync.Mutex
	width  int
	height int
	pixels []vnc.Color

	cursorX, cursorY          int
	cursorWidth, cursorHeight int
	cursorPixels              []vnc.Color
	cursorMask                []byte
}

func New(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Resize grows or shrinks the backing store, discarding pixel data outside
// the new bounds. Used both for ServerInit's initial size and for the
// DesktopSize pseudo-encoding and the VMware ESXi auto-grow quirk (see
// Paste).
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resizeLocked(width, height)
}

func (c *Canvas) resizeLocked(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == c.width && height == c.height {
		return
	}
	next := make([]vnc.Color, width*height)
	for y := 0; y < minInt(height, c.height); y++ {
		copy(next[y*width:y*width+minInt(width, c.width)], c.pixels[y*c.width:y*c.width+minInt(width, c.width)])
	}
	c.pixels = next
	c.width = width
	c.height = height
}

// Size returns the current canvas dimensions.
func (c *Canvas) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Paste writes a width*height block of pixels at (x, y), row-major. If the
// block doesn't fit within the current bounds the canvas grows to contain
// it first: some servers (VMware ESXi observed in the original
// RemoteCapture.py) paint the very first frame in chunks that arrive
// before ServerInit's advertised size has been fully honoured, and a rigid
// canvas would silently drop or panic on the overflow instead of just
// growing to fit.
func (c *Canvas) Paste(x, y, width, height int, pixels []vnc.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if x+width > c.width || y+height > c.height {
		c.resizeLocked(maxInt(c.width, x+width), maxInt(c.height, y+height))
	}
	for row := 0; row < height; row++ {
		srcStart := row * width
		dstStart := (y+row)*c.width + x
		copy(c.pixels[dstStart:dstStart+width], pixels[srcStart:srcStart+width])
	}
}

// CopyRect moves a width*height block from (srcX, srcY) to (dstX, dstY).
// Source and destination may overlap, so the copy goes through a temporary
// buffer rather than relying on copy()'s overlap semantics across rows.
func (c *Canvas) CopyRect(srcX, srcY, dstX, dstY, width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tmp := make([]vnc.Color, width*height)
	for row := 0; row < height; row++ {
		srcStart := (srcY+row)*c.width + srcX
		copy(tmp[row*width:(row+1)*width], c.pixels[srcStart:srcStart+width])
	}
	for row := 0; row < height; row++ {
		dstStart := (dstY+row)*c.width + dstX
		copy(c.pixels[dstStart:dstStart+width], tmp[row*width:(row+1)*width])
	}
}

// Fill paints a solid-coloured rectangle. The RRE and Hextile decoders do
// not call it: they paint their background into the rectangle's own pixel
// slice, which is then pasted.
func (c *Canvas) Fill(x, y, width, height int, col vnc.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for row := 0; row < height; row++ {
		start := (y+row)*c.width + x
		for i := 0; i < width; i++ {
			c.pixels[start+i] = col
		}
	}
}

// SetCursor records the cursor sprite and hotspot reported by the Cursor
// pseudo-encoding. The sprite is kept separate from the base pixels so
// Snapshot can composite it non-destructively: the cursor is drawn fresh
// onto each snapshot rather than burned permanently into the canvas, which
// would otherwise leave cursor-shaped garbage behind as it moves.
func (c *Canvas) SetCursor(x, y, width, height int, pixels []vnc.Color, mask []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursorX, c.cursorY = x, y
	c.cursorWidth, c.cursorHeight = width, height
	c.cursorPixels = pixels
	c.cursorMask = mask
}

// Snapshot returns a copy of the canvas with the cursor sprite composited
// on top, suitable for handing to a video sink. It never aliases the
// canvas's internal storage, so the caller can hold onto the result across
// the next Paste/CopyRect/Fill.
func (c *Canvas) Snapshot() (width, height int, pixels []vnc.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]vnc.Color, len(c.pixels))
	copy(out, c.pixels)

	rowBytes := (c.cursorWidth + 7) / 8
	for row := 0; row < c.cursorHeight; row++ {
		for col := 0; col < c.cursorWidth; col++ {
			byteIdx := row*rowBytes + col/8
			if byteIdx >= len(c.cursorMask) {
				continue
			}
			bit := (c.cursorMask[byteIdx] >> uint(7-col%8)) & 1
			if bit == 0 {
				continue
			}
			px, py := c.cursorX+col, c.cursorY+row
			if px < 0 || py < 0 || px >= c.width || py >= c.height {
				continue
			}
			out[py*c.width+px] = c.cursorPixels[row*c.cursorWidth+col]
		}
	}
	return c.width, c.height, out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
