package zrle

import (
	"fmt"
	"io"
)

// CPixel is ZRLE's compact pixel: 3 RGB bytes. RFC 6143 says a CPIXEL is
// the full pixel for most formats but drops the 4th (alpha/padding) byte
// whenever bpp is 32 and depth <= 24 (as in vnc.DefaultPixelFormat). This
// package always reads a CPixel as exactly 3 bytes, whatever pixel format
// is in effect, and the vnc caller takes them as R, G, B in that order.
type CPixel [3]byte

const TileSize = 64

// DecodeTile reads one tile's subencoding and pixel data from r (the
// decompressed ZRLE stream) and fills out, a width*height row-major CPixel
// slice. width and height are at most TileSize, smaller at the right/
// bottom edge of a rectangle that isn't a multiple of 64.
func DecodeTile(r io.Reader, width, height int, out []CPixel) error {
	if len(out) != width*height {
		return fmt.Errorf("zrle: tile buffer size %d does not match %dx%d", len(out), width, height)
	}

	sub, err := readByte(r)
	if err != nil {
		return fmt.Errorf("zrle: reading subencoding: %w", err)
	}

	switch {
	case sub == 0:
		return decodeRaw(r, out)
	case sub == 1:
		return decodeSolid(r, out)
	case sub >= 2 && sub <= 16:
		return decodePackedPalette(r, width, height, out, int(sub))
	case sub == 128:
		return decodePlainRLE(r, out)
	case sub == 129:
		return fmt.Errorf("zrle: illegal subencoding 129 (palette size 1 with RLE)")
	case sub >= 130:
		return decodePaletteRLE(r, out, int(sub)-128)
	default: // 17..127
		return fmt.Errorf("zrle: unused subencoding %d", sub)
	}
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func readCPixel(r io.Reader) (CPixel, error) {
	var c CPixel
	_, err := io.ReadFull(r, c[:])
	return c, err
}

func decodeRaw(r io.Reader, out []CPixel) error {
	for i := range out {
		c, err := readCPixel(r)
		if err != nil {
			return fmt.Errorf("zrle: raw tile: %w", err)
		}
		out[i] = c
	}
	return nil
}

func decodeSolid(r io.Reader, out []CPixel) error {
	c, err := readCPixel(r)
	if err != nil {
		return fmt.Errorf("zrle: solid tile: %w", err)
	}
	for i := range out {
		out[i] = c
	}
	return nil
}

// bitsPerIndex returns the packed-palette bit width for a given palette
// size, per RFC 6143: 1 bit for 2 colours, 2 bits for 3-4, 4 bits for 5-16.
func bitsPerIndex(paletteSize int) int {
	switch {
	case paletteSize == 2:
		return 1
	case paletteSize <= 4:
		return 2
	default:
		return 4
	}
}

// decodePackedPalette reads a palette of paletteSize CPixels, then one row
// at a time: indices are packed MSB-first into bitsPerIndex(paletteSize)
// bits each, and each row is padded out to a whole number of bytes (a new
// row never shares a byte with the row before it).
func decodePackedPalette(r io.Reader, width, height int, out []CPixel, paletteSize int) error {
	palette, err := readPalette(r, paletteSize)
	if err != nil {
		return err
	}
	bits := bitsPerIndex(paletteSize)
	rowBytes := (width*bits + 7) / 8

	for y := 0; y < height; y++ {
		row := make([]byte, rowBytes)
		if _, err := io.ReadFull(r, row); err != nil {
			return fmt.Errorf("zrle: packed palette row %d: %w", y, err)
		}
		bitPos := 0
		for x := 0; x < width; x++ {
			idx := extractBits(row, bitPos, bits)
			bitPos += bits
			if idx >= paletteSize {
				return fmt.Errorf("zrle: packed palette index %d out of range (size %d)", idx, paletteSize)
			}
			out[y*width+x] = palette[idx]
		}
	}
	return nil
}

// extractBits pulls a `bits`-wide, MSB-first field out of data starting at
// bit offset bitPos.
func extractBits(data []byte, bitPos, bits int) int {
	v := 0
	for i := 0; i < bits; i++ {
		byteIdx := (bitPos + i) / 8
		bitIdx := 7 - (bitPos+i)%8
		bit := (data[byteIdx] >> uint(bitIdx)) & 1
		v = v<<1 | int(bit)
	}
	return v
}

func readPalette(r io.Reader, size int) ([]CPixel, error) {
	palette := make([]CPixel, size)
	for i := range palette {
		c, err := readCPixel(r)
		if err != nil {
			return nil, fmt.Errorf("zrle: reading palette entry %d: %w", i, err)
		}
		palette[i] = c
	}
	return palette, nil
}

// readRunExtra reads the continuation-byte run-length suffix shared by
// plain RLE and palette RLE: a sequence of 255-valued bytes followed by a
// terminating byte less than 255; the total run length is the sum of all
// bytes read plus 1.
func readRunExtra(r io.Reader) (int, error) {
	extra := 0
	for {
		b, err := readByte(r)
		if err != nil {
			return 0, err
		}
		extra += int(b)
		if b != 255 {
			break
		}
	}
	return extra, nil
}

func decodePlainRLE(r io.Reader, out []CPixel) error {
	n := 0
	for n < len(out) {
		c, err := readCPixel(r)
		if err != nil {
			return fmt.Errorf("zrle: plain rle pixel: %w", err)
		}
		extra, err := readRunExtra(r)
		if err != nil {
			return fmt.Errorf("zrle: plain rle run length: %w", err)
		}
		run := extra + 1
		if n+run > len(out) {
			return fmt.Errorf("zrle: plain rle run overruns tile (%d+%d > %d)", n, run, len(out))
		}
		for i := 0; i < run; i++ {
			out[n+i] = c
		}
		n += run
	}
	return nil
}

func decodePaletteRLE(r io.Reader, out []CPixel, paletteSize int) error {
	if paletteSize < 2 || paletteSize > 127 {
		return fmt.Errorf("zrle: illegal palette rle size %d", paletteSize)
	}
	palette, err := readPalette(r, paletteSize)
	if err != nil {
		return err
	}
	n := 0
	for n < len(out) {
		idxByte, err := readByte(r)
		if err != nil {
			return fmt.Errorf("zrle: palette rle index: %w", err)
		}
		idx := int(idxByte & 0x7f)
		if idx >= paletteSize {
			return fmt.Errorf("zrle: palette rle index %d out of range (size %d)", idx, paletteSize)
		}
		run := 1
		if idxByte&0x80 != 0 {
			extra, err := readRunExtra(r)
			if err != nil {
				return fmt.Errorf("zrle: palette rle run length: %w", err)
			}
			run = extra + 1
		}
		if n+run > len(out) {
			return fmt.Errorf("zrle: palette rle run overruns tile (%d+%d > %d)", n, run, len(out))
		}
		for i := 0; i < run; i++ {
			out[n+i] = palette[idx]
		}
		n += run
	}
	return nil
}
