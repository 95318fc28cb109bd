package vnc

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Marshaler is implemented by anything that can write its own wire
// representation. Client-to-server messages and encoding rectangles both
// implement it, matching the teacher's split between Marshal (write) and
// Read (parse) on the same types.
type Marshaler interface {
	Marshal() ([]byte, error)
}

// buffer is a small helper around bytes.Buffer for building wire messages
// with fixed-width big-endian fields, the layout RFB uses throughout.
type buffer struct {
	bytes.Buffer
}

func newBuffer() *buffer {
	return &buffer{}
}

func (b *buffer) writeUint8(v uint8) {
	b.WriteByte(v)
}

func (b *buffer) writeUint16(v uint16) {
	binary.Write(b, binary.BigEndian, v)
}

func (b *buffer) writeUint32(v uint32) {
	binary.Write(b, binary.BigEndian, v)
}

func (b *buffer) writeInt32(v int32) {
	binary.Write(b, binary.BigEndian, v)
}

// readUint8 through readUint32 read fixed-width big-endian fields off an
// io.Reader, the shape every handshake and rectangle-header read uses.
func readUint8(r io.Reader) (uint8, error) {
	var v uint8
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func readUint16(r io.Reader) (uint16, error) {
	var v uint16
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func readInt32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

// readN reads exactly n bytes or returns an error, the pattern every
// rectangle decoder uses to pull its payload before parsing it.
func readN(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
