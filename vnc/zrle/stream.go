// Package zrle decodes the ZRLE rectangle encoding (RFC 6143 §7.7.5): a
// persistent zlib stream carrying 64x64 tiles, each compressed with one of
// five subencodings (raw, solid, packed palette, plain RLE, palette RLE).
package zrle

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Stream wraps the single zlib inflate stream that persists for the whole
// life of a connection (RFC 6143 is explicit that a ZRLE encoder/decoder
// must never reset it between rectangles). Ported from the teacher's
// ZRLEReadWriter.go: new compressed bytes are appended to an internal
// buffer that the lazily-created zlib.Reader keeps consuming from, so the
// reader's dictionary and bit state survive across calls.
type Stream struct {
	buf *bytes.Buffer
	zr  io.ReadCloser
}

// NewStream returns a Stream with no zlib reader yet; it's created on the
// first Feed call, once there's data to prime it with.
func NewStream() *Stream {
	return &Stream{buf: new(bytes.Buffer)}
}

// Feed appends newly-received compressed bytes (the payload of one ZRLE
// rectangle, after its 4-byte length prefix) and returns a reader that
// yields this rectangle's decompressed tile data. The returned reader is
// only valid to read from before the next Feed call.
func (s *Stream) Feed(compressed []byte) (io.Reader, error) {
	s.buf.Write(compressed)
	if s.zr == nil {
		zr, err := zlib.NewReader(s.buf)
		if err != nil {
			return nil, fmt.Errorf("zrle: opening zlib stream: %w", err)
		}
		s.zr = zr
	}
	return s.zr, nil
}
