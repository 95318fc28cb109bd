package vnc

import (
	"testing"

	"github.com/ScottEllisNovatex/RemoteCapture/vnc/encodings"
)

func TestSetEncodingsMsg_Marshal(t *testing.T) {
	msg := setEncodingsMsg{encs: []encodings.Encoding{encodings.Raw, encodings.CopyRect}}
	data, err := msg.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{msgSetEncodings, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 1}
	if len(data) != len(want) {
		t.Fatalf("got %v want %v", data, want)
	}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("got %v want %v", data, want)
		}
	}
}

func TestFramebufferUpdateRequestMsg_Marshal(t *testing.T) {
	msg := framebufferUpdateRequestMsg{incremental: true, x: 1, y: 2, width: 3, height: 4}
	data, err := msg.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{msgFramebufferUpdateRequest, 1, 0, 1, 0, 2, 0, 3, 0, 4}
	if len(data) != len(want) {
		t.Fatalf("got %v want %v", data, want)
	}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("got %v want %v", data, want)
		}
	}
}

func TestClientCutTextMsg_Marshal(t *testing.T) {
	msg := clientCutTextMsg{text: "hi"}
	data, err := msg.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{msgClientCutText, 0, 0, 0, 0, 0, 0, 2, 'h', 'i'}
	if len(data) != len(want) {
		t.Fatalf("got %v want %v", data, want)
	}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("got %v want %v", data, want)
		}
	}
}
