package recorder

import (
	"testing"

	"github.com/ScottEllisNovatex/RemoteCapture/vnc"
)

func TestBGRBytes(t *testing.T) {
	pixels := []vnc.Color{{R: 1, G: 2, B: 3}, {R: 4, G: 5, B: 6}}
	got := bgrBytes(pixels)
	want := []byte{3, 2, 1, 6, 5, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestArmDisarmFlagsClearOnObservation(t *testing.T) {
	r := &Recorder{}
	r.Arm()
	if !r.armed.CompareAndSwap(true, false) {
		t.Fatalf("expected armed flag to be set after Arm")
	}
	if r.armed.Load() {
		t.Fatalf("expected armed flag to clear once observed")
	}

	r.Disarm()
	if !r.disarmed.CompareAndSwap(true, false) {
		t.Fatalf("expected disarmed flag to be set after Disarm")
	}
	if r.disarmed.Load() {
		t.Fatalf("expected disarmed flag to clear once observed")
	}
}
