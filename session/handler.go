package session

import (
	"github.com/ScottEllisNovatex/RemoteCapture/recorder"
	"github.com/ScottEllisNovatex/RemoteCapture/vnc"
)

// frameReadyHandler wraps a caller's vnc.Handler so the recorder always
// hears about the first completed update, regardless of whether the
// caller's own handler cares about commits. inner may be nil.
type frameReadyHandler struct {
	inner vnc.Handler
	rec   *recorder.Recorder
}

func (h *frameReadyHandler) OnBeginUpdate() {
	if h.inner != nil {
		h.inner.OnBeginUpdate()
	}
}

func (h *frameReadyHandler) OnCommitUpdate() {
	h.rec.MarkFrameReady()
	if h.inner != nil {
		h.inner.OnCommitUpdate()
	}
}

func (h *frameReadyHandler) OnRectangle(rect *vnc.Rectangle) {
	if h.inner != nil {
		h.inner.OnRectangle(rect)
	}
}

func (h *frameReadyHandler) OnBell() {
	if h.inner != nil {
		h.inner.OnBell()
	}
}

func (h *frameReadyHandler) OnServerCutText(text string) {
	if h.inner != nil {
		h.inner.OnServerCutText(text)
	}
}

func (h *frameReadyHandler) OnDesktopSize(width, height uint16) {
	if h.inner != nil {
		h.inner.OnDesktopSize(width, height)
	}
}
