// Package recorder implements the paced video sampler: a 10 Hz ticker that
// samples the framebuffer canvas and appends frames to an H.264/MP4 sink,
// armed and disarmed by external control signals. See RemoteCapture.py's
// commitUpdate/triggerupdate and the cv2.VideoWriter it drives.
package recorder

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/ScottEllisNovatex/RemoteCapture/framebuffer"
	"github.com/ScottEllisNovatex/RemoteCapture/vnc"
)

// TickInterval is the paced sampler's period: spec.md §4.6's 10 Hz ticker.
// Exported so session.Factory can drive Tick at the same cadence from its
// own single-threaded read/tick loop instead of Recorder running its own
// goroutine.
const TickInterval = 100 * time.Millisecond

const (
	fps   = 10.0
	codec = "avc1" // H.264

	defaultWidth  = 1920
	defaultHeight = 1080
)

// updateRequester is the slice of ClientConn the recorder needs: asking
// the server to keep pushing deltas every tick, independent of whether a
// sink is currently open.
type updateRequester interface {
	FramebufferUpdateRequest(incremental bool, x, y, width, height uint16) error
}

// Recorder drives the 10 Hz sampler described in spec.md §4.6. It is not a
// goroutine and does not run its own ticker: Tick does one tick's worth of
// work (observe arm/disarm, sample a frame if recording, request the next
// update) and returns immediately, so the caller can interleave it with the
// protocol read loop on a single goroutine, matching the single-threaded
// cooperative scheduling model spec.md §5 requires — the ticker must be
// able to interleave only between complete messages, never mid-update,
// which is only possible if something outside Recorder controls exactly
// when Tick runs.
type Recorder struct {
	canvas *framebuffer.Canvas
	conn   updateRequester

	armed    atomic.Bool
	disarmed atomic.Bool
	frameSeen atomic.Bool

	targetMu sync.Mutex
	folder, filename string

	mu        sync.Mutex
	sink      *gocv.VideoWriter
	recording bool
}

// New returns a Recorder sampling canvas and polling conn for updates.
// conn may be nil for tests that only exercise the sink lifecycle.
func New(canvas *framebuffer.Canvas, conn updateRequester) *Recorder {
	return &Recorder{canvas: canvas, conn: conn}
}

// SetTarget configures where the next Arm will open its sink. Matches the
// {filename, folder} control inputs named in spec.md §6.
func (r *Recorder) SetTarget(folder, filename string) {
	r.targetMu.Lock()
	defer r.targetMu.Unlock()
	r.folder, r.filename = folder, filename
}

// Arm requests recording start on the next tick. Rising-edge triggered:
// the ticker clears the flag once it has acted on it, so calling Arm
// again before that happens has no additional effect.
func (r *Recorder) Arm() { r.armed.Store(true) }

// Disarm requests recording stop on the next tick, same edge semantics as
// Arm.
func (r *Recorder) Disarm() { r.disarmed.Store(true) }

// MarkFrameReady records that at least one full FramebufferUpdate has been
// applied to the canvas. Ported from RemoteCapture.py's commitUpdate,
// which only starts its ticker after self.FirstTime; here the ticker runs
// from session start regardless, but sampling is a no-op until this has
// fired at least once, producing the same observable behaviour with a
// simpler seam (see SPEC_FULL.md §11).
func (r *Recorder) MarkFrameReady() { r.frameSeen.Store(true) }

// Tick performs one tick's worth of work: observe any pending Arm/Disarm,
// sample the current canvas into the open sink if recording, and ask the
// server for the next update. Called once per TickInterval by whatever is
// driving the single-threaded read/tick loop (session.Factory); missed
// ticks are never caught up, matching spec.md §4.6's "time advances even if
// a tick is late".
func (r *Recorder) Tick() error {
	if err := r.observeArm(); err != nil {
		return err
	}
	r.observeDisarm()

	if r.isRecording() && r.frameSeen.Load() {
		if err := r.sampleFrame(); err != nil {
			return err
		}
	}

	if r.conn != nil {
		w, h := r.canvas.Size()
		if err := r.conn.FramebufferUpdateRequest(true, 0, 0, uint16(w), uint16(h)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) isRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

func (r *Recorder) observeArm() error {
	if !r.armed.CompareAndSwap(true, false) {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sink != nil {
		return nil
	}
	width, height := r.canvas.Size()
	if width == 0 || height == 0 {
		width, height = defaultWidth, defaultHeight
	}
	r.targetMu.Lock()
	path := filepath.Join(r.folder, r.filename)
	r.targetMu.Unlock()

	sink, err := gocv.VideoWriterFile(path, codec, fps, width, height, true)
	if err != nil {
		return fmt.Errorf("recorder: opening video sink %s: %w", path, err)
	}
	r.sink = sink
	r.recording = true
	return nil
}

func (r *Recorder) observeDisarm() {
	if !r.disarmed.CompareAndSwap(true, false) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sink == nil {
		return
	}
	r.sink.Close()
	r.sink = nil
	r.recording = false
}

// Close shuts down any open sink immediately, bypassing the tick-boundary
// observation Disarm normally waits for. The session factory calls this on
// connection loss, per spec.md §4.7 ("close the current sink if any").
func (r *Recorder) Close() {
	r.closeSink()
}

func (r *Recorder) closeSink() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sink != nil {
		r.sink.Close()
		r.sink = nil
		r.recording = false
	}
}

func (r *Recorder) sampleFrame() error {
	width, height, pixels := r.canvas.Snapshot()
	if width == 0 || height == 0 {
		return nil
	}
	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, bgrBytes(pixels))
	if err != nil {
		return fmt.Errorf("recorder: building frame: %w", err)
	}
	defer mat.Close()

	r.mu.Lock()
	sink := r.sink
	r.mu.Unlock()
	if sink == nil {
		return nil
	}
	return sink.Write(mat)
}

// bgrBytes converts the canvas's canonical RGB pixels to the BGR byte
// order OpenCV/gocv expects for a CV_8UC3 Mat.
func bgrBytes(pixels []vnc.Color) []byte {
	out := make([]byte, len(pixels)*3)
	for i, c := range pixels {
		out[i*3+0] = c.B
		out[i*3+1] = c.G
		out[i*3+2] = c.R
	}
	return out
}
