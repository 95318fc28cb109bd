// Package session owns the RFB connection lifecycle: dialing the server,
// running the handshake, driving the protocol read loop, and reconnecting
// with a bounded back-off if an established connection is lost. This is
// the thin seam an (out-of-scope) control surface would drive. Ported from
// rfb.py's RFBFactory plus RemoteCapture.py's reactor wiring, minus the
// Twisted reactor itself.
package session

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/ScottEllisNovatex/RemoteCapture/framebuffer"
	"github.com/ScottEllisNovatex/RemoteCapture/recorder"
	"github.com/ScottEllisNovatex/RemoteCapture/vnc"
)

const defaultPort = "5900"

// PasswordProvider supplies the VNC auth password lazily, matching
// rfb.py's vncRequestPassword override point: some callers prompt a user,
// others read a stored secret, so the factory never stores the password
// value itself longer than one connection attempt.
type PasswordProvider func() string

// Config configures a Factory. It is a plain struct passed once at
// construction, not a flags/env parser (argument parsing is out of scope);
// this mirrors RFBFactory(password, shared) in rfb.py.
type Config struct {
	// Addr is host:port. If the port is omitted, 5900 is assumed.
	Addr     string
	Password PasswordProvider
	Shared   bool

	// Folder and Filename name where the recorder writes video when
	// armed. Both may be changed later via Factory.SetTarget.
	Folder, Filename string

	// MaxBackoff bounds the reconnect back-off; back-off starts at 1s and
	// doubles up to this ceiling. Defaults to 30s.
	MaxBackoff time.Duration

	// AutoArm arms recording as soon as each connection is established,
	// for callers with no separate control surface driving Arm/Disarm.
	AutoArm bool
}

// Factory establishes connections and supervises reconnection. One Factory
// manages exactly one logical session: its own canvas, its own recorder.
type Factory struct {
	cfg        Config
	canvas     *framebuffer.Canvas
	limiter    *rate.Limiter
	maxBackoff time.Duration
	currentRec atomic.Pointer[recorder.Recorder]
}

// NewFactory returns a Factory ready to Run. canvas is created empty; its
// size is set once ServerInit completes.
func NewFactory(cfg Config) *Factory {
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	return &Factory{
		cfg:    cfg,
		canvas: framebuffer.New(0, 0),
		// One reconnect permitted per tick of the limiter; the bucket
		// starts full so the first connection attempt is immediate.
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		maxBackoff: cfg.MaxBackoff,
	}
}

// Canvas returns the session's framebuffer, valid for the lifetime of the
// Factory regardless of how many times it reconnects.
func (f *Factory) Canvas() *framebuffer.Canvas { return f.canvas }

// Arm, Disarm and SetTarget forward to whichever Recorder backs the
// currently active connection, if any. This is the seam the (out-of-scope)
// control surface drives: it never needs to know a reconnect replaced the
// underlying Recorder instance.
func (f *Factory) Arm() {
	if rec := f.currentRec.Load(); rec != nil {
		rec.Arm()
	}
}

func (f *Factory) Disarm() {
	if rec := f.currentRec.Load(); rec != nil {
		rec.Disarm()
	}
}

func (f *Factory) SetTarget(folder, filename string) {
	f.cfg.Folder, f.cfg.Filename = folder, filename
	if rec := f.currentRec.Load(); rec != nil {
		rec.SetTarget(folder, filename)
	}
}

// Run dials f.cfg.Addr, completes the handshake, and drives the protocol
// read loop and recorder ticker until ctx is cancelled or an
// unrecoverable (connection_failed) error occurs. A connection that was
// successfully established and later drops (connection_lost) triggers a
// reconnect with exponential back-off instead of returning.
func (f *Factory) Run(ctx context.Context, handler vnc.Handler) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		client, rec, err := f.connect(ctx, handler)
		if err != nil {
			// connection_failed: surface the error, do not loop.
			return fmt.Errorf("session: connect: %w", err)
		}
		backoff = time.Second // a successful connect resets the back-off

		runErr := f.runConnection(ctx, client, rec)
		rec.Close()
		if runErr == nil || ctx.Err() != nil {
			return runErr
		}

		// connection_lost: bounded back-off, then reconnect.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > f.maxBackoff {
			backoff = f.maxBackoff
		}
	}
}

func (f *Factory) connect(ctx context.Context, handler vnc.Handler) (*vnc.ClientConn, *recorder.Recorder, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	addr := f.cfg.Addr
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, defaultPort)
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	password := ""
	if f.cfg.Password != nil {
		password = f.cfg.Password()
	}
	client, err := vnc.Connect(conn, vnc.Config{Password: password, Shared: f.cfg.Shared}, f.canvas)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	rec := recorder.New(f.canvas, client)
	rec.SetTarget(f.cfg.Folder, f.cfg.Filename)
	if f.cfg.AutoArm {
		rec.Arm()
	}
	f.currentRec.Store(rec)
	client.Handler = &frameReadyHandler{inner: handler, rec: rec}

	if err := client.SetEncodings(nil); err != nil {
		client.Close()
		return nil, nil, err
	}
	if err := client.SetImageMode(); err != nil {
		client.Close()
		return nil, nil, err
	}
	if err := client.FramebufferUpdateRequest(false, 0, 0, client.Width, client.Height); err != nil {
		client.Close()
		return nil, nil, err
	}

	return client, rec, nil
}

// runConnection drives the protocol read loop and the 10 Hz recorder tick
// from a single goroutine, per spec.md §5's single-threaded cooperative
// scheduling model: all decoding, canvas mutation, frame sampling and video
// encoding happen right here, one after another, never on two goroutines at
// once. client.ReadMessage takes a deadline bounding only the wait for the
// next message's type byte; once a message actually starts, ReadMessage
// clears the deadline so the tick can never land mid-FramebufferUpdate,
// only between two complete messages.
func (f *Factory) runConnection(ctx context.Context, client *vnc.ClientConn, rec *recorder.Recorder) error {
	defer client.Close()

	nextTick := time.Now().Add(recorder.TickInterval)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		timedOut, err := client.ReadMessage(nextTick)
		if err != nil {
			return err
		}
		if !timedOut && time.Now().Before(nextTick) {
			continue
		}

		if err := rec.Tick(); err != nil {
			return err
		}
		nextTick = time.Now().Add(recorder.TickInterval)
	}
}
