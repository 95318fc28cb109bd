// Command recordvnc is a minimal example wiring of the session/recorder
// library: connect to one VNC server, arm recording immediately, and run
// until interrupted. It is not a control surface (no HTTP, no flags
// parsing beyond what's hardcoded below) — those are explicitly out of
// scope; this just proves the library's pieces fit together, the same
// role RemoteCapture.py's __main__ block plays for the original.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ScottEllisNovatex/RemoteCapture/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := session.NewFactory(session.Config{
		Addr:     "127.0.0.1:5900",
		Password: func() string { return "" },
		Shared:   true,
		Folder:   ".",
		Filename: "output.mp4",
		AutoArm:  true,
	})

	if err := factory.Run(ctx, nil); err != nil && ctx.Err() == nil {
		log.Fatalf("recordvnc: %v", err)
	}
}
