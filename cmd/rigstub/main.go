// Command rigstub is a stand-in for the application rig manages. It serves
// the automation API rig drives, and doubles as its own maintenance tool
// when launched with -maintenance.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tessro/rig/internal/stubapp"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8750", "Automation API listen address")
	version := flag.String("app-version", "stub", "Version reported by /api/state")
	startupDelay := flag.Duration("startup-delay", 0, "Hold the listener back to simulate a slow boot")
	failCloseWork := flag.Bool("fail-close-work", false, "Answer /api/work/close with an error")
	idle := flag.Bool("idle", false, "Sleep until signalled without serving anything")
	maintenance := flag.String("maintenance", "", "Run one maintenance pass (clear-cache, apply-config) and exit")
	dir := flag.String("dir", "", "Directory for the maintenance log")
	flag.Parse()

	if *maintenance != "" {
		if err := stubapp.Maintenance(*maintenance, *dir); err != nil {
			fmt.Fprintf(os.Stderr, "rigstub: maintenance %s: %v\n", *maintenance, err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *idle {
		<-ctx.Done()
		return
	}

	s := stubapp.New(stubapp.Config{
		Addr:          *addr,
		Version:       *version,
		StartupDelay:  *startupDelay,
		FailCloseWork: *failCloseWork,
	})
	if err := s.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "rigstub: %v\n", err)
		os.Exit(1)
	}
}
