package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gliderlabs/ssh"

	"github.com/stlalpha/cpdisp/internal/chartserver"
	"github.com/stlalpha/cpdisp/internal/logging"
)

func main() {
	addr := flag.String("addr", ":2222", "listen address")
	hostKey := flag.String("host-key", "", "SSH host key (PEM); generated when empty")
	dataPath := flag.String("data", "", "directory of mapping files sessions may open")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	logging.Setup(os.Stderr, *debug)
	log.SetFlags(log.LstdFlags)

	srv, err := chartserver.NewServer(chartserver.Config{
		Addr:        *addr,
		HostKeyPath: *hostKey,
		DataPath:    *dataPath,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to configure chart server: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Printf("INFO: Shutting down chart server")
		srv.Close()
	}()

	log.Printf("INFO: Chart server listening on %s", *addr)
	if *dataPath != "" {
		log.Printf("INFO: Mapping files served from %s", *dataPath)
	}
	if err := srv.ListenAndServe(); err != nil && err != ssh.ErrServerClosed {
		log.Fatalf("FATAL: Chart server stopped: %v", err)
	}
}
