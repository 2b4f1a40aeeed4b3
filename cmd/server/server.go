package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"ladder/internal/engine"
	"ladder/internal/net"
)

func main() {
	address := flag.String("address", "0.0.0.0", "address to bind")
	port := flag.Int("port", 9001, "port to bind")
	flag.Parse()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	eng := engine.New()
	srv := net.New(*address, *port, eng)

	go srv.Run(ctx)
	// Block until the server shuts down.
	<-ctx.Done()
}
