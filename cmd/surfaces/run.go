package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/tablero-live/surfaces/internal/realtime"
)

const clearScreen = "\033[2J\033[H"

// runSurface wires a realtime client to a frame stream and optionally a
// command reader, then blocks until interrupt or client exit.
func runSurface(parent context.Context, client *realtime.Client, frames <-chan string, commands func(context.Context)) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return client.Run(ctx) })
	g.Go(func() error { return printFrames(ctx, frames) })
	if commands != nil {
		// Stdin reads cannot be cancelled, so the reader is not part of the
		// group; it stops feeding once ctx is done.
		go commands(ctx)
	}
	return g.Wait()
}

func printFrames(ctx context.Context, frames <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame := <-frames:
			fmt.Print(clearScreen + frame)
		}
	}
}

// readCommands feeds each non-empty stdin line to handle until EOF or cancel.
func readCommands(ctx context.Context, r io.Reader, handle func(line string)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		handle(line)
	}
}
