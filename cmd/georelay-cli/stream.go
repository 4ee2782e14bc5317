package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rmacdonaldsmith/georelay-go/pkg/relayclient"
	"github.com/spf13/cobra"
)

func newStreamCommand() *cobra.Command {
	var authors []string

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream live messages from the selected scope",
		Long: `Stream messages as they arrive in the scope the server hostname
selects. Press Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(authors)
		},
	}

	cmd.Flags().StringSliceVar(&authors, "author", nil, "Restrict to these authors (repeatable)")

	return cmd
}

func runStream(authors []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nStopping stream...")
		cancel()
	}()

	stream, err := client.Stream(ctx, relayclient.StreamConfig{
		Query: relayclient.QueryOptions{Authors: authors},
	})
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer stream.Close()

	fmt.Printf("Streaming messages from %s (Ctrl+C to stop)...\n", serverURL)

	for {
		select {
		case msg, ok := <-stream.Messages():
			if !ok {
				return nil
			}
			fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Format("15:04:05"), msg.Author, msg.Content)
		case err, ok := <-stream.Errors():
			if ok && err != nil {
				fmt.Fprintf(os.Stderr, "⚠️  %v\n", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
