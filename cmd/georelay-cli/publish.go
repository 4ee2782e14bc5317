package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rmacdonaldsmith/georelay-go/pkg/relayclient"
	"github.com/spf13/cobra"
)

func newPublishCommand() *cobra.Command {
	var (
		content string
		cell    string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a message to the selected scope",
		Long: `Publish a message to the scope the server hostname selects.
With --cell the message carries a location tag for that geohash cell; the
relay only accepts it when the cell matches the scope you are talking to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(content, cell)
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "Message content (required)")
	cmd.Flags().StringVar(&cell, "cell", "", "Geohash cell for the location tag (optional)")
	if err := cmd.MarkFlagRequired("content"); err != nil {
		panic(fmt.Sprintf("Failed to mark content as required: %v", err))
	}

	return cmd
}

func runPublish(content, cell string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var tags [][]string
	if cell != "" {
		tags = [][]string{{"g", cell}}
	}

	fmt.Printf("Publishing message to %s...\n", serverURL)

	response, err := client.Publish(ctx, content, tags)
	if err != nil {
		var rejection *relayclient.RejectionError
		if errors.As(err, &rejection) && rejection.Hint != "" {
			return fmt.Errorf("%s\nHint: publish this message to the %q subdomain instead", rejection.Reason, rejection.Hint)
		}
		return fmt.Errorf("failed to publish message: %w", err)
	}

	fmt.Printf("✅ Message published successfully!\n")
	fmt.Printf("Message ID: %s\n", response.MessageID)
	fmt.Printf("Scope: %s\n", response.Scope)
	fmt.Printf("Timestamp: %s\n", response.Timestamp.Format("2006-01-02 15:04:05"))

	return nil
}
