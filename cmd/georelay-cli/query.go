package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rmacdonaldsmith/georelay-go/pkg/relayclient"
	"github.com/spf13/cobra"
)

func newQueryCommand() *cobra.Command {
	var (
		authors []string
		since   time.Duration
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query stored messages in the selected scope",
		Long: `Query messages stored in the scope the server hostname selects.
Results never include messages from other scopes, not even nested
geohash cells.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(authors, since, limit)
		},
	}

	cmd.Flags().StringSliceVar(&authors, "author", nil, "Restrict to these authors (repeatable)")
	cmd.Flags().DurationVar(&since, "since", 0, "Only messages newer than this age (e.g. 1h)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of messages to return")

	return cmd
}

func runQuery(authors []string, since time.Duration, limit int) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := relayclient.QueryOptions{
		Authors: authors,
		Limit:   limit,
	}
	if since > 0 {
		opts.Since = time.Now().Add(-since)
	}

	response, err := client.Query(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to query messages: %w", err)
	}

	fmt.Printf("Scope: %s\n", response.Scope)
	fmt.Printf("Messages: %d\n", len(response.Messages))
	for _, msg := range response.Messages {
		line := fmt.Sprintf("[%s] %s: %s", msg.CreatedAt.Format("2006-01-02 15:04:05"), msg.Author, msg.Content)
		if len(msg.Tags) > 0 {
			var rendered []string
			for _, tag := range msg.Tags {
				rendered = append(rendered, strings.Join(tag, ":"))
			}
			line += fmt.Sprintf(" (%s)", strings.Join(rendered, " "))
		}
		fmt.Println(line)
	}

	return nil
}
