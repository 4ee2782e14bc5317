package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rmacdonaldsmith/georelay-go/pkg/relayclient"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	serverURL string
	clientID  string
	token     string
	timeout   time.Duration

	// Global client instance
	client *relayclient.Client
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "georelay-cli",
		Short: "GeoRelay HTTP API command line interface",
		Long: `georelay-cli is a command line interface for the GeoRelay HTTP API.
The server URL's hostname selects the scope: point it at a geohash subdomain
(for example http://drt2z.relay.example) to work inside that partition, or at
the base domain for the root partition.`,
		PersistentPreRunE: initializeClient,
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "GeoRelay server URL (hostname selects the scope)")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "georelay-cli", "Client ID for authentication")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "JWT token (if already authenticated)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	// Add subcommands
	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newPublishCommand())
	rootCmd.AddCommand(newQueryCommand())
	rootCmd.AddCommand(newStreamCommand())
	rootCmd.AddCommand(newHealthCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initializeClient sets up the HTTP client with global configuration
func initializeClient(cmd *cobra.Command, args []string) error {
	// Skip client initialization for help commands
	if cmd.Name() == "help" || cmd.Parent() == nil {
		return nil
	}

	config := relayclient.Config{
		ServerURL: serverURL,
		ClientID:  clientID,
		Timeout:   timeout,
	}

	var err error
	client, err = relayclient.NewClient(config)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if token != "" {
		client.SetToken(token)
	}
	return nil
}
