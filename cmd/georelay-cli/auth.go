package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with the GeoRelay server",
		Long: `Authenticate with the GeoRelay server using your client ID.
This generates a JWT token for subsequent requests. Only needed against
relays configured to require authenticated reads or writes.`,
		RunE: runAuth,
	}

	return cmd
}

func runAuth(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Printf("Authenticating with server %s as client %s...\n", serverURL, clientID)

	err := client.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	token := client.GetToken()
	fmt.Printf("✅ Authentication successful!\n")
	fmt.Printf("Token: %s\n", token)
	fmt.Printf("\nYou can now use other commands or save this token for future use:\n")
	fmt.Printf("  export GEORELAY_TOKEN=\"%s\"\n", token)
	fmt.Printf("  georelay-cli --token \"$GEORELAY_TOKEN\" publish --content \"hello\"\n")

	return nil
}
