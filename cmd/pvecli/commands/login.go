package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/virtstack-io/pve-client/pkg/pve"
	"github.com/virtstack-io/pve-client/pkg/pveclient"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		endpoint string
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a Proxmox VE cluster",
		Long:  "Authenticate against a Proxmox VE API endpoint and persist the issued ticket",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadCLIConfig()

			if endpoint == "" {
				endpoint = resolveEndpoint(config)
			}

			if endpoint == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("API endpoint: ")
				endpoint, _ = reader.ReadString('\n')
				endpoint = strings.TrimSpace(endpoint)
			}

			if endpoint == "" {
				return ErrEndpointMissing
			}

			if username == "" {
				username = config.Username
			}

			if username == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Username (user@realm): ")
				username, _ = reader.ReadString('\n')
				username = strings.TrimSpace(username)
			}

			if password == "" {
				password = viper.GetString("password")
			}

			if password == "" {
				fmt.Print("Password: ")
				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(bytePassword)
				fmt.Println()
			}

			skipTLS := viper.GetBool("skip-tls-verify") || config.SkipTLSVerify

			client, err := pveclient.New(context.Background(), &pve.Config{
				BaseURL:       endpoint,
				Username:      username,
				Password:      password,
				SkipTLSVerify: skipTLS,
				Debug:         viper.GetBool("debug"),
			})
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			ticket, err := client.Login(context.Background())
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			// Persist endpoint, username, and the issued ticket. The
			// password is never written to disk.
			config.Endpoint = endpoint
			config.Username = ticket.Username
			config.SkipTLSVerify = skipTLS
			config.Ticket = ticket.Ticket
			config.CSRFToken = ticket.CSRFPreventionToken
			config.IssuedAt = time.Now()

			if err := saveCLIConfig(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Successfully logged in to %s as %s\n", endpoint, ticket.Username)
			if ticket.ClusterName != "" {
				fmt.Printf("Cluster: %s\n", ticket.ClusterName)
			}

			return nil
		},
	}

	// Add flags
	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "API endpoint URL")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username including realm (e.g. root@pam)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from the Proxmox VE cluster",
		Long:  "Drop the persisted session ticket",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadCLIConfig()

			config.Ticket = ""
			config.CSRFToken = ""
			config.IssuedAt = time.Time{}

			if err := saveCLIConfig(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Println("Successfully logged out")

			return nil
		},
	}
}
