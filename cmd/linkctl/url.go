package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/gitbot-link/internal/auth"
)

func newURLCmd() *cobra.Command {
	var (
		discordID string
		siteURL   string
		clientID  string
		backend   string
	)

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the initiator link and the GitHub authorization URL for a discord id",
		Long: `Print the link the bot sends to a Discord user, and the GitHub authorization
URL that link redirects to.

The OAuth settings default to GITHUB_CLIENT_ID and BACKEND_BASE_URL, the same
variables the server reads. Signed state is never included: it is issued
per request by the running server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("discord") {
				return errors.New("--discord is required (pass --discord \"\" to preview the degraded flow)")
			}

			if siteURL != "" {
				link, err := auth.InitiatorURL(siteURL, discordID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "initiator:    %s\n", link)
			}

			redirect, err := auth.NewGitHubAuthorizer(clientID, backend).Authorize(discordID, "")
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "callback:     %s\n", redirect.RedirectURI)
			fmt.Fprintf(cmd.OutOrStdout(), "authorize:    %s\n", redirect.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&discordID, "discord", "", "Discord user id")
	cmd.Flags().StringVar(&siteURL, "site", os.Getenv("SITE_BASE_URL"), "Public base URL of this service (prints the bot-facing link)")
	cmd.Flags().StringVar(&clientID, "client-id", os.Getenv("GITHUB_CLIENT_ID"), "GitHub OAuth App client id")
	cmd.Flags().StringVar(&backend, "backend", os.Getenv("BACKEND_BASE_URL"), "Bot backend base URL")

	return cmd
}
