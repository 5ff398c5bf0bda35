package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"

	"github.com/fyrsmithlabs/interviewd/internal/config"
	"github.com/fyrsmithlabs/interviewd/internal/googleauth"
)

// authScopes covers everything the daemon touches: reading replies
// and creating calendar events.
var authScopes = []string{gmail.GmailReadonlyScope, calendar.CalendarEventsScope}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize Gmail and Calendar access",
	Long: `Run the one-time OAuth consent flow and store the resulting token
at the configured token path. The daemon refuses to start until this
has been done once.

Example:
  recruiterctl auth`,
	RunE: runAuth,
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	authURL, err := googleauth.AuthURL(cfg.Google, authScopes...)
	if err != nil {
		return err
	}

	fmt.Println("Open this URL in a browser and authorize access:")
	fmt.Printf("\n  %s\n\n", authURL)
	fmt.Print("Paste the authorization code here: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("no authorization code provided")
	}

	if err := googleauth.Exchange(cmd.Context(), cfg.Google, code, authScopes...); err != nil {
		return err
	}

	fmt.Printf("Token saved to %s\n", cfg.Google.TokenPath)
	return nil
}
