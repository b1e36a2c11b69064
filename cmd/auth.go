package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fitsync/fitsync/internal/apiclient"
	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/output"
	"github.com/fitsync/fitsync/internal/store"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
}

var authLoginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Log in and store the API token",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var email string
		if len(args) == 1 {
			email = args[0]
		} else {
			fmt.Print("Email: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			email = strings.TrimSpace(line)
		}

		fmt.Print("Password: ")
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return err
		}

		client := apiclient.New(config.GetServerURL())
		client.SetLocale(config.GetLocale())
		resp, err := client.Login(cmd.Context(), email, string(pw))
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}

		if err := config.SaveAuth(&config.AuthCredentials{
			Token:     resp.Token,
			UserID:    resp.Profile.ID,
			Email:     resp.Profile.Email,
			ServerURL: config.GetServerURL(),
		}); err != nil {
			return err
		}

		// Cache the profile so goal defaults are available offline.
		if dir, err := config.DataDir(); err == nil {
			if st, err := store.Open(dir); err == nil {
				if err := st.UpsertProfile(&resp.Profile); err != nil {
					output.Warning("could not cache profile: %v", err)
				}
				st.Close()
			}
		}

		output.Success("logged in as %s", resp.Profile.Email)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ClearAuth(); err != nil {
			return err
		}
		output.Success("logged out")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := config.LoadAuth()
		if err != nil {
			return err
		}
		if creds == nil {
			output.Info("not logged in")
			return nil
		}
		fmt.Printf("%s (%s)\n", creds.Email, creds.ServerURL)
		return nil
	},
}

func init() {
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
