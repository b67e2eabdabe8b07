package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"inkwell/internal/session"
)

func printSession(c *cli, cmd *cobra.Command, s session.Session) error {
	w := cmd.OutOrStdout()
	if ok, err := c.printJSON(w, s.User); ok {
		return err
	}
	if !s.IsAuthenticated() {
		fmt.Fprintln(w, "Not signed in.")
		return nil
	}
	fmt.Fprintf(w, "Signed in as %s (@%s, %s)\n", s.User.DisplayName, s.User.Username, s.User.Email)
	return nil
}

func newLoginCmd(c *cli) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.mgr.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return printSession(c, cmd, s)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newSignupCmd(c *cli) *cobra.Command {
	var name, username, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.mgr.Signup(cmd.Context(), name, username, email, password)
			if err != nil {
				return err
			}
			return printSession(c, cmd, s)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.mgr.Logout(cmd.Context())
			if err != nil {
				return err
			}
			return printSession(c, cmd, s)
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSession(c, cmd, c.mgr.Current())
		},
	}
}
