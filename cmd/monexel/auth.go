package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"monexel/internal/core"
	"monexel/internal/session"
	"monexel/internal/ui"
)

func loginCmd(rt *runtime) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and start a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = rt.app.Prompter.Ask("Email:"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = rt.app.Prompter.Ask("Password:"); err != nil {
					return err
				}
			}
			s, err := rt.app.Account.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.out(), "Signed in as %s (id %s)\n", s.Email, s.UserID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

func logoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.app.Account.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(rt.out(), "Signed out")
			return nil
		},
	}
}

func registerCmd(rt *runtime) *cobra.Command {
	var r core.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := rt.app.Account.Register(cmd.Context(), r)
			if err != nil {
				return err
			}
			if u.ID != 0 {
				fmt.Fprintf(rt.out(), "Registered %s (id %s)\n", u.Email, u.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&r.Name, "name", "", "Full name (letters and spaces)")
	cmd.Flags().StringVar(&r.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&r.PhoneNumber, "phone", "", "Phone number (10 digits)")
	cmd.Flags().StringVar(&r.Password, "password", "", "Password")
	cmd.Flags().StringVar(&r.Role, "role", "", "Role assigned by the server when empty")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("phone")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func whoamiCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.app.Session.Current()
			if errors.Is(err, session.ErrNotSignedIn) {
				fmt.Fprintln(rt.out(), "Not signed in")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.out(), "%s (id %s)\n", s.Email, s.UserID)
			if !s.ExpiresAt.IsZero() {
				fmt.Fprintf(rt.out(), "Session expires %s\n", s.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func profileCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := rt.app.Account.Profile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.out(), ui.Profile(u))
			return nil
		},
	}

	var name, phone string
	update := &cobra.Command{
		Use:   "update",
		Short: "Update name and phone number",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := rt.app.Account.Profile(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				u.Name = name
			}
			if cmd.Flags().Changed("phone") {
				u.PhoneNumber = phone
			}
			saved, err := rt.app.Account.UpdateProfile(ctx, u)
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.out(), ui.Profile(saved))
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "New name")
	update.Flags().StringVar(&phone, "phone", "", "New phone number")
	cmd.AddCommand(update)
	return cmd
}

func passwordCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage the account password",
	}

	var email, newPassword string
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if newPassword == "" {
				if newPassword, err = rt.app.Prompter.Ask("New password:"); err != nil {
					return err
				}
			}
			return rt.app.Account.ResetPassword(cmd.Context(), email, newPassword)
		},
	}
	reset.Flags().StringVar(&email, "email", "", "Account email")
	reset.Flags().StringVar(&newPassword, "new-password", "", "New password (prompted when omitted)")
	_ = reset.MarkFlagRequired("email")
	cmd.AddCommand(reset)
	return cmd
}
