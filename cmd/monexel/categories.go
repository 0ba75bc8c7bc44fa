package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"monexel/internal/ui"
)

func categoriesCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "List global and custom expense categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.app.Session.Current()
			if err != nil {
				return err
			}
			cats, err := rt.app.Selector.Visible(cmd.Context(), s.UserID)
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.out(), ui.Categories(cats))
			return nil
		},
	}

	var description string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.app.Session.Current()
			if err != nil {
				return err
			}
			_, err = rt.app.Selector.AddCustom(cmd.Context(), s.UserID, args[0], description)
			return err
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "Category description")
	cmd.AddCommand(add)
	return cmd
}

func usersCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Show how many users are registered",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := rt.app.Session.Current(); err != nil {
				return err
			}
			users, err := rt.app.Users.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.out(), "%d registered users\n", len(users))
			return nil
		},
	}
}
