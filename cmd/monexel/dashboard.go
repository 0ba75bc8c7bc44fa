package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"monexel/internal/cli"
	"monexel/internal/core"
	"monexel/internal/ui"
)

var errNoRange = errors.New("no date range set; run 'monexel dashboard range START END'")

func dashboardCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the summary and transactions for the selected range",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showDashboard(cmd, rt)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the dashboard (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showDashboard(cmd, rt)
		},
	})
	cmd.AddCommand(rangeCmd(rt))
	cmd.AddCommand(watchCmd(rt))
	return cmd
}

// loadDashboard fetches the stored range for the signed-in user.
func loadDashboard(cmd *cobra.Command, rt *runtime) error {
	err := rt.app.LoadDashboard(cmd.Context())
	if errors.Is(err, core.ErrRangeIncomplete) {
		return errNoRange
	}
	return err
}

func showDashboard(cmd *cobra.Command, rt *runtime) error {
	if err := loadDashboard(cmd, rt); err != nil {
		return err
	}
	fmt.Fprintln(rt.out(), ui.Dashboard(rt.app.Dashboard.Snapshot(), rt.app.Dashboard.Range(), rt.app.Config.CurrencySymbol))
	return nil
}

func rangeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "range START [END]",
		Short: "Set the dashboard date range (YYYY-MM-DD); END defaults to START",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			start, err := core.ParseDate(args[0])
			if err != nil {
				return err
			}
			end := start
			if len(args) == 2 {
				if end, err = core.ParseDate(args[1]); err != nil {
					return err
				}
			}
			if _, err := rt.app.RequireUser(ctx); err != nil {
				return err
			}
			if err := rt.app.Dashboard.SetRange(ctx, start, end); err != nil {
				return err
			}
			fmt.Fprintln(rt.out(), ui.Dashboard(rt.app.Dashboard.Snapshot(), rt.app.Dashboard.Range(), rt.app.Config.CurrencySymbol))
			return nil
		},
	}
}

func watchCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload the dashboard on the REFRESH_SCHEDULE until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := rt.app.RequireUser(cmd.Context()); err != nil {
				return err
			}
			if !rt.app.Dashboard.Range().Complete() {
				return errNoRange
			}

			ctx, done := cli.GracefulShutdown(cmd.Context(), rt.app.Logger, 5*time.Second, nil)
			render := func(snap core.Snapshot) {
				fmt.Fprintf(rt.out(), "\n%s\n", ui.Dashboard(snap, rt.app.Dashboard.Range(), rt.app.Config.CurrencySymbol))
			}
			err := rt.app.Watch(ctx, render)
			<-done
			return err
		},
	}
}

func reportCmd(rt *runtime) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Total income, expense and borrowed money for a range",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rt.app.Session.Current()
			if err != nil {
				return err
			}
			rng := rt.app.Session.Range()
			if start != "" {
				if rng.Start, err = core.ParseDate(start); err != nil {
					return err
				}
			}
			if end != "" {
				if rng.End, err = core.ParseDate(end); err != nil {
					return err
				}
			}
			if !rng.Complete() {
				return errNoRange
			}
			r, err := rt.app.Reports.Build(cmd.Context(), s.UserID, rng)
			if err != nil {
				return err
			}
			fmt.Fprintln(rt.out(), ui.Report(r, rt.app.Config.CurrencySymbol))
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Start date (defaults to the dashboard range)")
	cmd.Flags().StringVar(&end, "end", "", "End date (defaults to the dashboard range)")
	return cmd
}
