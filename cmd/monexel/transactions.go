package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"monexel/internal/core"
	"monexel/internal/form"
	"monexel/internal/tabs"
	"monexel/internal/ui"
)

// fieldFlags maps command-line flags onto form field names. A flag is only
// applied when the selected kind has that field.
var fieldFlags = []struct {
	flag, field, usage string
}{
	{"source", "source", "Income source"},
	{"title", "title", "Expense title"},
	{"from", "borrowedFrom", "Who the money was borrowed from"},
	{"amount", "amount", "Amount"},
	{"date", "date", "Date (YYYY-MM-DD)"},
	{"borrowed-date", "borrowedDate", "Borrowed date (YYYY-MM-DD)"},
	{"due-date", "dueDate", "Due date (YYYY-MM-DD)"},
	{"description", "description", "Income description"},
	{"category", "categoryId", "Expense category name or id"},
}

func addFieldFlags(cmd *cobra.Command) {
	for _, f := range fieldFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
}

// applyFieldFlags copies every changed flag onto the form. Category
// references are resolved to an id first.
func applyFieldFlags(cmd *cobra.Command, rt *runtime, fc *form.Controller, user core.UserID) error {
	names := make(map[string]bool)
	for _, f := range form.Fields(fc.Kind()) {
		names[f.Name] = true
	}
	for _, f := range fieldFlags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		if !names[f.field] {
			return fmt.Errorf("--%s does not apply to %s", f.flag, fc.Kind().Label())
		}
		value, _ := cmd.Flags().GetString(f.flag)
		if f.field == "categoryId" && value != "" {
			cat, err := rt.app.Selector.Resolve(cmd.Context(), user, value)
			if err != nil {
				return err
			}
			value = strconv.FormatInt(cat.ID, 10)
		}
		if err := fc.Set(f.field, value); err != nil {
			return err
		}
	}
	return nil
}

func kindArg(args []string) (core.Kind, error) {
	return core.ParseKind(args[0])
}

func idArg(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func addCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "add KIND",
		Short:     "Add an income, expense or borrowed money record",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"income", "expense", "borrowed"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			s, err := rt.app.RequireUser(cmd.Context())
			if err != nil {
				return err
			}
			fc, err := form.NewCreate(kind, rt.app.FormDeps())
			if err != nil {
				return err
			}
			if err := applyFieldFlags(cmd, rt, fc, s.UserID); err != nil {
				return err
			}
			if _, err := fc.Submit(cmd.Context()); err != nil {
				return err
			}
			return printKind(rt, kind)
		},
	}
	addFieldFlags(cmd)
	return cmd
}

func editCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit KIND ID",
		Short: "Edit a record from the current dashboard range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			id, err := idArg(args[1])
			if err != nil {
				return err
			}
			if err := loadDashboard(cmd, rt); err != nil {
				return err
			}
			t := rt.app.Tabs()
			if err := t.SetActive(kind); err != nil {
				return err
			}
			tx, ok := t.Find(id)
			if !ok {
				return fmt.Errorf("no %s with id %d in the current range", kind, id)
			}
			fc, err := t.Edit(tx)
			if err != nil {
				return err
			}
			if err := applyFieldFlags(cmd, rt, fc, rt.app.Dashboard.User()); err != nil {
				return err
			}
			if _, err := fc.Submit(cmd.Context()); err != nil {
				return err
			}
			return printKind(rt, kind)
		},
	}
	addFieldFlags(cmd)
	return cmd
}

func deleteCmd(rt *runtime) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete KIND ID",
		Short: "Delete a record after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			id, err := idArg(args[1])
			if err != nil {
				return err
			}
			if err := loadDashboard(cmd, rt); err != nil {
				return err
			}

			t := rt.app.Tabs()
			if yes {
				t = rt.app.TabsWithConfirmer(tabs.ConfirmFunc(func(string) bool { return true }))
			}
			if err := t.SetActive(kind); err != nil {
				return err
			}
			tx, ok := t.Find(id)
			if !ok {
				return fmt.Errorf("no %s with id %d in the current range", kind, id)
			}
			deleted, err := t.Delete(cmd.Context(), tx)
			if err != nil || !deleted {
				return err
			}
			return printKind(rt, kind)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func listCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:       "list KIND",
		Short:     "List records of one kind in the current dashboard range",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"income", "expense", "borrowed"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			if err := loadDashboard(cmd, rt); err != nil {
				return err
			}
			return printKind(rt, kind)
		},
	}
}

func printKind(rt *runtime, kind core.Kind) error {
	t := rt.app.Tabs()
	if err := t.SetActive(kind); err != nil {
		return err
	}
	fmt.Fprintln(rt.out(), ui.TransactionTable(kind, t.Rows()))
	return nil
}
