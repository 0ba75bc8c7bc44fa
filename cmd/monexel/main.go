package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"monexel/internal/cli"
	"monexel/internal/core"
)

var Version = "dev"

// runtime carries the bootstrapped App from the root pre-run hook into the
// subcommands.
type runtime struct {
	streams  cli.Streams
	envFile  string
	logLevel string
	app      *cli.App
}

func main() {
	streams := cli.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	if err := run(os.Args[1:], streams); err != nil {
		var verr *core.ValidationError
		if !errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// run executes one command line. The bootstrapped App is closed even when
// the command fails, which cobra's post-run hooks do not cover.
func run(args []string, streams cli.Streams) (err error) {
	rt := &runtime{streams: streams}
	root := newRootCmd(rt)
	root.SetArgs(args)
	defer func() {
		if rt.app == nil {
			return
		}
		if cerr := rt.app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return root.Execute()
}

func newRootCmd(rt *runtime) *cobra.Command {
	streams := rt.streams
	root := &cobra.Command{
		Use:           "monexel",
		Short:         "Monexel - track income, expenses and borrowed money from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipBootstrap(cmd) {
				return nil
			}
			return rt.bootstrap(cmd)
		},
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	root.PersistentFlags().StringVar(&rt.envFile, "env-file", "", "Load environment from this file instead of ./.env")
	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(loginCmd(rt))
	root.AddCommand(logoutCmd(rt))
	root.AddCommand(registerCmd(rt))
	root.AddCommand(whoamiCmd(rt))
	root.AddCommand(profileCmd(rt))
	root.AddCommand(passwordCmd(rt))
	root.AddCommand(dashboardCmd(rt))
	root.AddCommand(reportCmd(rt))
	root.AddCommand(addCmd(rt))
	root.AddCommand(editCmd(rt))
	root.AddCommand(deleteCmd(rt))
	root.AddCommand(listCmd(rt))
	root.AddCommand(categoriesCmd(rt))
	root.AddCommand(usersCmd(rt))

	return root
}

func skipBootstrap(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", "__complete":
			return true
		}
	}
	return false
}

func (rt *runtime) bootstrap(cmd *cobra.Command) error {
	var files []string
	if rt.envFile != "" {
		files = append(files, rt.envFile)
	}
	if err := cli.LoadEnvFile(files...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	level := rt.logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	logger := cli.SetupLogger(rt.streams.Err, level)

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return err
	}
	if rt.logLevel != "" {
		cfg.LogLevel = rt.logLevel
	}

	app, err := cli.Bootstrap(cmd.Context(), cfg, logger, rt.streams)
	if err != nil {
		return err
	}
	rt.app = app
	return nil
}

func (rt *runtime) out() io.Writer { return rt.streams.Out }
