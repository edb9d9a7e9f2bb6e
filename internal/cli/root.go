// Package cli is the rocket-depot command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/robled/rocket-depot/internal/buildinfo"
	"github.com/robled/rocket-depot/internal/config"
	"github.com/robled/rocket-depot/internal/debug"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   buildinfo.Program,
		Short: "Launch RDP sessions from saved profiles",
		Long: `rocket-depot keeps named RDP connection profiles in an INI file and starts
xfreerdp or rdesktop for them. It watches the client for a few seconds and
reports whether the connection came up, showing the client's error output
when it did not.

Getting started:
  rocket-depot profile save work --host rdp.corp.example --user 'CORP\alice'
  rocket-depot connect work
  rocket-depot connect --host 10.0.0.5 --geometry 80% --dry-run
  rocket-depot doctor

Profiles live in ~/.config/rocket-depot/config.ini and can be edited by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileList(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.Bool("debug", false, "Write a debug log to ~/.config/rocket-depot/debug/")
	pf.String("config", "", "Profile file (default $"+envConfig+" or ~/.config/rocket-depot/config.ini)")
	pf.Bool("no-color", false, "Disable coloured output")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		noColor, _ := cmd.Flags().GetBool("no-color")
		setColor(wantColor(noColor))

		debugFlag, _ := cmd.Flags().GetBool("debug")
		if !debugFlag && !debug.ShouldEnableFromEnv() {
			return nil
		}
		logPath, err := debug.Init()
		if err != nil {
			return fmt.Errorf("initializing debug logger: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s[debug]%s logging to %s\n", colorDim, colorReset, logPath)
		bi := buildinfo.Current()
		debug.LogKV("cli", "starting",
			"version", bi.Version,
			"commit", bi.Commit,
			"pid", os.Getpid(),
			"command", cmd.CommandPath(),
			"args", args,
		)
		return nil
	}

	rootCmd.AddCommand(
		newConnectCmd(),
		newProfileCmd(),
		newFailuresCmd(),
		newDoctorCmd(),
		newDocsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command line and exits non-zero on error.
func Execute() {
	defer debug.Close()
	setColor(wantColor(false))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		debug.Logf("cli", "exit with error: %v", err)
		fmt.Fprintf(os.Stderr, "%sError: %s%s\n", colorRed, err, colorReset)
		stop()
		debug.Close()
		os.Exit(1)
	}
	debug.Log("cli", "exit success")
}

// environment is a seam for tests.
var environment = config.CurrentEnvironment
