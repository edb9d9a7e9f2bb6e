package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/robled/rocket-depot/internal/config"
	"github.com/robled/rocket-depot/internal/debug"
	"github.com/robled/rocket-depot/internal/detect"
	"github.com/robled/rocket-depot/internal/display"
	"github.com/robled/rocket-depot/internal/failedlaunch"
	"github.com/robled/rocket-depot/internal/launch"
	"github.com/robled/rocket-depot/internal/rdp"
)

func newConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connect [profile]",
		Aliases: []string{"c"},
		Short:   "Start an RDP session",
		Long: `Load a profile (the defaults profile when none is named), apply any
option flags on top of it and start the RDP client.

The client is watched for a few seconds. If it is still running, or exited
cleanly, the connection counts as made. Otherwise its error output is shown
and the attempt is written to the failure journal.

Examples:
  rocket-depot connect work
  rocket-depot connect --host 10.0.0.5 --user 'CORP\alice' --geometry 80%
  rocket-depot connect work --fullscreen --save
  rocket-depot connect work --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConnect,
	}

	fs := cmd.Flags()
	addOptionFlags(fs)
	fs.String("monitor", "", `Monitor size "WxH" for percentage geometries (skips xrandr)`)
	fs.Bool("dry-run", false, "Print the command instead of running it")
	fs.Bool("save", false, "Store the option flags in the profile before connecting")
	fs.Bool("wait", false, "Keep running until the client exits")
	fs.Duration("window", launch.DefaultWindow, "How long the client must keep running to count as connected")
	_ = fs.MarkHidden("window")
	return cmd
}

func runConnect(cmd *cobra.Command, args []string) error {
	env := environment()
	store, err := openStore(cmd, env)
	if err != nil {
		return err
	}

	profile := config.DefaultsSection
	if len(args) == 1 {
		profile = args[0]
	}
	opts, err := store.Load(profile)
	if err != nil {
		return err
	}
	if err := applyOptionFlags(cmd.Flags(), &opts); err != nil {
		return err
	}
	client, err := resolveClient(opts)
	if err != nil {
		return err
	}

	spec, err := buildSpec(cmd, env, opts, client)
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := store.Save(profile, opts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s\n", accent(profile))
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		printDryRun(cmd, spec)
		return nil
	}

	attempt := failedlaunch.Attempt{Profile: profile, Host: strings.TrimSpace(opts.Host), Spec: spec}
	journal := openJournal(env)

	if _, ok := detect.LookPath(spec.Argv[0]); !ok {
		err := fmt.Errorf("%w: %s is not installed or not on PATH (see 'rocket-depot doctor')", launch.ErrLaunchFailed, spec.Argv[0])
		recordFailure(cmd, journal, err, attempt)
		return err
	}

	window, _ := cmd.Flags().GetDuration("window")
	return runLaunch(cmd, spec, attempt, journal, launch.WithWindow(window))
}

// buildSpec resolves the monitor, terminal and known-hosts inputs and builds
// the argument vector.
func buildSpec(cmd *cobra.Command, env config.Environment, opts config.Options, client config.Client) (rdp.LaunchSpec, error) {
	monitor := func() (display.Monitor, error) {
		return display.Probe(cmd.Context())
	}
	if m, _ := cmd.Flags().GetString("monitor"); strings.TrimSpace(m) != "" {
		mon, err := display.ParseMonitor(m)
		if err != nil {
			return rdp.LaunchSpec{}, fmt.Errorf("--monitor: %w", err)
		}
		monitor = func() (display.Monitor, error) { return mon, nil }
	}

	term, err := terminalPrefix()
	if err != nil {
		return rdp.LaunchSpec{}, err
	}

	spec, err := rdp.BuildLaunchSpec(opts, client, rdp.Env{
		HomeDir:        env.HomeDir,
		KnownHostsPath: knownHostsPath(env),
		Terminal:       term,
		Monitor:        monitor,
	})
	if err != nil {
		return rdp.LaunchSpec{}, err
	}
	debug.LogKV("cli", "launch spec built", "client", client, "wrapped", spec.Wrapped, "reasons", spec.WrapReasons)
	return spec, nil
}

func printDryRun(cmd *cobra.Command, spec rdp.LaunchSpec) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, spec.String())
	if spec.Wrapped {
		reasons := make([]string, 0, len(spec.WrapReasons))
		for _, r := range spec.WrapReasons {
			reasons = append(reasons, string(r))
		}
		fmt.Fprintf(out, "%s# wrapped in a terminal: %s%s\n", colorDim, strings.Join(reasons, ", "), colorReset)
	}
}

// runLaunch starts the client and blocks until the supervisor has an
// answer. Notifications are queued and run here, on the command goroutine.
func runLaunch(cmd *cobra.Command, spec rdp.LaunchSpec, attempt failedlaunch.Attempt, journal *failedlaunch.Journal, opts ...launch.Option) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	queue := make(chan func(), 1)
	opts = append(opts, launch.WithDispatcher(func(f func()) { queue <- f }))
	sup := launch.New(opts...)

	var res launch.Result
	h, err := sup.Launch(spec, func(r launch.Result) { res = r })
	if err != nil {
		recordFailure(cmd, journal, err, attempt)
		return err
	}
	fmt.Fprintf(out, "%s Connecting to %s with %s...\n", badge(launch.Launching.String()), accent(attempt.Host), spec.Client)

	select {
	case notify := <-queue:
		notify()
	case <-ctx.Done():
		return fmt.Errorf("stopped waiting for %s (pid %d keeps running): %w", spec.Client, h.PID(), ctx.Err())
	}

	if !res.OK() {
		attempt.Result = &res
		recordFailure(cmd, journal, res.Err, attempt)
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "%s %sConnection error%s\n", badge(launch.Failed.String()), colorBold, colorReset)
		fmt.Fprintf(errOut, "%s:\n%s\n", spec.Client, strings.TrimRight(res.ErrorText, "\n"))
		return fmt.Errorf("connection to %s failed (exit code %d): %w", attempt.Host, res.ExitCode, launch.ErrClientExited)
	}

	if res.Exited {
		fmt.Fprintf(out, "%s %s exited cleanly after %s\n", badge("ok"), spec.Client, res.Duration.Truncate(time.Millisecond))
		return nil
	}
	fmt.Fprintf(out, "%s %s is running (pid %d)\n", badge("connected"), spec.Client, h.PID())

	if wait, _ := cmd.Flags().GetBool("wait"); wait {
		select {
		case <-h.Exited():
			fmt.Fprintf(out, "%s session ended\n", badge("ok"))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func recordFailure(cmd *cobra.Command, journal *failedlaunch.Journal, err error, attempt failedlaunch.Attempt) {
	if _, path, rerr := journal.Record(err, attempt); rerr != nil {
		warn(cmd.ErrOrStderr(), "could not record failed launch: %v", rerr)
	} else if path != "" {
		debug.LogKV("cli", "failure recorded", "path", path)
	}
}
