package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/robled/rocket-depot/internal/failedlaunch"
)

func newFailuresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "failures",
		Short: "Show recent failed connection attempts",
		Long: `Show the failure journal, newest first. Each failed attempt is stored as a
JSON file under ~/.config/rocket-depot/failed-launches/.`,
		Args: cobra.NoArgs,
		RunE: runFailures,
	}
	cmd.Flags().IntP("limit", "n", 10, "Number of entries to show (0 for all)")
	cmd.Flags().BoolP("verbose", "v", false, "Show the full command and error text")
	return cmd
}

func runFailures(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("--limit must be 0 or more")
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	journal := openJournal(environment())
	records, err := journal.List(limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Failed launches")
	if verbose {
		for _, rec := range records {
			printRecord(cmd, rec)
		}
		if len(records) == 0 {
			fmt.Fprintln(out, colorDim+"  (none)"+colorReset)
		}
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			badge(string(rec.Kind)),
			rec.Profile,
			rec.Host,
			exitCodeText(rec),
			truncate(firstLine(rec.ErrorText), 48),
		})
	}
	printTable(out, []string{"WHEN", "KIND", "PROFILE", "HOST", "EXIT", "ERROR"}, rows)
	fmt.Fprintf(out, "\n%s\n", muted("Journal: "+journal.Dir()))
	return nil
}

func printRecord(cmd *cobra.Command, rec failedlaunch.Record) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	printField(out, "ID", muted(rec.ID))
	printField(out, "When", rec.RecordedAt.Local().Format("2006-01-02 15:04:05"))
	printField(out, "Kind", badge(string(rec.Kind)))
	printField(out, "Profile", rec.Profile)
	printField(out, "Host", rec.Host)
	printField(out, "Client", rec.Client)
	printField(out, "Exit code", exitCodeText(rec))
	printField(out, "Command", muted(rec.Command))
	printField(out, "Error", rec.Error)
	if rec.ErrorText != "" {
		printField(out, "Output", rec.ErrorText)
	}
}

func exitCodeText(rec failedlaunch.Record) string {
	if rec.ExitCode == nil {
		return "-"
	}
	return strconv.Itoa(*rec.ExitCode)
}
