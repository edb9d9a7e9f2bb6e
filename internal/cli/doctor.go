package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robled/rocket-depot/internal/detect"
	"github.com/robled/rocket-depot/internal/display"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the programs and files connections depend on",
		Long: `Report which RDP clients are installed, whether the terminal used for
interactive launches and xrandr are available, and where the profile file,
FreeRDP known hosts file and failure journal live.`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	env := environment()
	out := cmd.OutOrStdout()

	term, err := terminalPrefix()
	if err != nil {
		return err
	}
	found := detect.Scan(cmd.Context(), detect.Tools(term))

	printHeader(out, "Programs")
	rows := make([][]string, 0, len(found))
	clients := 0
	for _, d := range found {
		status := "found"
		if !d.Found {
			status = "missing"
		} else if d.Role == detect.RoleClient {
			clients++
		}
		rows = append(rows, []string{d.Name, string(d.Role), badge(status), d.Version, d.Path})
	}
	printTable(out, []string{"NAME", "ROLE", "STATUS", "VERSION", "PATH"}, rows)

	printHeader(out, "Files")
	path := configPath(cmd, env)
	printField(out, "Profiles", path+" "+fileStatus(path))
	kh := knownHostsPath(env)
	printField(out, "Known hosts", kh+" "+fileStatus(kh))
	printField(out, "Failures", openJournal(env).Dir())

	printHeader(out, "Display")
	if mon, err := display.Probe(cmd.Context()); err != nil {
		printField(out, "Monitor", badge("missing")+" "+err.Error())
	} else {
		printField(out, "Monitor", mon.String())
	}

	if clients == 0 {
		return fmt.Errorf("no RDP client found: install xfreerdp or rdesktop")
	}
	return nil
}

func fileStatus(path string) string {
	if _, err := os.Stat(path); err != nil {
		return badge("missing")
	}
	return badge("found")
}
