package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robled/rocket-depot/internal/config"
	"github.com/robled/rocket-depot/internal/rdp"
)

func newDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "docs [client]",
		Short: "Print where each client's command line options are documented",
		Long: `Print the documentation URL for the RDP clients. Use it to look up flags
for the --cli-options profile setting.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(config.ClientXFreeRDP), string(config.ClientRdesktop)},
		RunE: func(cmd *cobra.Command, args []string) error {
			clients := config.Clients
			if len(args) == 1 {
				c, err := config.ParseClient(args[0])
				if err != nil {
					return err
				}
				clients = []config.Client{c}
			}
			for _, c := range clients {
				spec, _ := rdp.SpecFor(c)
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", c, spec.DocsURL)
			}
			return nil
		},
	}
}
