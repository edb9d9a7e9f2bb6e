package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robled/rocket-depot/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Current().String())
			return nil
		},
	}
}
