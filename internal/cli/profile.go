package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robled/rocket-depot/internal/config"
)

func newProfileCmd() *cobra.Command {
	profileCmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles", "p"},
		Short:   "Manage connection profiles",
		Long: `List, show, save and delete connection profiles.

The "defaults" profile always exists. It is used by "connect" when no
profile is named and cannot be deleted.

Examples:
  rocket-depot profile list
  rocket-depot profile show work
  rocket-depot profile save work --host rdp.corp.example --geometry 80%
  rocket-depot profile save defaults --client rdesktop
  rocket-depot profile delete work`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List profiles",
		Args:    cobra.NoArgs,
		RunE:    runProfileList,
	}

	showCmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show a profile and the command it would run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProfileShow,
	}

	saveCmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Create or update a profile",
		Long: `Create or update a profile. A new profile starts from the defaults
profile; an existing one keeps every value whose flag is not given.`,
		Args: cobra.ExactArgs(1),
		RunE: runProfileSave,
	}
	addOptionFlags(saveCmd.Flags())

	deleteCmd := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a profile",
		Args:    cobra.ExactArgs(1),
		RunE:    runProfileDelete,
	}

	profileCmd.AddCommand(listCmd, showCmd, saveCmd, deleteCmd)
	return profileCmd
}

func runProfileList(cmd *cobra.Command, args []string) error {
	env := environment()
	store, err := openStore(cmd, env)
	if err != nil {
		return err
	}
	names, err := store.List()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		opts, err := store.Load(name)
		if err != nil {
			return err
		}
		client := string(opts.Program)
		if client == "" {
			client = string(config.ClientXFreeRDP) + "*"
		}
		rows = append(rows, []string{accent(name), truncate(opts.Host, 32), truncate(opts.User, 24), opts.Geometry, client})
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Profiles")
	printTable(out, []string{"NAME", "HOST", "USER", "GEOMETRY", "CLIENT"}, rows)
	fmt.Fprintf(out, "\n%s\n", muted("Config: "+store.Path()))
	fmt.Fprintf(out, "Connect with %srocket-depot connect <name>%s\n", styleBoldWhite, colorReset)
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	env := environment()
	store, err := openStore(cmd, env)
	if err != nil {
		return err
	}
	name := config.DefaultsSection
	if len(args) == 1 {
		name = args[0]
	}
	opts, err := store.Load(name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Profile "+name)
	printField(out, "Host", opts.Host)
	printField(out, "User", opts.User)
	printField(out, "Geometry", opts.Geometry)
	printField(out, "Client", string(opts.Program))
	printField(out, "Home share", yesNo(opts.HomeShare))
	printField(out, "Grab keyboard", yesNo(opts.GrabKeyboard))
	printField(out, "Fullscreen", yesNo(opts.Fullscreen))
	printField(out, "CLI options", opts.CLIOptions)
	printField(out, "Terminal", yesNo(opts.Terminal))

	client, err := resolveClient(opts)
	if err != nil {
		printField(out, "Command", badge("error")+" "+err.Error())
		return nil
	}
	spec, err := buildSpec(cmd, env, opts, client)
	if err != nil {
		printField(out, "Command", badge("error")+" "+err.Error())
		return nil
	}
	printField(out, "Command", spec.String())
	return nil
}

func runProfileSave(cmd *cobra.Command, args []string) error {
	env := environment()
	store, err := openStore(cmd, env)
	if err != nil {
		return err
	}
	name := args[0]
	if err := config.ValidateProfileName(name); err != nil {
		return err
	}

	base := config.DefaultsSection
	created := !store.Exists(name)
	if !created {
		base = name
	}
	opts, err := store.Load(base)
	if err != nil {
		return err
	}
	if err := applyOptionFlags(cmd.Flags(), &opts); err != nil {
		return err
	}
	if err := store.Save(name, opts); err != nil {
		return err
	}

	verb := "Updated"
	if created {
		verb = "Created"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s profile %s in %s\n", verb, accent(name), store.Path())
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	env := environment()
	store, err := openStore(cmd, env)
	if err != nil {
		return err
	}
	if err := store.Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %s\n", accent(args[0]))
	return nil
}
