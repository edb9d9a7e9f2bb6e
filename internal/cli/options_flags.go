package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/robled/rocket-depot/internal/config"
)

// Flag names shared by connect and profile save. Each maps to one key of a
// profile.
const (
	flagHost         = "host"
	flagUser         = "user"
	flagGeometry     = "geometry"
	flagClient       = "client"
	flagHomeShare    = "homeshare"
	flagGrabKeyboard = "grab-keyboard"
	flagFullscreen   = "fullscreen"
	flagCLIOptions   = "cli-options"
	flagTerminal     = "terminal"
)

func addOptionFlags(fs *pflag.FlagSet) {
	fs.String(flagHost, "", "Host name or IP address")
	fs.String(flagUser, "", `User name, DOMAIN\user accepted`)
	fs.String(flagGeometry, "", `Window size "WxH" or a monitor percentage such as "80%"`)
	fs.String(flagClient, "", "RDP client: xfreerdp or rdesktop")
	fs.Bool(flagHomeShare, false, "Share the local home directory")
	fs.Bool(flagGrabKeyboard, false, "Let the client grab the keyboard")
	fs.Bool(flagFullscreen, false, "Start full screen")
	fs.String(flagCLIOptions, "", "Extra client arguments, split like a shell would")
	fs.Bool(flagTerminal, false, "Run the client inside a terminal window")
}

// applyOptionFlags overwrites the fields of opts whose flags were given.
// Flags left at their zero value do not touch the profile.
func applyOptionFlags(fs *pflag.FlagSet, opts *config.Options) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case flagHost:
			opts.Host = f.Value.String()
		case flagUser:
			opts.User = f.Value.String()
		case flagGeometry:
			opts.Geometry = f.Value.String()
		case flagClient:
			var c config.Client
			if c, err = config.ParseClient(f.Value.String()); err == nil {
				opts.Program = c
			}
		case flagHomeShare:
			opts.HomeShare = f.Value.String() == "true"
		case flagGrabKeyboard:
			opts.GrabKeyboard = f.Value.String() == "true"
		case flagFullscreen:
			opts.Fullscreen = f.Value.String() == "true"
		case flagCLIOptions:
			opts.CLIOptions = f.Value.String()
		case flagTerminal:
			opts.Terminal = f.Value.String() == "true"
		}
	})
	if err != nil {
		return fmt.Errorf("--%s: %w", flagClient, err)
	}
	return nil
}

// resolveClient picks the client for a launch. A profile without a program
// uses xfreerdp.
func resolveClient(opts config.Options) (config.Client, error) {
	if strings.TrimSpace(string(opts.Program)) == "" {
		return config.ClientXFreeRDP, nil
	}
	return config.ParseClient(string(opts.Program))
}
