// Package rdp turns a connection profile into the argument vector of an RDP
// client program.
package rdp

import (
	"github.com/robled/rocket-depot/internal/config"
)

// ClientSpec describes the command line dialect of one client.
//
// Flags ending in ':' take their value in the same token ("/u:alice"); other
// flags take it as the next token ("-u", "alice").
type ClientSpec struct {
	Client       config.Client
	Base         []string // always present; Base[0] is the binary
	User         string
	Geometry     string
	HomeShare    string // printf format, %s is the local home directory
	GrabKeyboard string // appended when keyboard grabbing is turned off
	Fullscreen   string
	Host         string // empty means the host is a bare positional argument
	DocsURL      string
}

var builtin = map[config.Client]ClientSpec{
	config.ClientXFreeRDP: {
		Client:       config.ClientXFreeRDP,
		Base:         []string{"xfreerdp", "+clipboard"},
		User:         "/u:",
		Geometry:     "/size:",
		HomeShare:    "/drive:home,%s",
		GrabKeyboard: "-grab-keyboard",
		Fullscreen:   "/f",
		Host:         "/v:",
		DocsURL:      "https://github.com/FreeRDP/FreeRDP/wiki/CommandLineInterface",
	},
	// rdesktop also accepts "-uUSER" and "-gWxH"; the value goes in its own
	// token so it is never merged with the flag letter.
	config.ClientRdesktop: {
		Client:       config.ClientRdesktop,
		Base:         []string{"rdesktop", "-a16"},
		User:         "-u",
		Geometry:     "-g",
		HomeShare:    "-rdisk:home=%s",
		GrabKeyboard: "-K",
		Fullscreen:   "-f",
		DocsURL:      "http://linux.die.net/man/1/rdesktop",
	},
}

// SpecFor returns the command line dialect for client.
func SpecFor(client config.Client) (ClientSpec, bool) {
	spec, ok := builtin[client]
	if !ok {
		return ClientSpec{}, false
	}
	spec.Base = append([]string(nil), spec.Base...)
	return spec, true
}

// Binary returns the executable name for client.
func (s ClientSpec) Binary() string {
	if len(s.Base) == 0 {
		return ""
	}
	return s.Base[0]
}

// appendFlag adds flag and value in the client's style.
func appendFlag(args []string, flag, value string) []string {
	if flag == "" {
		return append(args, value)
	}
	if flag[len(flag)-1] == ':' {
		return append(args, flag+value)
	}
	return append(args, flag, value)
}
