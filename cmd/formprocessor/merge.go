package main

import (
	"fmt"

	"github.com/marqusG/FormProcessor/filelist"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	. "github.com/streamingfast/cli"
	"github.com/streamingfast/cli/sflags"
)

var mergeCmd = Command(mergeE,
	"merge <existing> [<uploaded>]",
	"Prints the file list resulting from an upload batch saved over an existing list",
	Description(`
		Both lists are ';' separated file names. Uploaded names supersede existing ones,
		the file given with --default is moved first when it is part of the result.

		Example:
			formprocessor merge "a.png;b.png" "b.png;c.png" --default c.png
	`),
	RangeArgs(1, 2),
	Flags(func(flags *pflag.FlagSet) {
		flags.String("default", "", "File name to put first in the resulting list")
	}),
)

func mergeE(cmd *cobra.Command, args []string) error {
	var uploaded filelist.List
	if len(args) > 1 {
		uploaded = filelist.Parse(args[1])
	}

	fmt.Println(filelist.Merge(args[0], uploaded, sflags.MustGetString(cmd, "default")))
	return nil
}
