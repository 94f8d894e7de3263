package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if short {
				_, _ = fmt.Fprintln(out, version)
				return
			}
			_, _ = fmt.Fprintf(out, "vodcast version %s\n", version)
			_, _ = fmt.Fprintf(out, "  commit:   %s\n", commit)
			_, _ = fmt.Fprintf(out, "  built:    %s\n", date)
			_, _ = fmt.Fprintf(out, "  go:       %s\n", runtime.Version())
			_, _ = fmt.Fprintf(out, "  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")

	return cmd
}
