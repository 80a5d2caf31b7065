package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the scholarly version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("scholarly %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
		},
	}

	return cmd
}
