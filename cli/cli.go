package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "powchain",
		Short:         "In-process proof-of-work blockchain mined by a worker pool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMineCommand())
	root.AddCommand(newDigestCommand())
	return root
}

func Run() error {
	return NewRootCommand().Execute()
}
