package cli

import (
	"fmt"
	"powchain/digest"

	"github.com/spf13/cobra"
)

func newDigestCommand() *cobra.Command {
	var algorithm string
	cmd := &cobra.Command{
		Use:   "digest <text...>",
		Short: "Print the hex digest of each argument",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := digest.ParseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range args {
				fmt.Fprintf(out, "%s  %q\n", alg.Sum([]byte(s)), s)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&algorithm, "algorithm", string(digest.DEFAULT), "hash algorithm (sha256, sha3-256, blake2b-256)")
	return cmd
}
