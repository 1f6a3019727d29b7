package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the store's data files and prune stale fncache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			report, err := r.Verify()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d data file(s), %d byte(s)\n", report.Files, report.Bytes)
			if report.Hashed > 0 {
				fmt.Fprintf(out, "%d hashed name(s)\n", report.Hashed)
			}
			if report.Undecodable > 0 {
				return fmt.Errorf("verify: %d undecodable name(s)", report.Undecodable)
			}
			return nil
		},
	}
}
