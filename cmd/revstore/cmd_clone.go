package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCloneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clone <dest>",
		Short: "Copy the repository store into a new repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			cloned, summary, err := r.Clone(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(
				cmd.OutOrStdout(),
				"copied %d file(s), %d byte(s) into %s\n",
				summary.Files,
				summary.Bytes,
				cloned.HgDir,
			)
			return nil
		},
	}
}
