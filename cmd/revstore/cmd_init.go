package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/revstore/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var requires []string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			// Ensure the target directory exists.
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			// There is no repository config yet, so only --verbose applies.
			applyVerbose()
			r, err := repo.Init(abs, requires, repo.WithLogger(newLogger(cmd.ErrOrStderr())))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty %s repository in %s\n", r.Store.Kind(), r.HgDir+string(filepath.Separator))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&requires, "requires", repo.DefaultRequirements, "repository requirements")
	return cmd
}
