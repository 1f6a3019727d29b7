package main

import (
	"fmt"
	"io"
	"iter"

	"github.com/odvcencio/revstore/pkg/store"
	"github.com/spf13/cobra"
)

func newWalkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "walk",
		Short: "List every revlog in the store: data files, then metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), r.Store.Walk())
		},
	}
}

func newDataFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datafiles",
		Short: "List the data revlogs of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), r.Store.DataFiles())
		},
	}
}

func newCopyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copylist",
		Short: "List the paths a full clone copies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range r.Store.CopyList() {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
}

// printEntries writes one tab-separated line per entry: logical name (or
// "?" when it cannot be decoded), physical name, size.
func printEntries(out io.Writer, seq iter.Seq2[store.Entry, error]) error {
	for e, err := range seq {
		if err != nil {
			return err
		}
		name := e.Name
		if e.Undecodable {
			name = "?"
		}
		fmt.Fprintf(out, "%s\t%s\t%d\n", name, e.Encoded, e.Size)
	}
	return nil
}
