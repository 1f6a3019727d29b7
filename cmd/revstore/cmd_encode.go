package main

import (
	"fmt"

	"github.com/odvcencio/revstore/pkg/pathenc"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var reversible bool

	cmd := &cobra.Command{
		Use:   "encode <path>...",
		Short: "Print the physical store name of logical paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, p := range args {
				if reversible {
					fmt.Fprintln(out, pathenc.EncodeFilename(p))
					continue
				}
				fmt.Fprintln(out, pathenc.HybridEncode(p))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reversible, "reversible", false, "only apply the reversible escaping, without masking or hashing")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <name>...",
		Short: "Print the logical path of reversibly encoded names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, n := range args {
				if pathenc.IsHashed(n) {
					return fmt.Errorf("decode %s: hashed names cannot be decoded", n)
				}
				p, err := pathenc.DecodeFilename(n)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
}
