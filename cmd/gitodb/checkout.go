package main

import (
	"github.com/spf13/cobra"
)

func newCheckoutCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout OBJECT DESTINATION",
		Short: "materialize a tree (or the tree of a commit) into a directory",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return checkoutCmd(cfg, args[0], args[1])
	}

	return cmd
}

func checkoutCmd(cfg *globalFlags, objectName, destination string) error {
	r, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer r.Close() //nolint:errcheck // best-effort close on the read path

	oid, err := r.Hash().ConvertFromString(objectName)
	if err != nil {
		return err
	}

	return r.Checkout(oid, destination)
}
