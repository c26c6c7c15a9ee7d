package main

import (
	"fmt"
	"io"

	"github.com/mwillard/gitodb/ginternals/object"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newHashObjectCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-object FILE",
		Short: "compute the object ID of a file, optionally persisting it",
		Args:  cobra.ExactArgs(1),
	}

	typ := cmd.Flags().StringP("type", "t", "blob", "Specify the type")
	write := cmd.Flags().BoolP("write", "w", false, "Actually write the object into the object database")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return hashObjectCmd(cmd.OutOrStdout(), cfg, args[0], *typ, *write)
	}

	return cmd
}

func hashObjectCmd(out io.Writer, cfg *globalFlags, filePath, typ string, write bool) error {
	objType, err := object.NewTypeFromString(typ)
	if err != nil {
		return xerrors.Errorf("unsupported object type %s: %w", typ, err)
	}

	r, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer r.Close() //nolint:errcheck // best-effort close on the read path

	if !write {
		content, err := afero.ReadFile(cfg.fs, filePath)
		if err != nil {
			return err
		}
		o := object.New(r.Hash(), objType, content)
		fmt.Fprintln(out, o.ID().String())
		return nil
	}

	oid, err := r.HashFile(filePath, objType)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, oid.String())
	return nil
}
