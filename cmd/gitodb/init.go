package main

import (
	"fmt"
	"io"

	gitodb "github.com/mwillard/gitodb"
	"github.com/spf13/cobra"
)

func newInitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "create an empty git repository",
		Args:  cobra.MaximumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		directory := cfg.C.String()
		if len(args) > 0 {
			directory = args[0]
		}
		return initCmd(cmd.OutOrStdout(), cfg, directory)
	}

	return cmd
}

func initCmd(out io.Writer, cfg *globalFlags, directory string) error {
	if r, err := gitodb.Open(cfg.fs, directory); err == nil {
		fmt.Fprintf(out, "Reinitialized existing Git repository in %s\n", directory)
		return r.Close()
	}

	r, err := gitodb.Create(cfg.fs, directory)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Initialized empty Git repository in %s\n", directory)
	return r.Close()
}
