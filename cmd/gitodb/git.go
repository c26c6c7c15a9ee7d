package main

import (
	"os"

	"github.com/mwillard/gitodb/internal/pathutil"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags holds the flags shared by every subcommand
type globalFlags struct {
	// C mirrors git's -C: run as if gitodb was started in the given
	// path instead of the current working directory
	C pflag.Value
	// fs is the filesystem implementation used to reach the repository.
	// It's always the real OS filesystem for the CLI; tests of the
	// underlying library use an in-memory one directly.
	fs afero.Fs
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gitodb",
		Short:         "a content-addressed object database compatible with Git's on-disk format",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	cfg := &globalFlags{
		fs: afero.NewOsFs(),
	}
	cfg.C = pathutil.NewDirPathFlagWithDefault(cwd)
	cmd.PersistentFlags().VarP(cfg.C, "C", "C", "Run as if gitodb was started in the provided path instead of the current working directory.")

	cmd.AddCommand(newInitCmd(cfg))
	cmd.AddCommand(newHashObjectCmd(cfg))
	cmd.AddCommand(newCatFileCmd(cfg))
	cmd.AddCommand(newCheckoutCmd(cfg))

	return cmd
}
