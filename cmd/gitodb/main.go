// Command gitodb is a small CLI wrapper around the gitodb object
// database: enough plumbing to init a repository, hash and store
// objects, inspect them, and materialize a tree on disk.
package main

import (
	"fmt"
	"os"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
