package main

import (
	gitodb "github.com/mwillard/gitodb"
)

// openRepository discovers and opens the repository containing cfg.C
func openRepository(cfg *globalFlags) (*gitodb.Repository, error) {
	return gitodb.Discover(cfg.fs, cfg.C.String())
}
