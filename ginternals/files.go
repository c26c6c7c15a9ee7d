package ginternals

import (
	"path/filepath"

	"github.com/mwillard/gitodb/ginternals/config"
)

// HeadFileName is the name of the file holding the symbolic reference
// to the current branch
const HeadFileName = "HEAD"

// DescriptionFileName is the name of the repository description file
const DescriptionFileName = "description"

// DotGitPath returns the path to the dotgit directory
func DotGitPath(cfg *config.Config) string {
	return cfg.GitDirPath
}

// ObjectsPath returns the path to the directory that contains
// the loose objects
func ObjectsPath(cfg *config.Config) string {
	return cfg.ObjectDirPath
}

// ConfigPath returns the path to the local config file
func ConfigPath(cfg *config.Config) string {
	return cfg.LocalConfig
}

// DescriptionFilePath returns the path to the description file
func DescriptionFilePath(cfg *config.Config) string {
	return filepath.Join(DotGitPath(cfg), DescriptionFileName)
}

// HeadFilePath returns the path to the HEAD file
func HeadFilePath(cfg *config.Config) string {
	return filepath.Join(DotGitPath(cfg), HeadFileName)
}

// LooseObjectPath returns the path of a loose object.
// Path is .git/objects/first_2_chars_of_sha/remaining_chars_of_sha
//
// Ex. path of fcfe68a0e44e04bd7fd564fc0b75f1ae457e18b3 is:
// .git/objects/fc/fe68a0e44e04bd7fd564fc0b75f1ae457e18b3
func LooseObjectPath(cfg *config.Config, sha string) string {
	return filepath.Join(ObjectsPath(cfg), sha[:2], sha[2:])
}
