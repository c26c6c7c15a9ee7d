// Package gitpath contains consts and methods to work with path inside
// the .git directory
package gitpath

// .git/ Files and directories. Trimmed to the paths this object
// database actually touches: no packed-refs, remotes or objects/info
// or objects/pack, since pack/delta storage and ref management beyond
// heads/tags are out of scope.
const (
	DotGitPath    = ".git"
	ConfigPath    = "config"
	ObjectsPath   = "objects"
	RefsPath      = "refs"
	RefsTagsPath  = RefsPath + "/tags"
	RefsHeadsPath = RefsPath + "/heads"
)
