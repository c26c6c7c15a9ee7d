// Package backend contains interfaces and implementations to store and
// retrieve data from the odb
package backend

import (
	"github.com/mwillard/gitodb/ginternals/githash"
	"github.com/mwillard/gitodb/ginternals/object"
)

// Backend represents an object that can store and retrieve objects
// from and to the odb
type Backend interface {
	// Close frees the resources
	Close() error

	// Init initializes a repository
	Init() error

	// Object returns the object that has the given oid
	Object(githash.Oid) (*object.Object, error)
	// HasObject returns whether an object exists in the odb
	HasObject(githash.Oid) (bool, error)
	// WriteObject adds an object to the odb. Writing is idempotent:
	// writing an object that's already stored is a no-op that returns
	// its existing id.
	WriteObject(*object.Object) (githash.Oid, error)
}
