package storage

import "errors"

var (
	// ErrObjectExists is returned when a write would overwrite an existing object.
	ErrObjectExists = errors.New("object already exists")
	// ErrNotFound is returned when the bucket or prefix does not exist.
	ErrNotFound = errors.New("bucket or prefix not found")
)

type Object struct {
	// Name is the key relative to the listed prefix.
	Name string
	Key  string
	Size int64
}
