package certificates

import (
	"errors"
	"fmt"
)

var (
	ErrMissingIdentity  = errors.New("slug or employee id is required")
	ErrMissingFile      = errors.New("file is required")
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrMalformedEmployeeID is reported as not found so callers learn nothing about id formats.
	ErrMalformedEmployeeID = fmt.Errorf("%w: malformed id", ErrEmployeeNotFound)
	ErrListFailed          = errors.New("listing certificates failed")
	ErrUnsupportedType     = errors.New("unsupported file type")
	ErrConflict            = errors.New("object already exists at the target path")
	ErrUploadFailed        = errors.New("upload failed")
)
