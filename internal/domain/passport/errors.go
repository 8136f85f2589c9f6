package passport

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSlug matches every slug that must not resolve for the public.
	ErrInvalidSlug      = errors.New("invalid slug")
	ErrPassportNotFound = fmt.Errorf("%w: passport not found", ErrInvalidSlug)
	ErrPassportDisabled = fmt.Errorf("%w: passport disabled", ErrInvalidSlug)
	ErrSlugTaken        = errors.New("slug already in use")
)
