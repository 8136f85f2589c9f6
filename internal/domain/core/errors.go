package core

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrReferenceNotFound = errors.New("referenced record not found in company")
	ErrDuplicate         = errors.New("record already exists")
)
