// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"errors"
	"fmt"
)

// ErrReferenceNotFound is the sentinel wrapped by NotFoundError.
var ErrReferenceNotFound = errors.New("reference not found")

// NotFoundError reports a citation item whose id is not in the
// bibliography.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrReferenceNotFound, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrReferenceNotFound }
