package core

import (
	"errors"
	"fmt"

	"github.com/nalarbp/patomove/pkg/domain"
)

// NotFoundError reports that a referenced record does not exist.
type NotFoundError struct {
	Entity domain.EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// ConflictError reports a state conflict, e.g. linking an already linked
// genome. Callers should re-fetch and retry deliberately, not blindly.
type ConflictError struct {
	Message string
}

func (e ConflictError) Error() string { return e.Message }

// BadRequestError reports malformed or semantically invalid caller input.
type BadRequestError struct {
	Message string
}

func (e BadRequestError) Error() string { return e.Message }

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var c ConflictError
	return errors.As(err, &c)
}

// IsBadRequest reports whether err is (or wraps) a BadRequestError.
func IsBadRequest(err error) bool {
	var br BadRequestError
	return errors.As(err, &br)
}
