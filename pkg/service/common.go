// Package service implements the bookstore workflows: validate the request,
// resolve the entities it references, persist, and render the result.
package service

import (
	"errors"
	"fmt"

	"bookstore/pkg/apperrors"
	"bookstore/pkg/store"
)

// resolve maps a store lookup failure onto the client-facing taxonomy.
func resolve(err error, entity string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.EntityNotFound(entity)
	}
	return fmt.Errorf("look up %s: %w", entity, err)
}
