/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ident

import (
	"fmt"

	"github.com/google/uuid"

	serrors "github.com/suparena/schemastore/errors"
)

// EntityID identifies a stored entity.
type EntityID interface {
	Value() string
}

// EntityUUID is an EntityID backed by a UUID.
type EntityUUID struct {
	uuid.UUID
}

// NewEntityUUID allocates a fresh random id.
func NewEntityUUID() EntityUUID {
	return EntityUUID{UUID: uuid.New()}
}

// ParseEntityUUID parses the canonical or compact textual form of a UUID.
func ParseEntityUUID(s string) (EntityUUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return EntityUUID{}, fmt.Errorf("%w: %w", serrors.NewValidationError("id", fmt.Sprintf("%q is not a UUID", s)), err)
	}
	return EntityUUID{UUID: id}, nil
}

// Value returns the canonical textual form.
func (id EntityUUID) Value() string {
	return id.UUID.String()
}

// IsZero reports whether the id was never assigned.
func (id EntityUUID) IsZero() bool {
	return id.UUID == uuid.Nil
}

// Entity is a stored value whose id is allocated by the store on insert.
type Entity interface {
	EntityID() EntityID
	SetEntityID(id EntityID)
}
