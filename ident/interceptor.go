/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ident

import (
	"context"
	"sync/atomic"

	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/storagemodels"
)

// Interceptor assigns fresh ids to entities written by insert statements.
// While the shared frozen flag is set it refuses every insert instead.
type Interceptor struct {
	frozen *atomic.Bool
	newID  func() EntityID
}

// NewInterceptor creates an interceptor gated by frozen.
func NewInterceptor(frozen *atomic.Bool) *Interceptor {
	return &Interceptor{
		frozen: frozen,
		newID:  func() EntityID { return NewEntityUUID() },
	}
}

// Name identifies the interceptor in logs.
func (i *Interceptor) Name() string {
	return "EntityInterceptor"
}

// Intercept runs before stmt executes with params.
func (i *Interceptor) Intercept(ctx context.Context, stmt storagemodels.Statement, params map[string]any) error {
	if stmt.Kind != storagemodels.KindInsert && stmt.Kind != storagemodels.KindPut {
		return nil
	}
	if i.frozen != nil && i.frozen.Load() {
		return serrors.ErrFrozen
	}
	for _, v := range params {
		entity, ok := v.(Entity)
		if !ok || !missingID(entity.EntityID()) {
			continue
		}
		entity.SetEntityID(i.newID())
	}
	return nil
}

func missingID(id EntityID) bool {
	if id == nil {
		return true
	}
	if u, ok := id.(EntityUUID); ok {
		return u.IsZero()
	}
	return id.Value() == ""
}
