/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schemastore

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"

	"github.com/suparena/schemastore/codec"
)

// Signals for store lifecycle events.
var (
	SignalStoreStarted         = capitan.NewSignal("schemastore.store.started", "Store started")
	SignalStoreStopped         = capitan.NewSignal("schemastore.store.stopped", "Store stopped")
	SignalDescriptorRegistered = capitan.NewSignal("schemastore.descriptor.registered", "Access type registered")
	SignalSchemaCreated        = capitan.NewSignal("schemastore.schema.created", "Schema creation finished")
	SignalCodecRegistered      = capitan.NewSignal("schemastore.codec.registered", "Codec registered")
)

// Keys for typed event data.
var (
	KeyStore      = capitan.NewStringKey("store")
	KeyDatabaseID = capitan.NewStringKey("database_id")
	KeyDescriptor = capitan.NewStringKey("descriptor")
	KeyCodec      = capitan.NewStringKey("codec")
	KeyForm       = capitan.NewStringKey("form")
	KeyDuration   = capitan.NewDurationKey("duration")
	KeyError      = capitan.NewErrorKey("error")
)

func emitStoreStarted(ctx context.Context, store, databaseID string) {
	capitan.Emit(ctx, SignalStoreStarted,
		KeyStore.Field(store),
		KeyDatabaseID.Field(databaseID),
	)
}

func emitStoreStopped(ctx context.Context, store string) {
	capitan.Emit(ctx, SignalStoreStopped, KeyStore.Field(store))
}

func emitDescriptorRegistered(ctx context.Context, store, descriptor string) {
	capitan.Emit(ctx, SignalDescriptorRegistered,
		KeyStore.Field(store),
		KeyDescriptor.Field(descriptor),
	)
}

// emitSchemaCreated reports the outcome of one createSchema transaction.
func emitSchemaCreated(ctx context.Context, store, descriptor string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyStore.Field(store),
		KeyDescriptor.Field(descriptor),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSchemaCreated, fields...)
	} else {
		capitan.Emit(ctx, SignalSchemaCreated, fields...)
	}
}

func emitCodecRegistered(store string, entry codec.Entry) {
	capitan.Emit(context.Background(), SignalCodecRegistered,
		KeyStore.Field(store),
		KeyCodec.Field(entry.Name),
		KeyForm.Field(entry.Form.String()),
	)
}
