/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/suparena/schemastore/access"
	"github.com/suparena/schemastore/codec"
	"github.com/suparena/schemastore/storagemodels"
)

// State is the lifecycle state of a data store.
type State int

const (
	Stopped State = iota
	Starting
	Started
	Stopping
)

func (s State) String() string {
	switch s {
	case Starting:
		return "STARTING"
	case Started:
		return "STARTED"
	case Stopping:
		return "STOPPING"
	default:
		return "STOPPED"
	}
}

// DataStore registers access types against an engine and hands out sessions.
type DataStore interface {
	Start(ctx context.Context) error

	Stop(ctx context.Context) error

	State() State

	Register(ctx context.Context, d *access.Descriptor) error

	Unregister(d *access.Descriptor)

	IsRegistered(d *access.Descriptor) bool

	OpenSession(ctx context.Context) (Session, error)

	OpenConnection(ctx context.Context) (Connection, error)

	Freeze()

	Unfreeze()

	IsFrozen() bool

	Backup(ctx context.Context, location string) error
}

// Params are the named values a statement binds.
type Params map[string]any

// Session runs statements in one unit of work.
type Session interface {
	// Exec runs a write statement and returns the number of affected rows or items.
	Exec(ctx context.Context, namespace, id string, params Params) (int64, error)

	// Select runs a read statement.
	Select(ctx context.Context, namespace, id string, params Params) ([]map[string]any, error)

	Commit(ctx context.Context) error

	Rollback(ctx context.Context) error

	// Close releases the session, rolling back uncommitted work.
	Close() error
}

// Connection is a raw handle on the engine, outside any session.
type Connection interface {
	Ping(ctx context.Context) error
	Close() error
}

// Interceptor runs before every statement a session executes.
type Interceptor interface {
	Name() string
	Intercept(ctx context.Context, stmt storagemodels.Statement, params map[string]any) error
}

// SessionFactory is one started engine.
type SessionFactory interface {
	// DatabaseID selects vendor specific statements, e.g. postgresql or dynamodb.
	DatabaseID() string

	// NativeUUID reports whether the engine has a UUID column type.
	NativeUUID() bool

	AddInterceptor(i Interceptor)

	// AddMapper loads and parses the mapper at resourcePath for namespace.
	AddMapper(ctx context.Context, namespace, resourcePath string) error

	// Parse parses an assembled mapper.
	Parse(ctx context.Context, src storagemodels.Source) error

	HasMapper(namespace string) bool

	// Finalize completes registration of a parsed mapper whose document did
	// not declare its namespace.
	Finalize(namespace, location string) error

	OpenSession(ctx context.Context) (Session, error)

	OpenConnection(ctx context.Context) (Connection, error)

	Backup(ctx context.Context, location string) error

	Close() error
}

// Config is what a Factory needs to start an engine.
type Config struct {
	StoreName  string
	Attributes map[string]string
	Codecs     *codec.Registry
	// Sources holds the mapper documents of plain access types
	Sources fs.FS
	Logger  zerolog.Logger
}

// Factory starts an engine.
type Factory func(ctx context.Context, cfg Config) (SessionFactory, error)
