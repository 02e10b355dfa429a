/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory engine implementing datastore.SessionFactory for testing
package mock

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/suparena/schemastore/datastore"
	"github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/storagemodels"
)

// DatabaseID is the default database id of the mock engine.
const DatabaseID = "mock"

// Engine records every statement it executes instead of running it.
type Engine struct {
	mu           sync.Mutex
	databaseID   string
	nativeUUID   bool
	cfg          datastore.Config
	mappers      *datastore.Mappers
	interceptors *datastore.Interceptors
	committed    []storagemodels.ExecRecord
	results      map[string][]map[string]any
	execErrors   map[string]error
	startError   error
	parseError   error
	backupError  error
	started      int
	closed       bool
	logger       zerolog.Logger
}

// New creates a mock engine.
func New() *Engine {
	return &Engine{
		databaseID:   DatabaseID,
		interceptors: &datastore.Interceptors{},
		results:      make(map[string][]map[string]any),
		execErrors:   make(map[string]error),
		logger:       zerolog.Nop(),
	}
}

// WithDatabaseID sets the database id used to select vendor statements
func (e *Engine) WithDatabaseID(id string) *Engine {
	e.databaseID = id
	return e
}

// WithNativeUUID makes the engine report a native UUID column type
func (e *Engine) WithNativeUUID(native bool) *Engine {
	e.nativeUUID = native
	return e
}

// WithStartError makes the factory fail
func (e *Engine) WithStartError(err error) *Engine {
	e.startError = err
	return e
}

// WithParseError makes Parse and AddMapper fail
func (e *Engine) WithParseError(err error) *Engine {
	e.parseError = err
	return e
}

// WithBackupError makes Backup fail
func (e *Engine) WithBackupError(err error) *Engine {
	e.backupError = err
	return e
}

// WithExecError makes statements fail. id is either a statement id such as
// createSchema, matching every namespace, or a qualified namespace.id.
func (e *Engine) WithExecError(id string, err error) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.execErrors[id] = err
	return e
}

// ClearExecErrors removes every injected statement error.
func (e *Engine) ClearExecErrors() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.execErrors = make(map[string]error)
}

// WithSelectResult sets the rows returned by the qualified select statement
func (e *Engine) WithSelectResult(qualifiedID string, rows []map[string]any) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.results[qualifiedID] = rows
	return e
}

// Factory returns a datastore.Factory that starts this engine.
func (e *Engine) Factory() datastore.Factory {
	return func(ctx context.Context, cfg datastore.Config) (datastore.SessionFactory, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.startError != nil {
			return nil, e.startError
		}

		e.mu.Lock()
		defer e.mu.Unlock()
		e.cfg = cfg
		e.logger = cfg.Logger
		e.mappers = datastore.NewMappers(e.databaseID, cfg.Logger)
		e.interceptors = &datastore.Interceptors{}
		e.started++
		e.closed = false
		return e, nil
	}
}

func (e *Engine) DatabaseID() string {
	return e.databaseID
}

func (e *Engine) NativeUUID() bool {
	return e.nativeUUID
}

func (e *Engine) AddInterceptor(i datastore.Interceptor) {
	e.interceptors.Add(i)
}

func (e *Engine) AddMapper(ctx context.Context, namespace, resourcePath string) error {
	src, err := datastore.ReadSource(e.cfg.Sources, namespace, resourcePath)
	if err != nil {
		return err
	}
	return e.Parse(ctx, src)
}

func (e *Engine) Parse(ctx context.Context, src storagemodels.Source) error {
	if e.parseError != nil {
		return e.parseError
	}
	return e.mappers.Parse(src)
}

func (e *Engine) HasMapper(namespace string) bool {
	return e.mappers.Has(namespace)
}

func (e *Engine) Finalize(namespace, location string) error {
	return e.mappers.Finalize(namespace, location)
}

func (e *Engine) OpenSession(ctx context.Context) (datastore.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, errors.ErrNotStarted
	}
	return &session{engine: e}, nil
}

func (e *Engine) OpenConnection(ctx context.Context) (datastore.Connection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, errors.ErrNotStarted
	}
	return &connection{engine: e}, nil
}

// snapshot is the YAML layout written by Backup.
type snapshot struct {
	Store      string                     `yaml:"store"`
	DatabaseID string                     `yaml:"databaseId"`
	Namespaces []string                   `yaml:"namespaces"`
	Executed   []storagemodels.ExecRecord `yaml:"executed"`
}

// Backup writes the registered namespaces and committed statements to location as YAML.
func (e *Engine) Backup(ctx context.Context, location string) error {
	if e.backupError != nil {
		return e.backupError
	}
	e.mu.Lock()
	snap := snapshot{
		Store:      e.cfg.StoreName,
		DatabaseID: e.databaseID,
		Namespaces: e.mappers.Namespaces(),
		Executed:   append([]storagemodels.ExecRecord(nil), e.committed...),
	}
	e.mu.Unlock()

	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal backup: %w", err)
	}
	if err := os.WriteFile(location, data, 0o600); err != nil {
		return fmt.Errorf("failed to write backup %s: %w", location, err)
	}
	e.logger.Info().Str("location", location).Int("statements", len(snap.Executed)).Msg("Backup written")
	return nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Helper methods for testing

// Committed returns a copy of the committed statements
func (e *Engine) Committed() []storagemodels.ExecRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]storagemodels.ExecRecord(nil), e.committed...)
}

// Count returns how often namespace.id was committed
func (e *Engine) Count(namespace, id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, r := range e.committed {
		if r.Namespace == namespace && r.ID == id {
			n++
		}
	}
	return n
}

// Starts returns how often the factory started the engine
func (e *Engine) Starts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// Closed reports whether the engine was closed
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Config returns the configuration the engine was started with
func (e *Engine) Config() datastore.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Mappers exposes the statement table
func (e *Engine) Mappers() *datastore.Mappers {
	return e.mappers
}

func (e *Engine) execError(stmt storagemodels.Statement) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err, ok := e.execErrors[stmt.QualifiedID()]; ok {
		return err
	}
	return e.execErrors[stmt.ID]
}

func (e *Engine) prepare(ctx context.Context, namespace, id string, params datastore.Params) (storagemodels.ExecRecord, error) {
	stmt, err := e.mappers.Lookup(namespace, id)
	if err != nil {
		return storagemodels.ExecRecord{}, err
	}
	if params == nil {
		params = datastore.Params{}
	}
	if err := e.interceptors.Run(ctx, stmt, params); err != nil {
		return storagemodels.ExecRecord{}, err
	}
	bound, err := datastore.Bind(stmt, params, e.cfg.Codecs, datastore.Question)
	if err != nil {
		return storagemodels.ExecRecord{}, err
	}
	if err := e.execError(stmt); err != nil {
		return storagemodels.ExecRecord{}, err
	}
	return storagemodels.ExecRecord{
		Namespace: stmt.Namespace,
		ID:        stmt.ID,
		Kind:      stmt.Kind,
		Text:      bound.Text,
		Args:      bound.Args,
	}, nil
}

type session struct {
	engine  *Engine
	pending []storagemodels.ExecRecord
	closed  bool
}

func (s *session) Exec(ctx context.Context, namespace, id string, params datastore.Params) (int64, error) {
	if s.closed {
		return 0, errors.NewValidationError("session", "session is closed")
	}
	record, err := s.engine.prepare(ctx, namespace, id, params)
	if err != nil {
		return 0, err
	}
	s.pending = append(s.pending, record)
	return 1, nil
}

func (s *session) Select(ctx context.Context, namespace, id string, params datastore.Params) ([]map[string]any, error) {
	if s.closed {
		return nil, errors.NewValidationError("session", "session is closed")
	}
	record, err := s.engine.prepare(ctx, namespace, id, params)
	if err != nil {
		return nil, err
	}

	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	return append([]map[string]any(nil), s.engine.results[record.Namespace+"."+record.ID]...), nil
}

func (s *session) Commit(ctx context.Context) error {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	s.engine.committed = append(s.engine.committed, s.pending...)
	s.pending = nil
	return nil
}

func (s *session) Rollback(ctx context.Context) error {
	s.pending = nil
	return nil
}

func (s *session) Close() error {
	s.pending = nil
	s.closed = true
	return nil
}

type connection struct {
	engine *Engine
}

func (c *connection) Ping(ctx context.Context) error {
	if c.engine.Closed() {
		return errors.ErrNotStarted
	}
	return ctx.Err()
}

func (c *connection) Close() error {
	return nil
}
