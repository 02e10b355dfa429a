/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/suparena/schemastore/datastore"
	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/storagemodels"
)

// DatabaseID selects PostgreSQL specific statements.
const DatabaseID = "postgresql"

// Engine is a PostgreSQL session factory.
type Engine struct {
	pool         *pgxpool.Pool
	cfg          datastore.Config
	mappers      *datastore.Mappers
	interceptors *datastore.Interceptors
	logger       zerolog.Logger
}

var _ datastore.Factory = Open

// Open creates the connection pool for a store and verifies it can connect.
func Open(ctx context.Context, cfg datastore.Config) (datastore.SessionFactory, error) {
	props := Properties(cfg.StoreName, cfg.Attributes)
	poolCfg, err := PoolConfig(props)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool for %s: %w", cfg.StoreName, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect %s: %w", cfg.StoreName, err)
	}

	cfg.Logger.Info().Str("databaseId", DatabaseID).Int32("maxConns", poolCfg.MaxConns).Msg("Pool started")
	return &Engine{
		pool:         pool,
		cfg:          cfg,
		mappers:      datastore.NewMappers(DatabaseID, cfg.Logger),
		interceptors: &datastore.Interceptors{},
		logger:       cfg.Logger,
	}, nil
}

func (e *Engine) DatabaseID() string {
	return DatabaseID
}

func (e *Engine) NativeUUID() bool {
	return true
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
	return e.mappers.Parse(src)
}

func (e *Engine) HasMapper(namespace string) bool {
	return e.mappers.Has(namespace)
}

func (e *Engine) Finalize(namespace, location string) error {
	return e.mappers.Finalize(namespace, location)
}

func (e *Engine) OpenSession(ctx context.Context) (datastore.Session, error) {
	return &session{engine: e}, nil
}

func (e *Engine) OpenConnection(ctx context.Context) (datastore.Connection, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &connection{conn: conn}, nil
}

// Backup is not available on PostgreSQL; use pg_dump instead.
func (e *Engine) Backup(ctx context.Context, location string) error {
	return serrors.NewUnsupportedBackupTargetError(DatabaseID)
}

func (e *Engine) Close() error {
	e.pool.Close()
	return nil
}

func (e *Engine) bind(ctx context.Context, namespace, id string, params datastore.Params) (datastore.Bound, error) {
	stmt, err := e.mappers.Lookup(namespace, id)
	if err != nil {
		return datastore.Bound{}, err
	}
	if params == nil {
		params = datastore.Params{}
	}
	if err := e.interceptors.Run(ctx, stmt, params); err != nil {
		return datastore.Bound{}, err
	}
	return datastore.Bind(stmt, params, e.cfg.Codecs, datastore.Dollar)
}

type session struct {
	engine *Engine
	tx     pgx.Tx
}

func (s *session) begin(ctx context.Context) (pgx.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.engine.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	return tx, nil
}

func (s *session) Exec(ctx context.Context, namespace, id string, params datastore.Params) (int64, error) {
	bound, err := s.engine.bind(ctx, namespace, id, params)
	if err != nil {
		return 0, err
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	s.engine.logger.Trace().Str("statement", namespace+"."+id).Str("sql", bound.Text).Msg("Exec")
	tag, err := tx.Exec(ctx, bound.Text, bound.Args...)
	if err != nil {
		return 0, fmt.Errorf("%s.%s: %w", namespace, id, err)
	}
	return tag.RowsAffected(), nil
}

func (s *session) Select(ctx context.Context, namespace, id string, params datastore.Params) ([]map[string]any, error) {
	bound, err := s.engine.bind(ctx, namespace, id, params)
	if err != nil {
		return nil, err
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	s.engine.logger.Trace().Str("statement", namespace+"."+id).Str("sql", bound.Text).Msg("Select")
	rows, err := tx.Query(ctx, bound.Text, bound.Args...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", namespace, id, err)
	}
	return pgx.CollectRows(rows, pgx.RowToMap)
}

func (s *session) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	return tx.Commit(ctx)
}

func (s *session) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	return tx.Rollback(ctx)
}

func (s *session) Close() error {
	return s.Rollback(context.Background())
}

type connection struct {
	conn *pgxpool.Conn
}

func (c *connection) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *connection) Close() error {
	c.conn.Release()
	return nil
}
