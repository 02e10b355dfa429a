/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/suparena/schemastore/datastore"
	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/storagemodels"
)

// DatabaseID selects DynamoDB specific statements.
const DatabaseID = "dynamodb"

// Store attribute names understood by the engine.
const (
	AttrRegion       = "region"
	AttrAccessKey    = "accessKey"
	AttrSecretKey    = "secretKey"
	AttrEndpoint     = "endpoint"
	AttrTablePrefix  = "tablePrefix"
	AttrMaxRetries   = "maxRetries"
	AttrRetryBackoff = "retryBackoff"
)

const (
	maxTransactItems    = 100
	defaultMaxRetries   = 3
	defaultRetryBackoff = 100 * time.Millisecond
	tableWaitTimeout    = 2 * time.Minute
)

// Engine is a DynamoDB session factory.
type Engine struct {
	client       API
	cfg          datastore.Config
	mappers      *datastore.Mappers
	interceptors *datastore.Interceptors
	tablePrefix  string
	maxRetries   int
	retryBackoff time.Duration
	logger       zerolog.Logger

	mu     sync.Mutex
	tables []string
}

var _ datastore.Factory = Open

// Open creates a DynamoDB client from the store attributes and starts an engine on it.
func Open(ctx context.Context, cfg datastore.Config) (datastore.SessionFactory, error) {
	client, err := NewDynamoDBClient(ctx, ClientOptions{
		Region:    cfg.Attributes[AttrRegion],
		AccessKey: cfg.Attributes[AttrAccessKey],
		SecretKey: cfg.Attributes[AttrSecretKey],
		Endpoint:  cfg.Attributes[AttrEndpoint],
	})
	if err != nil {
		return nil, err
	}
	return New(client, cfg)
}

// New starts an engine on an existing client.
func New(client API, cfg datastore.Config) (*Engine, error) {
	e := &Engine{
		client:       client,
		cfg:          cfg,
		mappers:      datastore.NewMappers(DatabaseID, cfg.Logger),
		interceptors: &datastore.Interceptors{},
		tablePrefix:  cfg.Attributes[AttrTablePrefix],
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultRetryBackoff,
		logger:       cfg.Logger,
	}
	if v, ok := cfg.Attributes[AttrMaxRetries]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, serrors.NewValidationError(AttrMaxRetries, fmt.Sprintf("%q is not a non-negative number", v))
		}
		e.maxRetries = n
	}
	if v, ok := cfg.Attributes[AttrRetryBackoff]; ok {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return nil, serrors.NewValidationError(AttrRetryBackoff, fmt.Sprintf("%q is not a non-negative number", v))
		}
		e.retryBackoff = time.Duration(ms) * time.Millisecond
	}

	e.logger.Info().Str("databaseId", DatabaseID).Str("region", cfg.Attributes[AttrRegion]).Msg("DynamoDB client initialized")
	return e, nil
}

func (e *Engine) DatabaseID() string {
	return DatabaseID
}

// NativeUUID is false: DynamoDB stores ids as strings.
func (e *Engine) NativeUUID() bool {
	return false
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
	return &connection{engine: e}, nil
}

// Tables returns the tables created by this engine, in creation order.
func (e *Engine) Tables() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.tables...)
}

var backupNameInvalid = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// Backup requests an on-demand backup of every table the engine created.
// The location is used as the backup name prefix.
func (e *Engine) Backup(ctx context.Context, location string) error {
	tables := e.Tables()
	if len(tables) == 0 {
		e.logger.Warn().Str("location", location).Msg("No tables to back up")
		return nil
	}

	prefix := strings.Trim(backupNameInvalid.ReplaceAllString(location, "-"), "-")
	for _, table := range tables {
		name := table
		if prefix != "" {
			name = prefix + "-" + table
		}
		if len(name) > 255 {
			name = name[:255]
		}
		out, err := e.client.CreateBackup(ctx, &sdk.CreateBackupInput{
			TableName:  aws.String(table),
			BackupName: aws.String(name),
		})
		if err != nil {
			return fmt.Errorf("failed to back up %s: %w", table, err)
		}
		ev := e.logger.Info().Str("table", table).Str("backup", name)
		if out.BackupDetails != nil {
			ev = ev.Str("arn", aws.ToString(out.BackupDetails.BackupArn))
		}
		ev.Msg("Backup created")
	}
	return nil
}

func (e *Engine) Close() error {
	return nil
}

func (e *Engine) table(stmt storagemodels.Statement) (string, error) {
	table := stmt.Attr("table", "")
	if table == "" {
		return "", serrors.NewValidationError("table", stmt.QualifiedID()+" names no table")
	}
	return e.tablePrefix + table, nil
}

// createTable creates the declared table unless it exists and waits for it to become active.
func (e *Engine) createTable(ctx context.Context, stmt storagemodels.Statement) error {
	spec, err := tableSpec(stmt, e.tablePrefix)
	if err != nil {
		return err
	}

	_, err = e.client.CreateTable(ctx, spec.CreateTableInput())
	var inUse *types.ResourceInUseException
	switch {
	case errors.As(err, &inUse):
		e.logger.Debug().Str("table", spec.Name).Msg("Table already exists")
	case err != nil:
		return fmt.Errorf("failed to create table %s: %w", spec.Name, err)
	default:
		e.logger.Info().Str("table", spec.Name).Int("indexes", len(spec.Indexes)).Msg("Table created")
	}

	if stmt.Attr("wait", "true") != "false" {
		waiter := sdk.NewTableExistsWaiter(e.client)
		if err := waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: aws.String(spec.Name)}, tableWaitTimeout); err != nil {
			return fmt.Errorf("table %s did not become active: %w", spec.Name, err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.tables {
		if t == spec.Name {
			return nil
		}
	}
	e.tables = append(e.tables, spec.Name)
	return nil
}

// prepare looks up a statement and runs the interceptors over params.
func (e *Engine) prepare(ctx context.Context, namespace, id string, params datastore.Params) (storagemodels.Statement, datastore.Params, error) {
	stmt, err := e.mappers.Lookup(namespace, id)
	if err != nil {
		return storagemodels.Statement{}, nil, err
	}
	if params == nil {
		params = datastore.Params{}
	}
	if err := e.interceptors.Run(ctx, stmt, params); err != nil {
		return storagemodels.Statement{}, nil, err
	}
	return stmt, params, nil
}

// encode converts every parameter through the codec registry.
func (e *Engine) encode(params datastore.Params) (map[string]any, error) {
	out := make(map[string]any, len(params))
	for name, v := range params {
		if e.cfg.Codecs == nil {
			out[name] = v
			continue
		}
		encoded, err := e.cfg.Codecs.Encode(v, "")
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", name, err)
		}
		out[name] = encoded
	}
	return out, nil
}

type connection struct {
	engine *Engine
}

// Ping checks the engine can reach DynamoDB by describing one known table.
func (c *connection) Ping(ctx context.Context) error {
	tables := c.engine.Tables()
	if len(tables) == 0 {
		return ctx.Err()
	}
	_, err := c.engine.client.DescribeTable(ctx, &sdk.DescribeTableInput{TableName: aws.String(tables[0])})
	return err
}

func (c *connection) Close() error {
	return nil
}
