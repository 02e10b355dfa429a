/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schemastore

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/suparena/schemastore/access"
	"github.com/suparena/schemastore/codec"
	"github.com/suparena/schemastore/datastore"
	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/ident"
	"github.com/suparena/schemastore/logging"
	"github.com/suparena/schemastore/mapper"
	"github.com/suparena/schemastore/registry"
	"github.com/suparena/schemastore/security"
	"github.com/suparena/schemastore/template"
)

// ConfigStoreName is the name of the store holding configuration data.
// Every other store is a content store.
const ConfigStoreName = "config"

// CreateSchemaStatement is the statement run once for every registered access type.
const CreateSchemaStatement = "createSchema"

// IsContentStore reports whether the store called name holds content rather than configuration.
func IsContentStore(name string) bool {
	return !strings.EqualFold(name, ConfigStoreName)
}

// Store registers access types against an engine. It owns the engine, the
// codec registry and the ledger of registered access types.
type Store struct {
	name    string
	factory datastore.Factory

	attributes        map[string]string
	sources           fs.FS
	resolver          *template.Resolver
	cipher            security.Cipher
	helper            security.PasswordHelper
	sensitivePatterns []string

	mu        sync.RWMutex
	state     datastore.State
	engine    datastore.SessionFactory
	codecs    *codec.Registry
	aliases   *registry.Aliases
	assembler *mapper.Assembler
	mediator  codec.Mediator

	// regMu serializes registration; registered and inProgress are guarded by it
	regMu      sync.Mutex
	registered map[string]bool
	inProgress map[string]bool

	frozen atomic.Bool
	logger zerolog.Logger
}

var _ datastore.DataStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithAttributes sets the engine attributes, e.g. the pool settings of a SQL engine.
func WithAttributes(attrs map[string]string) Option {
	return func(s *Store) {
		s.attributes = make(map[string]string, len(attrs))
		for k, v := range attrs {
			s.attributes[k] = v
		}
	}
}

// WithSources sets the file system mapper documents are read from.
func WithSources(fsys fs.FS) Option {
	return func(s *Store) {
		s.sources = fsys
	}
}

// WithCatalog shares a catalog of declared access types with the store.
func WithCatalog(c *registry.Catalog) Option {
	return func(s *Store) {
		s.resolver = template.NewResolver(c)
	}
}

// WithCipher sets the cipher used by cipher-aware codecs.
func WithCipher(c security.Cipher) Option {
	return func(s *Store) {
		s.cipher = c
	}
}

// WithPasswordHelper sets the helper used to encrypt passwords and sensitive attributes.
func WithPasswordHelper(h security.PasswordHelper) Option {
	return func(s *Store) {
		s.helper = h
	}
}

// WithSensitivePatterns sets the patterns naming sensitive attribute keys.
func WithSensitivePatterns(patterns ...string) Option {
	return func(s *Store) {
		s.sensitivePatterns = append([]string(nil), patterns...)
	}
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a stopped store called name whose engine is built by factory.
func New(name string, factory datastore.Factory, opts ...Option) *Store {
	s := &Store{
		name:       name,
		factory:    factory,
		attributes: map[string]string{},
		resolver:   template.NewResolver(registry.NewCatalog()),
		registered: make(map[string]bool),
		inProgress: make(map[string]bool),
		logger:     logging.ForStore("store", name),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.helper == nil && s.cipher != nil {
		s.helper = security.NewPasswordHelper(s.cipher)
	}
	return s
}

// Name returns the store name.
func (s *Store) Name() string {
	return s.name
}

// State returns the lifecycle state.
func (s *Store) State() datastore.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Catalog returns the catalog sibling access types are resolved from.
func (s *Store) Catalog() *registry.Catalog {
	return s.resolver.Catalog()
}

// Declare indexes access types so that templates expecting them can find them.
// It does not register anything.
func (s *Store) Declare(descriptors ...*access.Descriptor) error {
	for _, d := range descriptors {
		if err := s.resolver.Index(d); err != nil {
			return fmt.Errorf("failed to declare %s: %w", d.Name(), err)
		}
	}
	return nil
}

// Codecs returns the codec registry of the running engine, or nil when stopped.
func (s *Store) Codecs() *codec.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.codecs
}

// Aliases returns the value type aliases, or nil when stopped.
func (s *Store) Aliases() *registry.Aliases {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aliases
}

// Start builds the engine and registers the common codecs.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != datastore.Stopped {
		return serrors.NewValidationError("state", fmt.Sprintf("cannot start store %s in state %s", s.name, s.state))
	}
	s.state = datastore.Starting
	done := logging.LogOperationStart(s.logger, "start")
	defer done()

	if err := s.start(ctx); err != nil {
		if s.engine != nil {
			if cerr := s.engine.Close(); cerr != nil {
				s.logger.Warn().Err(cerr).Msg("Failed to close engine after start failure")
			}
		}
		s.engine, s.codecs, s.aliases, s.assembler = nil, nil, nil, nil
		s.state = datastore.Stopped
		return fmt.Errorf("failed to start store %s: %w", s.name, err)
	}

	s.state = datastore.Started
	s.logger.Info().Str("database_id", s.engine.DatabaseID()).Msg("Store started")
	emitStoreStarted(ctx, s.name, s.engine.DatabaseID())
	return nil
}

func (s *Store) start(ctx context.Context) error {
	content := IsContentStore(s.name)

	s.aliases = registry.NewAliases()
	s.codecs = codec.NewRegistry(
		codec.WithCipher(s.cipher),
		codec.WithPasswordHelper(s.helper),
		codec.WithAliases(s.aliases),
		codec.WithLogger(s.logger),
		codec.WithListener(func(e codec.Entry) {
			emitCodecRegistered(s.name, e)
		}),
	)

	engine, err := s.factory(ctx, datastore.Config{
		StoreName:  s.name,
		Attributes: s.attributes,
		Codecs:     s.codecs,
		Sources:    s.sources,
		Logger:     s.logger,
	})
	if err != nil {
		return err
	}
	s.engine = engine

	filter, err := security.BuildSensitiveFilter(s.sensitivePatterns)
	if err != nil {
		return err
	}
	err = codec.RegisterCommon(s.codecs, codec.CommonOptions{
		ContentStore:    content,
		NativeUUID:      engine.NativeUUID(),
		SensitiveFilter: filter,
		InstallInterceptor: func() error {
			engine.AddInterceptor(ident.NewInterceptor(&s.frozen))
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to register common codecs: %w", err)
	}

	s.mediator = codec.Mediator{ContentStore: content}
	s.assembler = mapper.NewAssembler(mapper.NewLoader(s.sources), s.logger)
	return nil
}

// Stop forgets every registered access type and closes the engine.
func (s *Store) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != datastore.Started {
		return serrors.NewValidationError("state", fmt.Sprintf("cannot stop store %s in state %s", s.name, s.state))
	}
	s.state = datastore.Stopping

	s.regMu.Lock()
	clear(s.registered)
	clear(s.inProgress)
	s.regMu.Unlock()

	err := s.engine.Close()
	s.engine, s.codecs, s.aliases, s.assembler = nil, nil, nil, nil
	s.state = datastore.Stopped

	s.logger.Info().Msg("Store stopped")
	emitStoreStopped(ctx, s.name)
	if err != nil {
		return fmt.Errorf("failed to close engine of store %s: %w", s.name, err)
	}
	return nil
}

// started returns the running engine, or ErrNotStarted.
func (s *Store) started() (datastore.SessionFactory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != datastore.Started {
		return nil, serrors.ErrNotStarted
	}
	return s.engine, nil
}

// Register registers d, and every access type it expects, exactly once.
// Templates are never registered themselves.
func (s *Store) Register(ctx context.Context, d *access.Descriptor) error {
	if d == nil {
		return serrors.NewValidationError("descriptor", "descriptor is required")
	}

	// Hold the read lock so Stop waits for registration in flight.
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != datastore.Started {
		return serrors.ErrNotStarted
	}

	s.regMu.Lock()
	defer s.regMu.Unlock()
	return s.register(ctx, d)
}

func (s *Store) register(ctx context.Context, d *access.Descriptor) error {
	if d.IsTemplate() || s.registered[d.Name()] || s.inProgress[d.Name()] {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.inProgress[d.Name()] = true
	defer delete(s.inProgress, d.Name())

	if err := s.resolver.Index(d); err != nil {
		return err
	}
	s.registerAliases(d)

	if err := s.registerMapper(ctx, d); err != nil {
		return err
	}
	s.logger.Info().Msgf("Registered %s", d.Name())

	if err := s.createSchema(ctx, d); err != nil {
		return err
	}

	s.registered[d.Name()] = true
	emitDescriptorRegistered(ctx, s.name, d.Name())
	return nil
}

// registerAliases is best effort; value types whose alias is taken are skipped.
func (s *Store) registerAliases(d *access.Descriptor) {
	for _, t := range d.ValueTypes() {
		if _, err := s.aliases.Register(t); err != nil {
			s.logger.Debug().Err(err).Str("type", t.String()).Msg("Skipping alias")
		}
	}
}

func (s *Store) registerMapper(ctx context.Context, d *access.Descriptor) error {
	tmpl := template.Find(d)
	if tmpl == nil {
		for _, dep := range d.Expected() {
			if err := s.register(ctx, dep); err != nil {
				return err
			}
		}
		if s.engine.HasMapper(d.Name()) {
			return nil
		}
		return s.engine.AddMapper(ctx, d.Name(), d.ResourcePath())
	}

	for _, expected := range tmpl.Expected() {
		dep := expected
		if expected.IsTemplate() {
			var err error
			if dep, err = s.resolver.ResolveDependency(d, tmpl, expected); err != nil {
				return err
			}
		}
		if err := s.register(ctx, dep); err != nil {
			return err
		}
	}

	prefix, err := template.DerivePrefix(d.SimpleName(), tmpl.SimpleName())
	if err != nil {
		return err
	}
	def, err := s.assembler.Assemble(ctx, d, prefix, tmpl)
	if err != nil {
		return err
	}

	if !s.engine.HasMapper(d.Name()) {
		if err := s.engine.Parse(ctx, def.Source()); err != nil {
			s.logger.Warn().Err(err).Str("location", def.Location).Msg(def.Body)
			if !serrors.IsAssemblyParse(err) {
				err = serrors.NewAssemblyParseError(def.Location, err)
			}
			return err
		}
	}
	if !s.engine.HasMapper(d.Name()) {
		return s.engine.Finalize(d.Name(), def.Location)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context, d *access.Descriptor) (err error) {
	s.logger.Info().Msgf("Creating schema for %s", d.Name())
	start := time.Now()
	defer func() {
		emitSchemaCreated(ctx, s.name, d.Name(), time.Since(start), err)
	}()

	session, err := s.engine.OpenSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to open session for %s: %w", d.Name(), err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			s.logger.Warn().Err(cerr).Str("descriptor", d.Name()).Msg("Failed to close session")
		}
	}()

	if _, err = session.Exec(ctx, d.Name(), CreateSchemaStatement, nil); err != nil {
		return fmt.Errorf("failed to create schema for %s: %w", d.Name(), err)
	}
	if err = session.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit schema for %s: %w", d.Name(), err)
	}
	return nil
}

// Unregister does nothing: statement definitions stay with the engine until it stops.
func (s *Store) Unregister(d *access.Descriptor) {}

// IsRegistered reports whether d completed registration since the last start.
func (s *Store) IsRegistered(d *access.Descriptor) bool {
	if d == nil {
		return false
	}
	s.regMu.Lock()
	defer s.regMu.Unlock()
	return s.registered[d.Name()]
}

// OnCodecDiscovered registers a codec found after start, if the store accepts it.
// Codecs declaring their target types are registered unbound, the rest detached.
func (s *Store) OnCodecDiscovered(c codec.Codec) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != datastore.Started {
		return serrors.ErrNotStarted
	}

	if !s.mediator.Admit(c) {
		s.logger.Debug().Str("codec", codec.NameOf(c)).Msg("Codec not admitted")
		return nil
	}
	if _, ok := c.(codec.Targeted); ok {
		return s.codecs.RegisterUnbound(c)
	}
	return s.codecs.RegisterDetached(c)
}

// OpenSession opens a session on the engine.
func (s *Store) OpenSession(ctx context.Context) (datastore.Session, error) {
	engine, err := s.started()
	if err != nil {
		return nil, err
	}
	return engine.OpenSession(ctx)
}

// OpenConnection opens a raw connection on the engine.
func (s *Store) OpenConnection(ctx context.Context) (datastore.Connection, error) {
	engine, err := s.started()
	if err != nil {
		return nil, err
	}
	return engine.OpenConnection(ctx)
}

// Freeze makes every later insert fail with ErrFrozen.
func (s *Store) Freeze() {
	s.frozen.Store(true)
	s.logger.Info().Msg("Store frozen")
}

// Unfreeze allows inserts again.
func (s *Store) Unfreeze() {
	s.frozen.Store(false)
	s.logger.Info().Msg("Store unfrozen")
}

// IsFrozen reports whether inserts are currently refused.
func (s *Store) IsFrozen() bool {
	return s.frozen.Load()
}

// Backup asks the engine to back itself up to location.
func (s *Store) Backup(ctx context.Context, location string) error {
	engine, err := s.started()
	if err != nil {
		return err
	}
	if location == "" {
		return serrors.NewValidationError("location", "backup location is required")
	}
	s.logger.Info().Str("location", location).Msg("Backing up store")
	return engine.Backup(ctx, location)
}
