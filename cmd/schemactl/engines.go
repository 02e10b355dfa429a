/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"

	"github.com/suparena/schemastore"
	"github.com/suparena/schemastore/config"
	"github.com/suparena/schemastore/datastore"
	"github.com/suparena/schemastore/datastore/ddb"
	"github.com/suparena/schemastore/datastore/mock"
	"github.com/suparena/schemastore/datastore/pg"
	"github.com/suparena/schemastore/registry"
)

// factoryFor maps an engine name to its factory. The mock engine records
// statements without running them, which makes it a dry run.
func factoryFor(engine string) (datastore.Factory, error) {
	switch engine {
	case pg.DatabaseID, "":
		return pg.Open, nil
	case ddb.DatabaseID:
		return ddb.Open, nil
	case mock.DatabaseID:
		return mock.New().Factory(), nil
	}
	return nil, fmt.Errorf("unknown engine %q", engine)
}

// newManager builds every configured store, sharing one catalog.
func newManager(cfg *config.Config, catalog *registry.Catalog) (*schemastore.Manager, error) {
	m := schemastore.NewManager()
	for _, name := range cfg.StoreNames() {
		factory, err := factoryFor(cfg.Stores[name].Engine)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", name, err)
		}
		opts, err := cfg.StoreOptions(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, schemastore.WithCatalog(catalog))
		if err := m.Add(schemastore.New(name, factory, opts...)); err != nil {
			return nil, err
		}
	}
	return m, nil
}
