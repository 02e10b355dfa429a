/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/storagemodels"
)

const maxIncludeDepth = 8

// Mappers is the statement table an engine builds from mapper documents.
type Mappers struct {
	mu         sync.RWMutex
	databaseID string
	namespaces map[string]map[string]storagemodels.Statement
	pending    map[string][]storagemodels.Statement
	logger     zerolog.Logger
}

// NewMappers creates an empty table that prefers statements declared for databaseID.
func NewMappers(databaseID string, logger zerolog.Logger) *Mappers {
	return &Mappers{
		databaseID: databaseID,
		namespaces: make(map[string]map[string]storagemodels.Statement),
		pending:    make(map[string][]storagemodels.Statement),
		logger:     logger,
	}
}

// ReadSource reads the mapper document at resourcePath from fsys.
func ReadSource(fsys fs.FS, namespace, resourcePath string) (storagemodels.Source, error) {
	if fsys == nil {
		return storagemodels.Source{}, serrors.NewMissingResourceError(namespace, resourcePath)
	}
	body, err := fs.ReadFile(fsys, strings.TrimPrefix(resourcePath, "/"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storagemodels.Source{}, serrors.NewMissingResourceError(namespace, resourcePath)
		}
		return storagemodels.Source{}, fmt.Errorf("failed to read %s: %w", resourcePath, err)
	}
	return storagemodels.Source{Namespace: namespace, Location: resourcePath, Body: string(body)}, nil
}

// Parse adds the statements of src. A document without a namespace
// attribute is held until Finalize names it.
func (m *Mappers) Parse(src storagemodels.Source) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(src.Body); err != nil {
		return serrors.NewAssemblyParseError(src.Location, err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "mapper" {
		return serrors.NewAssemblyParseError(src.Location, errors.New("root element must be <mapper>"))
	}

	ns := root.SelectAttrValue("namespace", "")
	if ns != "" && src.Namespace != "" && ns != src.Namespace {
		return serrors.NewValidationError("namespace",
			fmt.Sprintf("%s declares %s, expected %s", src.Location, ns, src.Namespace))
	}

	fragments := make(map[string]*etree.Element)
	for _, el := range root.SelectElements("sql") {
		if id := el.SelectAttrValue("id", ""); id != "" {
			fragments[id] = el
		}
	}

	statements, err := m.collect(root, ns, fragments, src.Location)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if ns == "" {
		m.pending[src.Location] = statements
		m.logger.Debug().Str("location", src.Location).Int("statements", len(statements)).Msg("Mapper pending namespace")
		return nil
	}
	return m.install(ns, statements)
}

func (m *Mappers) collect(root *etree.Element, ns string, fragments map[string]*etree.Element, location string) ([]storagemodels.Statement, error) {
	chosen := make(map[string]storagemodels.Statement)
	var order []string
	for _, el := range root.ChildElements() {
		if !storagemodels.IsStatementKind(el.Tag) {
			continue
		}
		id := el.SelectAttrValue("id", "")
		if id == "" {
			return nil, serrors.NewValidationError("id", fmt.Sprintf("<%s> in %s has no id", el.Tag, location))
		}
		dbID := el.SelectAttrValue("databaseId", "")
		if dbID != "" && dbID != m.databaseID {
			continue
		}

		text, err := flatten(el, fragments, 0)
		if err != nil {
			return nil, fmt.Errorf("%s#%s: %w", location, id, err)
		}
		stmt := storagemodels.Statement{
			Namespace:  ns,
			ID:         id,
			Kind:       storagemodels.StatementKind(el.Tag),
			DatabaseID: dbID,
			Text:       strings.TrimSpace(text),
			Attrs:      make(map[string]string),
		}
		for _, attr := range el.Attr {
			if attr.Key != "id" && attr.Key != "databaseId" {
				stmt.Attrs[attr.Key] = attr.Value
			}
		}

		prev, seen := chosen[id]
		switch {
		case !seen:
			order = append(order, id)
			chosen[id] = stmt
		case prev.DatabaseID == stmt.DatabaseID:
			return nil, serrors.NewAlreadyExistsError("statement", stmt.QualifiedID())
		case stmt.DatabaseID != "":
			chosen[id] = stmt
		}
	}

	out := make([]storagemodels.Statement, 0, len(order))
	for _, id := range order {
		out = append(out, chosen[id])
	}
	return out, nil
}

func flatten(el *etree.Element, fragments map[string]*etree.Element, depth int) (string, error) {
	if depth > maxIncludeDepth {
		return "", serrors.NewValidationError("include", "fragments nest too deeply")
	}
	var b strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			if t.Tag == "include" {
				refid := t.SelectAttrValue("refid", "")
				frag, ok := fragments[refid]
				if !ok {
					return "", serrors.NewNotFoundError("sql fragment", refid)
				}
				text, err := flatten(frag, fragments, depth+1)
				if err != nil {
					return "", err
				}
				b.WriteString(strings.TrimSpace(text))
				continue
			}
			text, err := flatten(t, fragments, depth)
			if err != nil {
				return "", err
			}
			b.WriteString(text)
		}
	}
	return b.String(), nil
}

func (m *Mappers) install(ns string, statements []storagemodels.Statement) error {
	if _, exists := m.namespaces[ns]; exists {
		return serrors.NewAlreadyExistsError("mapper", ns)
	}
	table := make(map[string]storagemodels.Statement, len(statements))
	for _, stmt := range statements {
		stmt.Namespace = ns
		table[stmt.ID] = stmt
	}
	m.namespaces[ns] = table
	m.logger.Debug().Str("namespace", ns).Int("statements", len(table)).Msg("Mapper added")
	return nil
}

// Finalize installs the pending document parsed from location under ns.
func (m *Mappers) Finalize(ns, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.namespaces[ns]; exists {
		return nil
	}
	statements, ok := m.pending[location]
	if !ok {
		return serrors.NewNotFoundError("pending mapper", location)
	}
	delete(m.pending, location)
	return m.install(ns, statements)
}

// Has reports whether statements are installed for ns.
func (m *Mappers) Has(ns string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.namespaces[ns]
	return ok
}

// Lookup returns the statement ns.id.
func (m *Mappers) Lookup(ns, id string) (storagemodels.Statement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if stmt, ok := m.namespaces[ns][id]; ok {
		return stmt, nil
	}
	return storagemodels.Statement{}, serrors.NewNotFoundError("statement", ns+"."+id)
}

// Namespaces returns the installed namespaces, sorted.
func (m *Mappers) Namespaces() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.namespaces))
	for ns := range m.namespaces {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Interceptors is an ordered chain of statement interceptors.
type Interceptors struct {
	mu    sync.RWMutex
	chain []Interceptor
}

// Add appends i to the chain.
func (c *Interceptors) Add(i Interceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chain = append(c.chain, i)
}

// Run applies every interceptor in order, stopping at the first error.
func (c *Interceptors) Run(ctx context.Context, stmt storagemodels.Statement, params Params) error {
	c.mu.RLock()
	chain := append([]Interceptor(nil), c.chain...)
	c.mu.RUnlock()

	for _, i := range chain {
		if err := i.Intercept(ctx, stmt, params); err != nil {
			return fmt.Errorf("%s rejected %s: %w", i.Name(), stmt.QualifiedID(), err)
		}
	}
	return nil
}
