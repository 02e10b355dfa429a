/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "strings"

// StatementKind is the element name a statement was declared with.
type StatementKind string

const (
	KindSelect      StatementKind = "select"
	KindInsert      StatementKind = "insert"
	KindUpdate      StatementKind = "update"
	KindDelete      StatementKind = "delete"
	KindCreateTable StatementKind = "createTable"
	KindPut         StatementKind = "put"
	KindGet         StatementKind = "get"
	KindRemove      StatementKind = "remove"
)

// Kinds lists every statement element a mapper may declare.
var Kinds = []StatementKind{
	KindSelect, KindInsert, KindUpdate, KindDelete,
	KindCreateTable, KindPut, KindGet, KindRemove,
}

// IsStatementKind reports whether tag names a statement element.
func IsStatementKind(tag string) bool {
	for _, k := range Kinds {
		if string(k) == tag {
			return true
		}
	}
	return false
}

// Writes reports whether statements of this kind modify stored data.
func (k StatementKind) Writes() bool {
	switch k {
	case KindInsert, KindUpdate, KindDelete, KindPut, KindRemove, KindCreateTable:
		return true
	}
	return false
}

// Source is one mapper document handed to an engine for parsing.
type Source struct {
	// Namespace is the access type the document belongs to
	Namespace string
	// Location identifies the document in diagnostics
	Location string
	// Body is the XML text
	Body string
}

// Param is a #{name} or #{name,codec=X} reference inside statement text.
type Param struct {
	Name  string
	Codec string
}

// Statement is one parsed statement of a mapper.
type Statement struct {
	Namespace  string
	ID         string
	Kind       StatementKind
	DatabaseID string
	// Text is the statement body with <include> fragments expanded
	Text string
	// Attrs holds the remaining element attributes (resultType, table, index...)
	Attrs map[string]string
}

// QualifiedID returns namespace.id.
func (s Statement) QualifiedID() string {
	return s.Namespace + "." + s.ID
}

// Attr returns the named attribute or dflt.
func (s Statement) Attr(name, dflt string) string {
	if v, ok := s.Attrs[name]; ok && v != "" {
		return v
	}
	return dflt
}

// Lines splits Text into trimmed, non-empty lines.
func (s Statement) Lines() []string {
	var lines []string
	for _, line := range strings.Split(s.Text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ExecRecord describes one executed statement.
type ExecRecord struct {
	Namespace string        `yaml:"namespace"`
	ID        string        `yaml:"id"`
	Kind      StatementKind `yaml:"kind"`
	Text      string        `yaml:"text"`
	Args      []any         `yaml:"args,omitempty"`
}
