// Package template classifies access types as templated or plain, derives the
// prefix a concrete type instantiates its template with, and resolves the
// sibling types a template expects for the same prefix.
package template
