// Package ident defines entity ids and the interceptor that allocates them
// when entities are inserted.
package ident
