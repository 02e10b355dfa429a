/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/suparena/schemastore/codec"
	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/storagemodels"
)

// Dialect renders the placeholder for the n-th bound argument, counting from 1.
type Dialect func(n int) string

var (
	// Dollar renders $1, $2... as PostgreSQL expects
	Dollar Dialect = func(n int) string { return "$" + strconv.Itoa(n) }
	// Question renders ? for every argument
	Question Dialect = func(int) string { return "?" }
	// Colon renders :p0, :p1... as DynamoDB expression values
	Colon Dialect = func(n int) string { return ":p" + strconv.Itoa(n-1) }
)

var paramPattern = regexp.MustCompile(`#\{([^}]+)\}`)

// Bound is a statement rendered for execution.
type Bound struct {
	Text   string
	Args   []any
	Params []storagemodels.Param
}

// ParseParams returns the #{...} references of text in order.
func ParseParams(text string) []storagemodels.Param {
	var params []storagemodels.Param
	for _, m := range paramPattern.FindAllStringSubmatch(text, -1) {
		params = append(params, parseParam(m[1]))
	}
	return params
}

func parseParam(ref string) storagemodels.Param {
	parts := strings.Split(ref, ",")
	p := storagemodels.Param{Name: strings.TrimSpace(parts[0])}
	for _, opt := range parts[1:] {
		key, value, ok := strings.Cut(opt, "=")
		if ok && strings.TrimSpace(key) == "codec" {
			p.Codec = strings.TrimSpace(value)
		}
	}
	return p
}

// Bind renders the #{...} references of stmt with dialect and resolves
// their values from params. Values are encoded with the codec named in the
// reference, otherwise with the codec bound to their type. A nil codecs
// registry binds values unchanged.
func Bind(stmt storagemodels.Statement, params Params, codecs *codec.Registry, dialect Dialect) (Bound, error) {
	var (
		out      Bound
		bindErr  error
		position int
	)
	out.Text = paramPattern.ReplaceAllStringFunc(stmt.Text, func(match string) string {
		if bindErr != nil {
			return match
		}
		p := parseParam(match[2 : len(match)-1])
		v, ok := resolve(params, p.Name)
		if !ok {
			bindErr = serrors.NewValidationError(p.Name, fmt.Sprintf("no value bound for %s", stmt.QualifiedID()))
			return match
		}
		if codecs != nil {
			encoded, err := codecs.Encode(v, p.Codec)
			if err != nil {
				bindErr = fmt.Errorf("failed to encode %s: %w", p.Name, err)
				return match
			}
			v = encoded
		}
		position++
		out.Args = append(out.Args, v)
		out.Params = append(out.Params, p)
		return dialect(position)
	})
	if bindErr != nil {
		return Bound{}, bindErr
	}
	return out, nil
}

// resolve walks a dotted path through params, maps and struct fields.
func resolve(params Params, path string) (any, bool) {
	segments := strings.Split(path, ".")
	cur, ok := params[segments[0]]
	if !ok {
		return nil, false
	}
	for _, seg := range segments[1:] {
		v := reflect.ValueOf(cur)
		for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}
		switch v.Kind() {
		case reflect.Map:
			if v.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			item := v.MapIndex(reflect.ValueOf(seg).Convert(v.Type().Key()))
			if !item.IsValid() {
				return nil, false
			}
			cur = item.Interface()
		case reflect.Struct:
			field := v.FieldByName(seg)
			if !field.IsValid() || !field.CanInterface() {
				return nil, false
			}
			cur = field.Interface()
		default:
			return nil, false
		}
	}
	return cur, true
}
