/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mapper

import (
	"context"
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/suparena/schemastore/access"
	serrors "github.com/suparena/schemastore/errors"
)

// RootTag is the root element of every mapper document.
const RootTag = "mapper"

// Assembler merges a schema template with the override of the concrete
// access type instantiating it.
type Assembler struct {
	loader *Loader
	logger zerolog.Logger
}

// NewAssembler creates an assembler reading sources through loader.
func NewAssembler(loader *Loader, logger zerolog.Logger) *Assembler {
	return &Assembler{loader: loader, logger: logger}
}

// Loader returns the loader the assembler reads sources with.
func (a *Assembler) Loader() *Loader {
	return a.loader
}

// Assemble produces the definition of d, which instantiates tmpl under prefix.
//
// ${namespace} is replaced by the name of d and ${<placeholder>} by prefix
// everywhere in the template document, including tokens outside the root
// element. When d has its own source, the children of its root element are
// then appended to the template root after a comment naming d, unchanged.
func (a *Assembler) Assemble(ctx context.Context, d *access.Descriptor, prefix string, tmpl *access.Descriptor) (*Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	location := Location(tmpl.ResourcePath(), tmpl.Placeholder(), prefix)

	templateText, err := a.loader.Load(tmpl, true)
	if err != nil {
		return nil, err
	}
	doc, err := a.parse(templateText, location)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	substituteDocument(doc, strings.NewReplacer(
		"${namespace}", d.Name(),
		"${"+tmpl.Placeholder()+"}", prefix,
	))

	overrideText, err := a.loader.Load(d, false)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(overrideText) != "" {
		override, err := a.parse(overrideText, d.ResourcePath())
		if err != nil {
			return nil, err
		}
		if extra := override.Root(); extra.Tag == RootTag {
			root.CreateComment(" " + d.Name() + " ")
			for _, child := range append([]etree.Token(nil), extra.Child...) {
				root.AddChild(child)
			}
		} else {
			a.logger.Debug().Str("tag", extra.Tag).Str("location", d.ResourcePath()).
				Msg("Ignoring override without mapper root")
		}
	}

	body, err := doc.WriteToString()
	if err != nil {
		return nil, serrors.NewAssemblyParseError(location, err)
	}
	a.logger.Trace().Str("location", location).Msg(body)

	return &Definition{
		Namespace:   d.Name(),
		Prefix:      prefix,
		Placeholder: tmpl.Placeholder(),
		Location:    location,
		Body:        body,
	}, nil
}

func (a *Assembler) parse(text, location string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		a.logger.Warn().Err(err).Str("location", location).Msg(text)
		return nil, serrors.NewAssemblyParseError(location, err)
	}
	if doc.Root() == nil {
		a.logger.Warn().Str("location", location).Msg(text)
		return nil, serrors.NewAssemblyParseError(location, errNoRoot)
	}
	return doc, nil
}

// substituteDocument applies r to every token of doc, the prolog included.
func substituteDocument(doc *etree.Document, r *strings.Replacer) {
	substituteTokens(doc.Child, r)
}

// substitute applies r to the attribute values and every token below el.
func substitute(el *etree.Element, r *strings.Replacer) {
	for i := range el.Attr {
		el.Attr[i].Value = r.Replace(el.Attr[i].Value)
	}
	substituteTokens(el.Child, r)
}

func substituteTokens(tokens []etree.Token, r *strings.Replacer) {
	for _, tok := range tokens {
		switch t := tok.(type) {
		case *etree.Element:
			substitute(t, r)
		case *etree.CharData:
			t.Data = r.Replace(t.Data)
		case *etree.Comment:
			t.Data = r.Replace(t.Data)
		case *etree.ProcInst:
			t.Inst = r.Replace(t.Inst)
		case *etree.Directive:
			t.Data = r.Replace(t.Data)
		}
	}
}
