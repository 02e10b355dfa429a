/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package testmodels holds a small rating-system access family used by tests
// across the engines.
package testmodels

import (
	"embed"
	"io/fs"
	"reflect"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/schemastore/access"
	"github.com/suparena/schemastore/ident"
)

//go:embed mappers
var mappers embed.FS

// Sources returns the mapper documents of the rating family, rooted so that
// descriptor resource paths resolve against it.
func Sources() fs.FS {
	sub, err := fs.Sub(mappers, "mappers")
	if err != nil {
		panic(err)
	}
	return sub
}

type RatingSystem struct {

	// Timestamp when the rating system was created.
	// Required: true
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"CreatedAt"`

	// A description of the rating system.
	// Required: true
	Description *string `json:"Description"`

	// Unique identifier for the rating system.
	// Required: true
	ID ident.EntityID `json:"Id"`

	// Name of the rating system.
	// Required: true
	Name *string `json:"Name"`

	// site Url
	SiteURL string `json:"SiteUrl,omitempty"`

	// Timestamp when the rating system was last updated.
	// Required: true
	// Format: date-time
	UpdatedAt *strfmt.DateTime `json:"UpdatedAt"`
}

func (r *RatingSystem) EntityID() ident.EntityID { return r.ID }

func (r *RatingSystem) SetEntityID(id ident.EntityID) { r.ID = id }

// Rating is one player rating within a system.
type Rating struct {
	PlayerID string  `json:"PlayerId"`
	SystemID string  `json:"SystemId"`
	Value    float64 `json:"Value"`
}

var (
	// RatingSystemDAO is a plain access type owning the rating_system table.
	RatingSystemDAO = access.Define("org.suparena.rating.RatingSystemDAO",
		access.WithMethods(
			access.NewMethod("create", []reflect.Type{reflect.TypeFor[*RatingSystem]()}),
			access.NewMethod("read", []reflect.Type{reflect.TypeFor[string]()}, reflect.TypeFor[*RatingSystem]()),
		))

	// RatingDAO is the template of per-system rating tables.
	RatingDAO = access.DefineTemplate("org.suparena.rating.RatingDAO", "system",
		access.Expects(RatingSystemDAO),
		access.WithMethods(
			access.NewMethod("put", []reflect.Type{reflect.TypeFor[Rating]()}),
			access.NewMethod("browse", []reflect.Type{reflect.TypeFor[string]()}, reflect.TypeFor[[]Rating]()),
		))

	// EloRatingDAO stores Elo ratings in elo_rating.
	EloRatingDAO = access.Define("org.suparena.rating.EloRatingDAO", access.Extends(RatingDAO))

	// GlickoRatingDAO stores Glicko ratings in glicko_rating.
	GlickoRatingDAO = access.Define("org.suparena.rating.GlickoRatingDAO", access.Extends(RatingDAO))
)

// Descriptors lists the family, templates included.
func Descriptors() []*access.Descriptor {
	return []*access.Descriptor{RatingSystemDAO, RatingDAO, EloRatingDAO, GlickoRatingDAO}
}
