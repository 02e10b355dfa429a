/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package access

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/suparena/schemastore/errors"
)

type testAsset struct{ Path string }

type testQuery struct{ Limit int }

func TestDescriptorNaming(t *testing.T) {
	d := Define("org.example.content.MavenAssetDAO")

	assert.Equal(t, "org.example.content.MavenAssetDAO", d.Name())
	assert.Equal(t, "MavenAssetDAO", d.SimpleName())
	assert.Equal(t, "org.example.content", d.Namespace())
	assert.Equal(t, "/org/example/content/MavenAssetDAO.xml", d.ResourcePath())
	assert.False(t, d.IsTemplate())
	assert.Empty(t, d.Placeholder())
}

func TestDescriptorWithoutNamespace(t *testing.T) {
	d := Define("FooDAO")

	assert.Equal(t, "FooDAO", d.SimpleName())
	assert.Empty(t, d.Namespace())
	assert.Equal(t, "/FooDAO.xml", d.ResourcePath())
}

func TestTemplateDescriptor(t *testing.T) {
	component := DefineTemplate("org.example.ComponentDAO", "prefix")
	asset := DefineTemplate("org.example.AssetDAO", "prefix", Expects(component))

	assert.True(t, asset.IsTemplate())
	assert.Equal(t, "prefix", asset.Placeholder())
	assert.Equal(t, []*Descriptor{component}, asset.Expected())
}

func TestAssignableTo(t *testing.T) {
	base := Define("org.example.DataAccess")
	template := DefineTemplate("org.example.AssetDAO", "prefix", Extends(base))
	concrete := Define("org.example.MavenAssetDAO", Extends(template))
	other := Define("org.example.OtherDAO")

	assert.True(t, concrete.AssignableTo(template))
	assert.True(t, concrete.AssignableTo(base))
	assert.True(t, concrete.AssignableTo(concrete))
	assert.False(t, concrete.AssignableTo(other))
	assert.False(t, template.AssignableTo(concrete))
}

func TestValueTypesIncludeInheritedMethods(t *testing.T) {
	assetType := reflect.TypeFor[testAsset]()
	queryType := reflect.TypeFor[testQuery]()
	timeType := reflect.TypeFor[time.Time]()

	template := DefineTemplate("org.example.AssetDAO", "prefix",
		WithMethods(NewMethod("browse", []reflect.Type{queryType}, reflect.TypeFor[[]testAsset]())))
	concrete := Define("org.example.MavenAssetDAO", Extends(template),
		WithMethods(
			NewMethod("read", []reflect.Type{reflect.TypeFor[string]()}, assetType),
			NewMethod("touch", []reflect.Type{assetType, timeType}),
		))

	types := concrete.ValueTypes()
	assert.Equal(t, []reflect.Type{
		reflect.TypeFor[string](),
		assetType,
		timeType,
		queryType,
		reflect.TypeFor[[]testAsset](),
	}, types)
}

func TestSupertypesAreCopies(t *testing.T) {
	template := DefineTemplate("org.example.AssetDAO", "prefix")
	concrete := Define("org.example.MavenAssetDAO", Extends(template))

	parents := concrete.Supertypes()
	parents[0] = nil

	assert.Equal(t, template, concrete.Supertypes()[0])
}

func TestReadManifest(t *testing.T) {
	manifest := `
descriptors:
  - name: org.example.MavenAssetDAO
    extends: [org.example.AssetDAO]
  - name: org.example.AssetDAO
    placeholder: prefix
    expects: [org.example.ComponentDAO]
  - name: org.example.ComponentDAO
    placeholder: prefix
`
	descriptors, err := ReadManifest(strings.NewReader(manifest))
	require.NoError(t, err)
	require.Len(t, descriptors, 3)

	maven, asset, component := descriptors[0], descriptors[1], descriptors[2]
	assert.False(t, maven.IsTemplate())
	assert.Equal(t, []*Descriptor{asset}, maven.Supertypes())
	assert.True(t, asset.IsTemplate())
	assert.Equal(t, []*Descriptor{component}, asset.Expected())
	assert.True(t, maven.AssignableTo(asset))
}

func TestReadManifestUnknownReference(t *testing.T) {
	manifest := `
descriptors:
  - name: org.example.MavenAssetDAO
    extends: [org.example.AssetDAO]
`
	_, err := ReadManifest(strings.NewReader(manifest))
	require.Error(t, err)
	assert.True(t, serrors.IsNotFound(err))
}

func TestReadManifestDuplicate(t *testing.T) {
	manifest := `
descriptors:
  - name: org.example.AssetDAO
  - name: org.example.AssetDAO
`
	_, err := ReadManifest(strings.NewReader(manifest))
	assert.True(t, serrors.IsAlreadyExists(err))
}

func TestReadManifestEmpty(t *testing.T) {
	descriptors, err := ReadManifest(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, descriptors)
}
