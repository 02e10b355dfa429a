/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mapper

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/schemastore/access"
	serrors "github.com/suparena/schemastore/errors"
)

const barTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE mapper PUBLIC "-//mybatis.org//DTD Mapper 3.0//EN" "http://mybatis.org/dtd/mybatis-3-mapper.dtd">
<mapper namespace="${namespace}">
  <!-- rows for the ${prefix} format -->
  <update id="createSchema">
    CREATE TABLE IF NOT EXISTS ${prefix}_bar(id INT PRIMARY KEY)
  </update>
  <select id="count" resultType="int">SELECT COUNT(*) FROM ${prefix}_bar</select>
</mapper>
`

const fooOverride = `<?xml version="1.0" encoding="UTF-8"?>
<mapper namespace="${namespace}">
  <select id="extra" resultType="int">SELECT 42 FROM foo_bar</select>
</mapper>
`

var (
	barDAO    = access.DefineTemplate("org.example.BarDAO", "prefix")
	fooBarDAO = access.Define("org.example.FooBarDAO", access.Extends(barDAO))
	bazBarDAO = access.Define("org.example.BazBarDAO", access.Extends(barDAO))
)

func newAssembler(files fstest.MapFS) *Assembler {
	return NewAssembler(NewLoader(files), zerolog.Nop())
}

func TestAssembleWithoutOverride(t *testing.T) {
	a := newAssembler(fstest.MapFS{
		"org/example/BarDAO.xml": {Data: []byte(barTemplate)},
	})

	def, err := a.Assemble(context.Background(), fooBarDAO, "foo", barDAO)
	require.NoError(t, err)

	assert.Equal(t, "org.example.FooBarDAO", def.Namespace)
	assert.Equal(t, "foo", def.Prefix)
	assert.Equal(t, "prefix", def.Placeholder)
	assert.Equal(t, "/org/example/BarDAO.xml${prefix=foo}", def.Location)
	assert.Contains(t, def.Body, "CREATE TABLE IF NOT EXISTS foo_bar(id INT PRIMARY KEY)")
	assert.Contains(t, def.Body, `namespace="org.example.FooBarDAO"`)
	assert.Contains(t, def.Body, "rows for the foo format")
	assert.Contains(t, def.Body, "<!DOCTYPE mapper")
	assert.NotContains(t, def.Body, "${")
	assert.NotContains(t, def.Body, "<!-- org.example.FooBarDAO -->")
}

func TestAssembleAppendsOverrideOnce(t *testing.T) {
	a := newAssembler(fstest.MapFS{
		"org/example/BarDAO.xml":    {Data: []byte(barTemplate)},
		"org/example/FooBarDAO.xml": {Data: []byte(fooOverride)},
	})

	def, err := a.Assemble(context.Background(), fooBarDAO, "foo", barDAO)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(def.Body, `<select id="extra"`))
	assert.Equal(t, 1, strings.Count(def.Body, "<!-- org.example.FooBarDAO -->"))
	assert.Contains(t, def.Body, "SELECT 42 FROM foo_bar")
	assert.NotContains(t, def.Body, "${prefix}")

	// override content comes after the provenance comment and before the closing tag
	marker := strings.Index(def.Body, "<!-- org.example.FooBarDAO -->")
	extra := strings.Index(def.Body, `<select id="extra"`)
	closing := strings.LastIndex(def.Body, "</mapper>")
	assert.Less(t, strings.Index(def.Body, `<select id="count"`), marker)
	assert.Less(t, marker, extra)
	assert.Less(t, extra, closing)

	// instantiating the template for another prefix does not carry the override along
	other, err := a.Assemble(context.Background(), bazBarDAO, "baz", barDAO)
	require.NoError(t, err)
	assert.NotContains(t, other.Body, `id="extra"`)
	assert.Contains(t, other.Body, "baz_bar")
}

func TestAssembleKeepsOverrideVerbatim(t *testing.T) {
	const inner = `<select id="byFormat">SELECT * FROM t ORDER BY ${prefix}</select>`
	a := newAssembler(fstest.MapFS{
		"org/example/BarDAO.xml":    {Data: []byte(barTemplate)},
		"org/example/FooBarDAO.xml": {Data: []byte(`<mapper namespace="${namespace}">` + inner + `</mapper>`)},
	})

	def, err := a.Assemble(context.Background(), fooBarDAO, "foo", barDAO)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(def.Body, inner))
	assert.NotContains(t, def.Body, "ORDER BY foo")
	assert.Contains(t, def.Body, "CREATE TABLE IF NOT EXISTS foo_bar")
}

func TestAssembleSubstitutesOutsideRoot(t *testing.T) {
	const prolog = `<?xml version="1.0" encoding="UTF-8"?>
<?hint table=${prefix}_bar?>
<!-- ${namespace} for ${prefix} -->
<!DOCTYPE mapper SYSTEM "${prefix}-mapper.dtd">
`
	a := newAssembler(fstest.MapFS{
		"org/example/BarDAO.xml": {Data: []byte(prolog + barTemplate[strings.Index(barTemplate, "<mapper"):])},
	})

	def, err := a.Assemble(context.Background(), fooBarDAO, "foo", barDAO)
	require.NoError(t, err)

	assert.NotContains(t, def.Body, "${")
	assert.Contains(t, def.Body, "table=foo_bar")
	assert.Contains(t, def.Body, "<!-- org.example.FooBarDAO for foo -->")
	assert.Contains(t, def.Body, `"foo-mapper.dtd"`)
}

func TestAssembleNoPlaceholderLeftForAnyPrefix(t *testing.T) {
	a := newAssembler(fstest.MapFS{
		"org/example/BarDAO.xml":    {Data: []byte(barTemplate)},
		"org/example/FooBarDAO.xml": {Data: []byte(fooOverride)},
	})

	for _, prefix := range []string{"foo", "maven2", "npm", "x"} {
		t.Run(prefix, func(t *testing.T) {
			def, err := a.Assemble(context.Background(), fooBarDAO, prefix, barDAO)
			require.NoError(t, err)
			assert.NotContains(t, def.Body, "${prefix}")
			assert.NotContains(t, def.Body, "${namespace}")
			assert.Contains(t, def.Body, prefix+"_bar")
		})
	}
}

func TestAssembleMissingTemplate(t *testing.T) {
	a := newAssembler(fstest.MapFS{})

	_, err := a.Assemble(context.Background(), fooBarDAO, "foo", barDAO)
	require.Error(t, err)
	assert.True(t, serrors.IsMissingResource(err))
	assert.Contains(t, err.Error(), "/org/example/BarDAO.xml")
}

func TestAssembleMalformedTemplate(t *testing.T) {
	a := newAssembler(fstest.MapFS{
		"org/example/BarDAO.xml": {Data: []byte(`<mapper><update id="createSchema"></mapper>`)},
	})

	_, err := a.Assemble(context.Background(), fooBarDAO, "foo", barDAO)
	require.Error(t, err)
	assert.True(t, serrors.IsAssemblyParse(err))
	assert.Contains(t, err.Error(), "${prefix=foo}")
}

func TestAssembleMalformedOverride(t *testing.T) {
	a := newAssembler(fstest.MapFS{
		"org/example/BarDAO.xml":    {Data: []byte(barTemplate)},
		"org/example/FooBarDAO.xml": {Data: []byte(`<mapper><select id="extra">`)},
	})

	_, err := a.Assemble(context.Background(), fooBarDAO, "foo", barDAO)
	require.Error(t, err)
	assert.True(t, serrors.IsAssemblyParse(err))
}

func TestAssembleIgnoresOverrideWithoutMapperRoot(t *testing.T) {
	a := newAssembler(fstest.MapFS{
		"org/example/BarDAO.xml":    {Data: []byte(barTemplate)},
		"org/example/FooBarDAO.xml": {Data: []byte(`<configuration><select id="extra"/></configuration>`)},
	})

	def, err := a.Assemble(context.Background(), fooBarDAO, "foo", barDAO)
	require.NoError(t, err)
	assert.NotContains(t, def.Body, `id="extra"`)
}

func TestAssembleCancelledContext(t *testing.T) {
	a := newAssembler(fstest.MapFS{
		"org/example/BarDAO.xml": {Data: []byte(barTemplate)},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Assemble(ctx, fooBarDAO, "foo", barDAO)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoaderOptionalAndRequired(t *testing.T) {
	loader := NewLoader(fstest.MapFS{
		"org/example/BarDAO.xml": {Data: []byte(barTemplate)},
	})

	text, err := loader.Load(fooBarDAO, false)
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.False(t, loader.Exists(fooBarDAO))

	_, err = loader.Load(fooBarDAO, true)
	assert.True(t, serrors.IsMissingResource(err))

	text, err = loader.Load(barDAO, true)
	require.NoError(t, err)
	assert.Equal(t, barTemplate, text)
	assert.True(t, loader.Exists(barDAO))
}
