/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/suparena/schemastore/datastore"
	"github.com/suparena/schemastore/datastore/mock"
	"github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/storagemodels"
)

const fooMapper = `<mapper namespace="org.example.FooDAO">
  <update id="createSchema">CREATE TABLE foo (id VARCHAR PRIMARY KEY)</update>
  <insert id="create">INSERT INTO foo VALUES (#{id})</insert>
  <select id="read">SELECT * FROM foo WHERE id = #{id}</select>
</mapper>`

func startEngine(t *testing.T, engine *mock.Engine) datastore.SessionFactory {
	t.Helper()
	factory, err := engine.Factory()(context.Background(), datastore.Config{
		StoreName: "content",
		Sources:   fstest.MapFS{"org/example/FooDAO.xml": {Data: []byte(fooMapper)}},
	})
	require.NoError(t, err)
	require.NoError(t, factory.AddMapper(context.Background(), "org.example.FooDAO", "/org/example/FooDAO.xml"))
	return factory
}

func TestMockEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("CommitRecordsStatements", func(t *testing.T) {
		engine := mock.New()
		factory := startEngine(t, engine)

		session, err := factory.OpenSession(ctx)
		require.NoError(t, err)
		defer session.Close()

		n, err := session.Exec(ctx, "org.example.FooDAO", "create", datastore.Params{"id": "a"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.Empty(t, engine.Committed())

		require.NoError(t, session.Commit(ctx))
		committed := engine.Committed()
		require.Len(t, committed, 1)
		assert.Equal(t, storagemodels.KindInsert, committed[0].Kind)
		assert.Equal(t, "INSERT INTO foo VALUES (?)", committed[0].Text)
		assert.Equal(t, []any{"a"}, committed[0].Args)
		assert.Equal(t, 1, engine.Count("org.example.FooDAO", "create"))
	})

	t.Run("RollbackDiscards", func(t *testing.T) {
		engine := mock.New()
		factory := startEngine(t, engine)

		session, err := factory.OpenSession(ctx)
		require.NoError(t, err)
		_, err = session.Exec(ctx, "org.example.FooDAO", "createSchema", nil)
		require.NoError(t, err)
		require.NoError(t, session.Rollback(ctx))
		require.NoError(t, session.Close())

		assert.Empty(t, engine.Committed())
	})

	t.Run("ErrorSimulation", func(t *testing.T) {
		engine := mock.New()
		factory := startEngine(t, engine)
		failure := errors.NewValidationError("schema", "boom")
		engine.WithExecError("createSchema", failure)

		session, err := factory.OpenSession(ctx)
		require.NoError(t, err)
		defer session.Close()

		_, err = session.Exec(ctx, "org.example.FooDAO", "createSchema", nil)
		assert.Equal(t, failure, err)

		engine.ClearExecErrors()
		_, err = session.Exec(ctx, "org.example.FooDAO", "createSchema", nil)
		assert.NoError(t, err)
	})

	t.Run("UnknownStatement", func(t *testing.T) {
		factory := startEngine(t, mock.New())
		session, err := factory.OpenSession(ctx)
		require.NoError(t, err)
		defer session.Close()

		_, err = session.Exec(ctx, "org.example.FooDAO", "missing", nil)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("SelectResults", func(t *testing.T) {
		rows := []map[string]any{{"id": "a"}}
		engine := mock.New().WithSelectResult("org.example.FooDAO.read", rows)
		factory := startEngine(t, engine)

		session, err := factory.OpenSession(ctx)
		require.NoError(t, err)
		defer session.Close()

		got, err := session.Select(ctx, "org.example.FooDAO", "read", datastore.Params{"id": "a"})
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})

	t.Run("StartError", func(t *testing.T) {
		failure := errors.NewValidationError("url", "bad")
		_, err := mock.New().WithStartError(failure).Factory()(ctx, datastore.Config{})
		assert.Equal(t, failure, err)
	})

	t.Run("ClosedEngine", func(t *testing.T) {
		engine := mock.New()
		factory := startEngine(t, engine)
		require.NoError(t, factory.Close())

		_, err := factory.OpenSession(ctx)
		assert.ErrorIs(t, err, errors.ErrNotStarted)
		assert.True(t, engine.Closed())
	})
}

func TestMockBackup(t *testing.T) {
	ctx := context.Background()
	engine := mock.New()
	factory := startEngine(t, engine)

	session, err := factory.OpenSession(ctx)
	require.NoError(t, err)
	_, err = session.Exec(ctx, "org.example.FooDAO", "createSchema", nil)
	require.NoError(t, err)
	require.NoError(t, session.Commit(ctx))
	require.NoError(t, session.Close())

	location := filepath.Join(t.TempDir(), "backup.yaml")
	require.NoError(t, factory.Backup(ctx, location))

	data, err := os.ReadFile(location)
	require.NoError(t, err)

	var snap struct {
		Store      string                     `yaml:"store"`
		Namespaces []string                   `yaml:"namespaces"`
		Executed   []storagemodels.ExecRecord `yaml:"executed"`
	}
	require.NoError(t, yaml.Unmarshal(data, &snap))
	assert.Equal(t, "content", snap.Store)
	assert.Equal(t, []string{"org.example.FooDAO"}, snap.Namespaces)
	require.Len(t, snap.Executed, 1)
	assert.Equal(t, "createSchema", snap.Executed[0].ID)
}
