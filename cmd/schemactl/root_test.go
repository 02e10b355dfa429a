/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
logging:
  verbosity: 0
mappers: mappers
manifest: descriptors.yaml
stores:
  content:
    engine: mock
`

const testManifest = `
descriptors:
  - name: org.example.BarDAO
    placeholder: prefix
  - name: org.example.FooBarDAO
    extends: [org.example.BarDAO]
  - name: org.example.AuditDAO
`

const testTemplate = `<mapper namespace="${namespace}">
  <update id="createSchema">CREATE TABLE IF NOT EXISTS ${prefix}_bar (id VARCHAR PRIMARY KEY)</update>
</mapper>`

const testAudit = `<mapper namespace="org.example.AuditDAO">
  <update id="createSchema">CREATE TABLE IF NOT EXISTS audit (id VARCHAR PRIMARY KEY)</update>
</mapper>`

func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"schemastore.yaml":                testConfig,
		"descriptors.yaml":                testManifest,
		"mappers/org/example/BarDAO.xml":   testTemplate,
		"mappers/org/example/AuditDAO.xml": testAudit,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return filepath.Join(dir, "schemastore.yaml")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "schemactl version")
	assert.Contains(t, out, "go:")
}

func TestRenderCommand(t *testing.T) {
	cfg := setupProject(t)

	out, err := run(t, "render", "org.example.FooBarDAO", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `namespace="org.example.FooBarDAO"`)
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS foo_bar")

	out, err = run(t, "render", "org.example.AuditDAO", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS audit")

	_, err = run(t, "render", "org.example.MissingDAO", "--config", cfg)
	assert.Error(t, err)
}

func TestRegisterCommand(t *testing.T) {
	cfg := setupProject(t)

	out, err := run(t, "register", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "content: registered org.example.FooBarDAO")
	assert.Contains(t, out, "content: registered org.example.AuditDAO")
	assert.NotContains(t, out, "org.example.BarDAO")

	out, err = run(t, "register", "org.example.AuditDAO", "--store", "content", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "content: registered org.example.AuditDAO\n", out)

	_, err = run(t, "register", "--store", "blobs", "--config", cfg)
	assert.Error(t, err)
}

func TestBackupCommand(t *testing.T) {
	cfg := setupProject(t)
	location := filepath.Join(t.TempDir(), "content.yaml")

	out, err := run(t, "backup", location, "--store", "content", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "backed up to")
	assert.FileExists(t, location)
}

func TestUnknownEngine(t *testing.T) {
	_, err := factoryFor("oracle")
	assert.Error(t, err)
}
