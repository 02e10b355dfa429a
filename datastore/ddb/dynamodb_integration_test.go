//go:build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/schemastore/datastore"
	"github.com/suparena/schemastore/storagemodels"
)

func integrationEngine(t *testing.T) datastore.SessionFactory {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, proceeding with environment variables")
	}
	if os.Getenv("AWS_REGION") == "" {
		t.Skip("AWS_REGION not set")
	}

	engine, err := Open(context.Background(), datastore.Config{
		StoreName: "it",
		Attributes: map[string]string{
			AttrRegion:      os.Getenv("AWS_REGION"),
			AttrAccessKey:   os.Getenv("AWS_ACCESS_KEY"),
			AttrSecretKey:   os.Getenv("AWS_SECRET_KEY"),
			AttrEndpoint:    os.Getenv("AWS_DDB_ENDPOINT"),
			AttrTablePrefix: "schemastore_it_",
		},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, engine.Parse(context.Background(), storagemodels.Source{Location: "asset.xml", Body: assetMapper}))
	return engine
}

func TestDynamoDBRoundTrip(t *testing.T) {
	ctx := context.Background()
	engine := integrationEngine(t)
	defer engine.Close()

	session, err := engine.OpenSession(ctx)
	require.NoError(t, err)
	defer session.Close()

	_, err = session.Exec(ctx, "org.example.AssetDAO", "createSchema", nil)
	require.NoError(t, err)

	params := datastore.Params{"id": "it-1", "path": "/it/a.jar", "kind": "maven", "size": 1}
	_, err = session.Exec(ctx, "org.example.AssetDAO", "delete", params)
	require.NoError(t, err)
	require.NoError(t, session.Commit(ctx))

	_, err = session.Exec(ctx, "org.example.AssetDAO", "create", params)
	require.NoError(t, err)
	require.NoError(t, session.Commit(ctx))

	rows, err := session.Select(ctx, "org.example.AssetDAO", "read", params)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ASSET#it-1", rows[0]["PK"])

	rows, err = session.Select(ctx, "org.example.AssetDAO", "byKind", datastore.Params{"kind": "KIND#maven"})
	require.NoError(t, err)
	t.Logf("GSI1 returned %d items", len(rows))
}
