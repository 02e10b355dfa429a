/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/schemastore/datastore"
	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/storagemodels"
)

const assetMapper = `<mapper namespace="org.example.AssetDAO">
  <createTable id="createSchema" table="asset">
    GSI1 = GSI1PK GSI1SK
  </createTable>
  <put id="create" table="asset" condition="attribute_not_exists(PK)">
    PK = ASSET#{id}
    SK = PATH#{path}
    GSI1PK = KIND#{kind}
  </put>
  <get id="read" table="asset">
    PK = ASSET#{id}
    SK = PATH#{path}
  </get>
  <remove id="delete" table="asset">
    PK = ASSET#{id}
    SK = PATH#{path}
  </remove>
  <update id="touch" table="asset" set="size, lastUpdated">
    PK = ASSET#{id}
    SK = PATH#{path}
  </update>
  <select id="byKind" table="asset" index="GSI1" limit="3">
    GSI1PK = #{kind}
  </select>
  <select id="sqlOnly" databaseId="postgresql" table="asset">SELECT 1</select>
</mapper>`

// fakeClient records requests and serves canned responses.
type fakeClient struct {
	mu           sync.Mutex
	created      []*sdk.CreateTableInput
	createErr    error
	transactions []*sdk.TransactWriteItemsInput
	queries      []*sdk.QueryInput
	pages        []*sdk.QueryOutput
	queryErrs    []error
	item         map[string]types.AttributeValue
	backups      []*sdk.CreateBackupInput
}

func (f *fakeClient) CreateTable(_ context.Context, in *sdk.CreateTableInput, _ ...func(*sdk.Options)) (*sdk.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	return &sdk.CreateTableOutput{}, f.createErr
}

func (f *fakeClient) DescribeTable(_ context.Context, in *sdk.DescribeTableInput, _ ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error) {
	return &sdk.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusActive,
	}}, nil
}

func (f *fakeClient) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	return &sdk.GetItemOutput{Item: f.item}, nil
}

func (f *fakeClient) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, in)
	if len(f.queryErrs) > 0 {
		err := f.queryErrs[0]
		f.queryErrs = f.queryErrs[1:]
		return nil, err
	}
	if len(f.pages) == 0 {
		return &sdk.QueryOutput{}, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeClient) TransactWriteItems(_ context.Context, in *sdk.TransactWriteItemsInput, _ ...func(*sdk.Options)) (*sdk.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions = append(f.transactions, in)
	return &sdk.TransactWriteItemsOutput{}, nil
}

func (f *fakeClient) CreateBackup(_ context.Context, in *sdk.CreateBackupInput, _ ...func(*sdk.Options)) (*sdk.CreateBackupOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backups = append(f.backups, in)
	return &sdk.CreateBackupOutput{BackupDetails: &types.BackupDetails{BackupArn: aws.String("arn:backup")}}, nil
}

func newEngine(t *testing.T, client *fakeClient, attrs map[string]string) *Engine {
	t.Helper()
	e, err := New(client, datastore.Config{StoreName: "content", Attributes: attrs, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NoError(t, e.Parse(context.Background(), storagemodels.Source{Location: "asset.xml", Body: assetMapper}))
	return e
}

func s(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

func TestCreateTable(t *testing.T) {
	client := &fakeClient{}
	e := newEngine(t, client, map[string]string{AttrTablePrefix: "test_"})
	session, err := e.OpenSession(context.Background())
	require.NoError(t, err)

	n, err := session.Exec(context.Background(), "org.example.AssetDAO", "createSchema", nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.Len(t, client.created, 1)
	in := client.created[0]
	assert.Equal(t, "test_asset", aws.ToString(in.TableName))
	assert.Equal(t, types.BillingModePayPerRequest, in.BillingMode)
	require.Len(t, in.KeySchema, 2)
	assert.Equal(t, "PK", aws.ToString(in.KeySchema[0].AttributeName))
	assert.Equal(t, types.KeyTypeRange, in.KeySchema[1].KeyType)
	require.Len(t, in.GlobalSecondaryIndexes, 1)
	assert.Equal(t, "GSI1", aws.ToString(in.GlobalSecondaryIndexes[0].IndexName))
	assert.Len(t, in.AttributeDefinitions, 4)

	assert.Equal(t, []string{"test_asset"}, e.Tables())
}

func TestCreateTableAlreadyExists(t *testing.T) {
	client := &fakeClient{createErr: &types.ResourceInUseException{Message: aws.String("exists")}}
	e := newEngine(t, client, nil)
	session, _ := e.OpenSession(context.Background())

	_, err := session.Exec(context.Background(), "org.example.AssetDAO", "createSchema", nil)
	require.NoError(t, err)
	_, err = session.Exec(context.Background(), "org.example.AssetDAO", "createSchema", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"asset"}, e.Tables())
}

func TestWritesCommitAsOneTransaction(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{}
	e := newEngine(t, client, nil)
	session, _ := e.OpenSession(ctx)

	params := datastore.Params{"id": "a1", "path": "/x/y.jar", "kind": "maven", "size": 42, "lastUpdated": "today"}
	_, err := session.Exec(ctx, "org.example.AssetDAO", "create", params)
	require.NoError(t, err)
	_, err = session.Exec(ctx, "org.example.AssetDAO", "touch", params)
	require.NoError(t, err)
	_, err = session.Exec(ctx, "org.example.AssetDAO", "delete", params)
	require.NoError(t, err)
	assert.Empty(t, client.transactions)

	require.NoError(t, session.Commit(ctx))
	require.Len(t, client.transactions, 1)
	items := client.transactions[0].TransactItems
	require.Len(t, items, 3)

	put := items[0].Put
	require.NotNil(t, put)
	assert.Equal(t, s("ASSET#a1"), put.Item["PK"])
	assert.Equal(t, s("PATH#/x/y.jar"), put.Item["SK"])
	assert.Equal(t, s("KIND#maven"), put.Item["GSI1PK"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "42"}, put.Item["size"])
	assert.Equal(t, "attribute_not_exists(PK)", aws.ToString(put.ConditionExpression))

	update := items[1].Update
	require.NotNil(t, update)
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1", aws.ToString(update.UpdateExpression))
	assert.Equal(t, map[string]string{"#f0": "lastUpdated", "#f1": "size"}, update.ExpressionAttributeNames)

	del := items[2].Delete
	require.NotNil(t, del)
	assert.Equal(t, map[string]types.AttributeValue{"PK": s("ASSET#a1"), "SK": s("PATH#/x/y.jar")}, del.Key)

	// a committed session starts empty
	require.NoError(t, session.Commit(ctx))
	assert.Len(t, client.transactions, 1)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{}
	e := newEngine(t, client, nil)
	session, _ := e.OpenSession(ctx)

	_, err := session.Exec(ctx, "org.example.AssetDAO", "delete", datastore.Params{"id": "a1", "path": "p"})
	require.NoError(t, err)
	require.NoError(t, session.Rollback(ctx))
	require.NoError(t, session.Commit(ctx))
	assert.Empty(t, client.transactions)
}

func TestMissingMacroValue(t *testing.T) {
	e := newEngine(t, &fakeClient{}, nil)
	session, _ := e.OpenSession(context.Background())

	_, err := session.Exec(context.Background(), "org.example.AssetDAO", "delete", datastore.Params{"id": "a1"})
	assert.True(t, serrors.IsValidationError(err))
}

func TestTransactionLimit(t *testing.T) {
	e := newEngine(t, &fakeClient{}, nil)
	session, _ := e.OpenSession(context.Background())

	for i := 0; i < maxTransactItems; i++ {
		_, err := session.Exec(context.Background(), "org.example.AssetDAO", "delete", datastore.Params{"id": fmt.Sprint(i), "path": "p"})
		require.NoError(t, err)
	}
	_, err := session.Exec(context.Background(), "org.example.AssetDAO", "delete", datastore.Params{"id": "over", "path": "p"})
	assert.True(t, serrors.IsValidationError(err))
}

func TestGetItem(t *testing.T) {
	client := &fakeClient{item: map[string]types.AttributeValue{"PK": s("ASSET#a1"), "size": &types.AttributeValueMemberN{Value: "7"}}}
	e := newEngine(t, client, nil)
	session, _ := e.OpenSession(context.Background())

	rows, err := session.Select(context.Background(), "org.example.AssetDAO", "read", datastore.Params{"id": "a1", "path": "p"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ASSET#a1", rows[0]["PK"])
	assert.Equal(t, float64(7), rows[0]["size"])

	client.item = nil
	rows, err = session.Select(context.Background(), "org.example.AssetDAO", "read", datastore.Params{"id": "a2", "path": "p"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func page(lastKey bool, ids ...string) *sdk.QueryOutput {
	out := &sdk.QueryOutput{}
	for _, id := range ids {
		item, _ := attributevalue.MarshalMap(map[string]any{"PK": id})
		out.Items = append(out.Items, item)
	}
	if lastKey {
		out.LastEvaluatedKey = map[string]types.AttributeValue{"PK": s(ids[len(ids)-1])}
	}
	return out
}

func TestQueryFollowsPagesUpToLimit(t *testing.T) {
	client := &fakeClient{pages: []*sdk.QueryOutput{page(true, "a", "b"), page(true, "c", "d"), page(false, "e")}}
	e := newEngine(t, client, nil)
	session, _ := e.OpenSession(context.Background())

	rows, err := session.Select(context.Background(), "org.example.AssetDAO", "byKind", datastore.Params{"kind": "KIND#maven"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "c", rows[2]["PK"])

	require.Len(t, client.queries, 2)
	first := client.queries[0]
	assert.Equal(t, "GSI1PK = :p0", aws.ToString(first.KeyConditionExpression))
	assert.Equal(t, "GSI1", aws.ToString(first.IndexName))
	assert.Equal(t, s("KIND#maven"), first.ExpressionAttributeValues[":p0"])
	assert.Equal(t, s("b"), client.queries[1].ExclusiveStartKey["PK"])
}

func TestQueryRetriesThrottling(t *testing.T) {
	client := &fakeClient{
		queryErrs: []error{&types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}},
		pages:     []*sdk.QueryOutput{page(false, "a")},
	}
	e := newEngine(t, client, map[string]string{AttrRetryBackoff: "1"})
	session, _ := e.OpenSession(context.Background())

	rows, err := session.Select(context.Background(), "org.example.AssetDAO", "byKind", datastore.Params{"kind": "k"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Len(t, client.queries, 2)
}

func TestQueryDoesNotRetryOtherErrors(t *testing.T) {
	boom := errors.New("access denied")
	client := &fakeClient{queryErrs: []error{boom}}
	e := newEngine(t, client, nil)
	session, _ := e.OpenSession(context.Background())

	_, err := session.Select(context.Background(), "org.example.AssetDAO", "byKind", datastore.Params{"kind": "k"})
	require.ErrorIs(t, err, boom)
	assert.Len(t, client.queries, 1)
}

func TestVendorStatementsFiltered(t *testing.T) {
	e := newEngine(t, &fakeClient{}, nil)
	_, err := e.mappers.Lookup("org.example.AssetDAO", "sqlOnly")
	assert.True(t, serrors.IsNotFound(err))
}

func TestBackupCreatedTables(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{}
	e := newEngine(t, client, nil)

	require.NoError(t, e.Backup(ctx, "nightly"))
	assert.Empty(t, client.backups)

	session, _ := e.OpenSession(ctx)
	_, err := session.Exec(ctx, "org.example.AssetDAO", "createSchema", nil)
	require.NoError(t, err)

	require.NoError(t, e.Backup(ctx, "/backups/2025 nightly"))
	require.Len(t, client.backups, 1)
	assert.Equal(t, "backups-2025-nightly-asset", aws.ToString(client.backups[0].BackupName))
	assert.Equal(t, "asset", aws.ToString(client.backups[0].TableName))
}

func TestNewRejectsBadAttributes(t *testing.T) {
	_, err := New(&fakeClient{}, datastore.Config{Attributes: map[string]string{AttrMaxRetries: "many"}})
	assert.True(t, serrors.IsValidationError(err))
}
