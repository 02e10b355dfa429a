/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/storagemodels"
)

// GSIConfig holds the key attributes of a global secondary index
type GSIConfig struct {
	// IndexName is the actual GSI name in DynamoDB (e.g., "GSI1")
	IndexName string
	// PartitionKeyName is the partition key attribute of the GSI (e.g., "GSI1PK")
	PartitionKeyName string
	// SortKeyName is the optional sort key attribute of the GSI (e.g., "GSI1SK")
	SortKeyName string
}

// TableSpec is the table a createTable statement declares.
type TableSpec struct {
	Name         string
	PartitionKey string
	SortKey      string
	Indexes      []GSIConfig
}

// tableSpec reads a createTable statement. Attributes name the table and its
// keys (partitionKey defaults to PK, sortKey to SK, sortKey="none" drops it);
// each text line declares an index as NAME = PARTITION [SORT].
func tableSpec(stmt storagemodels.Statement, prefix string) (TableSpec, error) {
	table := stmt.Attr("table", "")
	if table == "" {
		return TableSpec{}, serrors.NewValidationError("table", stmt.QualifiedID()+" names no table")
	}
	spec := TableSpec{
		Name:         prefix + table,
		PartitionKey: stmt.Attr("partitionKey", "PK"),
		SortKey:      stmt.Attr("sortKey", "SK"),
	}
	if spec.SortKey == "none" {
		spec.SortKey = ""
	}

	entries, err := indexMap(stmt)
	if err != nil {
		return TableSpec{}, err
	}
	for _, entry := range entries {
		keys := strings.Fields(entry.Template)
		if len(keys) > 2 {
			return TableSpec{}, serrors.NewValidationError(entry.Name, fmt.Sprintf("index declares %d keys", len(keys)))
		}
		gsi := GSIConfig{IndexName: entry.Name, PartitionKeyName: keys[0]}
		if len(keys) == 2 {
			gsi.SortKeyName = keys[1]
		}
		spec.Indexes = append(spec.Indexes, gsi)
	}
	return spec, nil
}

// CreateTableInput converts the spec into an on-demand table request.
func (t TableSpec) CreateTableInput() *sdk.CreateTableInput {
	seen := make(map[string]bool)
	var attrs []types.AttributeDefinition
	define := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		attrs = append(attrs, types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		})
	}
	schema := func(pk, sk string) []types.KeySchemaElement {
		define(pk)
		keys := []types.KeySchemaElement{{AttributeName: aws.String(pk), KeyType: types.KeyTypeHash}}
		if sk != "" {
			define(sk)
			keys = append(keys, types.KeySchemaElement{AttributeName: aws.String(sk), KeyType: types.KeyTypeRange})
		}
		return keys
	}

	in := &sdk.CreateTableInput{
		TableName:   aws.String(t.Name),
		BillingMode: types.BillingModePayPerRequest,
		KeySchema:   schema(t.PartitionKey, t.SortKey),
	}
	for _, gsi := range t.Indexes {
		in.GlobalSecondaryIndexes = append(in.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(gsi.IndexName),
			KeySchema:  schema(gsi.PartitionKeyName, gsi.SortKeyName),
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}
	in.AttributeDefinitions = attrs
	return in
}
