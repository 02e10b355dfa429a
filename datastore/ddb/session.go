/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/schemastore/datastore"
	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/storagemodels"
)

// session buffers writes until Commit sends them as one transaction.
type session struct {
	engine *Engine
	writes []types.TransactWriteItem
}

func (s *session) Exec(ctx context.Context, namespace, id string, params datastore.Params) (int64, error) {
	stmt, params, err := s.engine.prepare(ctx, namespace, id, params)
	if err != nil {
		return 0, err
	}

	if stmt.Kind == storagemodels.KindCreateTable {
		return 0, s.engine.createTable(ctx, stmt)
	}

	item, err := s.writeItem(stmt, params)
	if err != nil {
		return 0, err
	}
	if len(s.writes) >= maxTransactItems {
		return 0, serrors.NewValidationError("session",
			fmt.Sprintf("a transaction holds at most %d writes", maxTransactItems))
	}
	s.writes = append(s.writes, item)
	return 1, nil
}

func (s *session) writeItem(stmt storagemodels.Statement, params datastore.Params) (types.TransactWriteItem, error) {
	var none types.TransactWriteItem

	table, err := s.engine.table(stmt)
	if err != nil {
		return none, err
	}
	encoded, err := s.engine.encode(params)
	if err != nil {
		return none, err
	}
	entries, err := indexMap(stmt)
	if err != nil {
		return none, err
	}
	key, err := itemKey(entries, encoded)
	if err != nil {
		return none, err
	}
	var condition *string
	if c := stmt.Attr("condition", ""); c != "" {
		condition = aws.String(c)
	}

	switch stmt.Kind {
	case storagemodels.KindPut, storagemodels.KindInsert:
		av, err := attributevalue.MarshalMap(encoded)
		if err != nil {
			return none, fmt.Errorf("failed to marshal item: %w", err)
		}
		for k, v := range key {
			av[k] = v
		}
		return types.TransactWriteItem{Put: &types.Put{
			TableName:           aws.String(table),
			Item:                av,
			ConditionExpression: condition,
		}}, nil

	case storagemodels.KindRemove, storagemodels.KindDelete:
		return types.TransactWriteItem{Delete: &types.Delete{
			TableName:           aws.String(table),
			Key:                 key,
			ConditionExpression: condition,
		}}, nil

	case storagemodels.KindUpdate:
		updates := make(map[string]any)
		for _, field := range strings.Split(stmt.Attr("set", ""), ",") {
			if field = strings.TrimSpace(field); field == "" {
				continue
			}
			v, ok := encoded[field]
			if !ok {
				return none, serrors.NewValidationError(field, "no value bound for "+stmt.QualifiedID())
			}
			updates[field] = v
		}
		expr, names, values, err := buildUpdateExpression(updates)
		if err != nil {
			return none, fmt.Errorf("%s: %w", stmt.QualifiedID(), err)
		}
		return types.TransactWriteItem{Update: &types.Update{
			TableName:                 aws.String(table),
			Key:                       key,
			UpdateExpression:          aws.String(expr),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
			ConditionExpression:       condition,
		}}, nil
	}

	return none, serrors.NewValidationError(stmt.QualifiedID(), fmt.Sprintf("%s statements cannot be executed", stmt.Kind))
}

func (s *session) Select(ctx context.Context, namespace, id string, params datastore.Params) ([]map[string]any, error) {
	stmt, params, err := s.engine.prepare(ctx, namespace, id, params)
	if err != nil {
		return nil, err
	}

	switch stmt.Kind {
	case storagemodels.KindSelect:
		return s.engine.query(ctx, stmt, params)
	case storagemodels.KindGet:
		encoded, err := s.engine.encode(params)
		if err != nil {
			return nil, err
		}
		return s.engine.getItem(ctx, stmt, encoded)
	}
	return nil, serrors.NewValidationError(stmt.QualifiedID(), fmt.Sprintf("%s statements cannot be selected", stmt.Kind))
}

func (s *session) Commit(ctx context.Context) error {
	if len(s.writes) == 0 {
		return nil
	}
	writes := s.writes
	s.writes = nil

	_, err := s.engine.client.TransactWriteItems(ctx, &sdk.TransactWriteItemsInput{TransactItems: writes})
	if err != nil {
		return fmt.Errorf("TransactWriteItems failed: %w", err)
	}
	s.engine.logger.Debug().Int("writes", len(writes)).Msg("Transaction committed")
	return nil
}

func (s *session) Rollback(ctx context.Context) error {
	s.writes = nil
	return nil
}

func (s *session) Close() error {
	s.writes = nil
	return nil
}
