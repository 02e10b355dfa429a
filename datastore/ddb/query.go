/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/schemastore/datastore"
	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/storagemodels"
)

// query runs a select statement as a key condition query and follows the
// pages until they run out or the statement's limit is reached.
func (e *Engine) query(ctx context.Context, stmt storagemodels.Statement, params datastore.Params) ([]map[string]any, error) {
	bound, err := datastore.Bind(stmt, params, e.cfg.Codecs, datastore.Colon)
	if err != nil {
		return nil, err
	}
	table, err := e.table(stmt)
	if err != nil {
		return nil, err
	}

	input := &sdk.QueryInput{
		TableName:              aws.String(table),
		KeyConditionExpression: aws.String(bound.Text),
	}
	if len(bound.Args) > 0 {
		input.ExpressionAttributeValues = make(map[string]types.AttributeValue, len(bound.Args))
		for i, arg := range bound.Args {
			av, err := attributevalue.Marshal(arg)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal %s: %w", bound.Params[i].Name, err)
			}
			input.ExpressionAttributeValues[datastore.Colon(i+1)] = av
		}
	}
	if index := stmt.Attr("index", ""); index != "" {
		input.IndexName = aws.String(index)
	}
	if stmt.Attr("scanForward", "true") == "false" {
		input.ScanIndexForward = aws.Bool(false)
	}

	limit := 0
	if v := stmt.Attr("limit", ""); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			return nil, serrors.NewValidationError("limit", fmt.Sprintf("%s has invalid limit %q", stmt.QualifiedID(), v))
		}
		if limit > 0 {
			input.Limit = aws.Int32(int32(limit))
		}
	}

	var items []map[string]types.AttributeValue
	for {
		out, err := e.queryWithRetry(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stmt.QualifiedID(), err)
		}
		items = append(items, out.Items...)
		if limit > 0 && len(items) >= limit {
			items = items[:limit]
			break
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	rows := make([]map[string]any, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}
	return rows, nil
}

// queryWithRetry retries throttled and transient failures with a linear backoff.
func (e *Engine) queryWithRetry(ctx context.Context, input *sdk.QueryInput) (*sdk.QueryOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out, err := e.client.Query(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return nil, err
		}

		if attempt < e.maxRetries {
			backoff := time.Duration(attempt+1) * e.retryBackoff
			e.logger.Debug().Err(err).Int("attempt", attempt+1).Dur("backoff", backoff).Msg("Retrying query")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("query failed after %d retries: %w", e.maxRetries, lastErr)
}

func isRetryableError(err error) bool {
	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
		internal   *types.InternalServerError
	)
	if errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal) {
		return true
	}

	var retryable interface{ RetryableError() bool }
	if errors.As(err, &retryable) {
		return retryable.RetryableError()
	}
	return false
}

// getItem reads one item by its expanded key lines.
func (e *Engine) getItem(ctx context.Context, stmt storagemodels.Statement, params map[string]any) ([]map[string]any, error) {
	table, err := e.table(stmt)
	if err != nil {
		return nil, err
	}
	entries, err := indexMap(stmt)
	if err != nil {
		return nil, err
	}
	key, err := itemKey(entries, params)
	if err != nil {
		return nil, err
	}

	out, err := e.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(table),
		Key:            key,
		ConsistentRead: aws.Bool(stmt.Attr("consistentRead", "false") == "true"),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var row map[string]any
	if err := attributevalue.UnmarshalMap(out.Item, &row); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return []map[string]any{row}, nil
}
