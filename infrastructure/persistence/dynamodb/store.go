// Package dynamodb adapts the single-table store facade onto DynamoDB.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence/store"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/observability"
)

const (
	// DynamoDB caps batch writes at 25 items and batch gets at 100 keys.
	maxBatchWrite = 25
	maxBatchGet   = 100
	maxRetries    = 3
)

// Store implements store.Store against a DynamoDB table with a PK/SK primary
// key and one GSI keyed by GSI1PK/GSI1SK.
type Store struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
	tracer    *observability.Tracer
}

// NewStore creates a DynamoDB-backed store.
func NewStore(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger, tracer *observability.Tracer) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
		tracer:    tracer,
	}
}

// Put inserts or fully replaces the item at its key, refreshing updatedAt.
func (s *Store) Put(ctx context.Context, item store.Item) error {
	return s.tracer.Capture(ctx, "store.Put", func(ctx context.Context) error {
		av, err := marshalItem(item)
		if err != nil {
			return err
		}
		av[store.AttrUpdatedAt] = &types.AttributeValueMemberS{Value: store.NowISO()}

		input := &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item:      av,
		}
		if _, err := s.client.PutItem(ctx, input); err != nil {
			return fmt.Errorf("failed to put item: %w", err)
		}
		return nil
	})
}

// Get returns the item at the exact composite key, or nil if absent.
func (s *Store) Get(ctx context.Context, pk, sk string) (store.Item, error) {
	var item store.Item
	err := s.tracer.Capture(ctx, "store.Get", func(ctx context.Context) error {
		input := &dynamodb.GetItemInput{
			TableName: aws.String(s.tableName),
			Key:       keyAttributes(pk, sk),
		}
		result, err := s.client.GetItem(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to get item: %w", err)
		}
		if result.Item == nil {
			return nil
		}
		item, err = unmarshalItem(result.Item)
		return err
	})
	return item, err
}

// Query returns all items under a partition key, optionally narrowed by a
// sort-key condition.
func (s *Store) Query(ctx context.Context, q store.Query) ([]store.Item, error) {
	keyCond := expression.Key(store.AttrPK).Equal(expression.Value(q.PartitionKey))
	if cond := sortKeyCondition(store.AttrSK, q.Sort); cond != nil {
		keyCond = keyCond.And(*cond)
	}
	return s.runQuery(ctx, keyCond, q, "")
}

// QueryIndex runs a query against the GSI1 key pair. Only BeginsWith and
// Equals conditions are supported on the index sort key.
func (s *Store) QueryIndex(ctx context.Context, q store.Query) ([]store.Item, error) {
	if q.Sort.IsBetween() {
		return nil, fmt.Errorf("between condition is not supported on the secondary index")
	}

	keyCond := expression.Key(store.AttrGSI1PK).Equal(expression.Value(q.PartitionKey))
	if cond := sortKeyCondition(store.AttrGSI1SK, q.Sort); cond != nil {
		keyCond = keyCond.And(*cond)
	}
	return s.runQuery(ctx, keyCond, q, s.indexName)
}

func (s *Store) runQuery(ctx context.Context, keyCond expression.KeyConditionBuilder, q store.Query, indexName string) ([]store.Item, error) {
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(!q.Descending),
	}
	if indexName != "" {
		input.IndexName = aws.String(indexName)
	}
	if q.Limit > 0 {
		input.Limit = aws.Int32(q.Limit)
	}

	var items []store.Item
	err = s.tracer.Capture(ctx, "store.Query", func(ctx context.Context) error {
		for {
			result, err := s.client.Query(ctx, input)
			if err != nil {
				return fmt.Errorf("failed to query items: %w", err)
			}
			for _, av := range result.Items {
				item, err := unmarshalItem(av)
				if err != nil {
					s.logger.Warn("Failed to unmarshal item, skipping", zap.Error(err))
					continue
				}
				items = append(items, item)
				if q.Limit > 0 && int32(len(items)) >= q.Limit {
					return nil
				}
			}
			if result.LastEvaluatedKey == nil {
				return nil
			}
			input.ExclusiveStartKey = result.LastEvaluatedKey
		}
	})
	return items, err
}

// Update merges attrs into the existing item and refreshes updatedAt. A
// missing item is a no-op returning (nil, nil); the condition expression
// guarantees the item is never created.
func (s *Store) Update(ctx context.Context, pk, sk string, attrs map[string]interface{}) (store.Item, error) {
	var updateExpr expression.UpdateBuilder
	for attr, value := range attrs {
		updateExpr = updateExpr.Set(expression.Name(attr), expression.Value(value))
	}
	updateExpr = updateExpr.Set(expression.Name(store.AttrUpdatedAt), expression.Value(store.NowISO()))

	condition := expression.Name(store.AttrPK).AttributeExists()

	expr, err := expression.NewBuilder().
		WithUpdate(updateExpr).
		WithCondition(condition).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build update expression: %w", err)
	}

	var item store.Item
	err = s.tracer.Capture(ctx, "store.Update", func(ctx context.Context) error {
		input := &dynamodb.UpdateItemInput{
			TableName:                 aws.String(s.tableName),
			Key:                       keyAttributes(pk, sk),
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ReturnValues:              types.ReturnValueAllNew,
		}

		result, err := s.client.UpdateItem(ctx, input)
		if err != nil {
			var ccf *types.ConditionalCheckFailedException
			if errors.As(err, &ccf) {
				return nil
			}
			return fmt.Errorf("failed to update item: %w", err)
		}
		item, err = unmarshalItem(result.Attributes)
		return err
	})
	return item, err
}

// Delete removes the item if present; absent keys are a no-op.
func (s *Store) Delete(ctx context.Context, pk, sk string) error {
	return s.tracer.Capture(ctx, "store.Delete", func(ctx context.Context) error {
		input := &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key:       keyAttributes(pk, sk),
		}
		if _, err := s.client.DeleteItem(ctx, input); err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		return nil
	})
}

// BatchGet returns the subset of items found for the given keys.
func (s *Store) BatchGet(ctx context.Context, keys []store.Key) ([]store.Item, error) {
	if len(keys) == 0 {
		return []store.Item{}, nil
	}

	var items []store.Item
	err := s.tracer.Capture(ctx, "store.BatchGet", func(ctx context.Context) error {
		for start := 0; start < len(keys); start += maxBatchGet {
			end := start + maxBatchGet
			if end > len(keys) {
				end = len(keys)
			}

			pending := make([]map[string]types.AttributeValue, 0, end-start)
			for _, key := range keys[start:end] {
				pending = append(pending, keyAttributes(key.PK, key.SK))
			}

			for retry := 0; len(pending) > 0; retry++ {
				input := &dynamodb.BatchGetItemInput{
					RequestItems: map[string]types.KeysAndAttributes{
						s.tableName: {Keys: pending},
					},
				}
				result, err := s.client.BatchGetItem(ctx, input)
				if err != nil {
					return fmt.Errorf("failed to batch get items: %w", err)
				}
				for _, av := range result.Responses[s.tableName] {
					item, err := unmarshalItem(av)
					if err != nil {
						s.logger.Warn("Failed to unmarshal item, skipping", zap.Error(err))
						continue
					}
					items = append(items, item)
				}

				unprocessed := result.UnprocessedKeys[s.tableName].Keys
				if len(unprocessed) == 0 {
					break
				}
				if retry >= maxRetries {
					return fmt.Errorf("failed to get %d keys after %d retries", len(unprocessed), maxRetries)
				}
				if err := backoff(ctx, retry); err != nil {
					return err
				}
				pending = unprocessed
			}
		}
		return nil
	})
	return items, err
}

// BatchWrite applies a mixed list of put/delete operations, refreshing
// updatedAt on each put. Unprocessed items are retried with backoff; an
// exhausted retry surfaces as a single error with no per-operation status.
func (s *Store) BatchWrite(ctx context.Context, ops []store.WriteOp) error {
	if len(ops) == 0 {
		return nil
	}

	requests := make([]types.WriteRequest, 0, len(ops))
	for i, op := range ops {
		switch {
		case op.Put != nil:
			av, err := marshalItem(op.Put)
			if err != nil {
				return fmt.Errorf("batch write op %d: %w", i, err)
			}
			av[store.AttrUpdatedAt] = &types.AttributeValueMemberS{Value: store.NowISO()}
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: av},
			})
		case op.Delete != nil:
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: keyAttributes(op.Delete.PK, op.Delete.SK)},
			})
		default:
			return fmt.Errorf("batch write op %d: neither put nor delete", i)
		}
	}

	return s.tracer.Capture(ctx, "store.BatchWrite", func(ctx context.Context) error {
		for start := 0; start < len(requests); start += maxBatchWrite {
			end := start + maxBatchWrite
			if end > len(requests) {
				end = len(requests)
			}

			pending := requests[start:end]
			for retry := 0; len(pending) > 0; retry++ {
				input := &dynamodb.BatchWriteItemInput{
					RequestItems: map[string][]types.WriteRequest{
						s.tableName: pending,
					},
				}
				result, err := s.client.BatchWriteItem(ctx, input)
				if err != nil {
					return fmt.Errorf("failed to batch write items: %w", err)
				}

				unprocessed := result.UnprocessedItems[s.tableName]
				if len(unprocessed) == 0 {
					break
				}
				if retry >= maxRetries {
					return fmt.Errorf("failed to write %d items after %d retries", len(unprocessed), maxRetries)
				}
				s.logger.Debug("Retrying unprocessed batch items",
					zap.Int("unprocessedCount", len(unprocessed)),
					zap.Int("retry", retry+1),
				)
				if err := backoff(ctx, retry); err != nil {
					return err
				}
				pending = unprocessed
			}
		}
		return nil
	})
}

func keyAttributes(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		store.AttrPK: &types.AttributeValueMemberS{Value: pk},
		store.AttrSK: &types.AttributeValueMemberS{Value: sk},
	}
}

func sortKeyCondition(attr string, cond *store.SortCondition) *expression.KeyConditionBuilder {
	if cond == nil {
		return nil
	}
	var built expression.KeyConditionBuilder
	switch {
	case cond.IsBeginsWith():
		built = expression.Key(attr).BeginsWith(cond.Value())
	case cond.IsEquals():
		built = expression.Key(attr).Equal(expression.Value(cond.Value()))
	case cond.IsBetween():
		lo, hi := cond.Bounds()
		built = expression.Key(attr).Between(expression.Value(lo), expression.Value(hi))
	default:
		return nil
	}
	return &built
}

func marshalItem(item store.Item) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(map[string]interface{}(item))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}
	return av, nil
}

func unmarshalItem(av map[string]types.AttributeValue) (store.Item, error) {
	var item store.Item
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return item, nil
}

func backoff(ctx context.Context, retry int) error {
	delay := time.Duration(retry*retry+1) * 100 * time.Millisecond
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
