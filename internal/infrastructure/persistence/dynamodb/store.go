package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"schoolhub-backend/internal/config"
	"schoolhub-backend/internal/repository"
)

// Store implements repository.DocumentStore on a single DynamoDB table.
// The table name and index names are injected at construction.
type Store struct {
	client  *awsdynamodb.Client
	table   string
	indexes map[repository.IndexName]string
	logger  *zap.Logger
}

// New creates a Store bound to one table.
func New(client *awsdynamodb.Client, tableName string, indexes config.IndexNames, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		table:  tableName,
		indexes: map[repository.IndexName]string{
			repository.IndexEntity:     indexes.EntityIndex,
			repository.IndexYear:       indexes.YearIndex,
			repository.IndexSchoolCode: indexes.SchoolCodeIndex,
		},
		logger: logger,
	}
}

var _ repository.DocumentStore = (*Store)(nil)

// Get retrieves the record at key with a consistent read, so the
// read-modify-conditional-write protocol always observes the live version.
func (s *Store) Get(ctx context.Context, key repository.Key) (*repository.Record, error) {
	out, err := s.client.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            primaryKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, s.classify("GetItem", err)
	}
	if out.Item == nil {
		return nil, repository.ErrRecordNotFound
	}
	return unmarshalRecord(out.Item)
}

// Query runs a key-condition query against the main table or a secondary
// index, following pagination until exhausted.
func (s *Store) Query(ctx context.Context, q repository.Query) ([]*repository.Record, error) {
	pkAttr, skAttr := attrPK, attrSK
	var indexName *string
	if q.Index != "" {
		physical, ok := s.indexes[q.Index]
		if !ok {
			return nil, fmt.Errorf("unknown index %q", q.Index)
		}
		indexName = aws.String(physical)
		pkAttr, skAttr = q.Index.PKAttr(), q.Index.SKAttr()
	}

	keyCond := expression.Key(pkAttr).Equal(expression.Value(q.PartitionValue))
	if q.SortKeyPrefix != "" {
		keyCond = keyCond.And(expression.Key(skAttr).BeginsWith(q.SortKeyPrefix))
	}
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build query expression: %w", err)
	}

	var records []*repository.Record
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &awsdynamodb.QueryInput{
			TableName:                 aws.String(s.table),
			IndexName:                 indexName,
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, s.classify("Query", err)
		}
		for _, item := range out.Items {
			rec, err := unmarshalRecord(item)
			if err != nil {
				s.logger.Warn("skipping unparseable item", zap.Error(err))
				continue
			}
			records = append(records, rec)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return records, nil
}

// Put creates a record, guarded by a create-only condition so first-time
// creation can never silently replace an existing entity.
func (s *Store) Put(ctx context.Context, rec *repository.Record) error {
	item, err := marshalRecord(rec)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return repository.ErrRecordExists
		}
		return s.classify("PutItem", err)
	}
	return nil
}

// ConditionalUpdate applies patch if and only if the stored version equals
// expectedVersion, bumping the version by exactly 1 in the same write.
func (s *Store) ConditionalUpdate(ctx context.Context, key repository.Key, patch *repository.Patch, expectedVersion int) (*repository.Record, error) {
	expr, err := buildUpdateExpression(patch, expectedVersion)
	if err != nil {
		return nil, err
	}

	out, err := s.client.UpdateItem(ctx, &awsdynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       primaryKey(key),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return nil, repository.ErrVersionConflict
		}
		return nil, s.classify("UpdateItem", err)
	}
	return unmarshalRecord(out.Attributes)
}

// TransactWrite submits all version-guarded updates as one all-or-nothing
// TransactWriteItems call.
func (s *Store) TransactWrite(ctx context.Context, writes []repository.ConditionalWrite) error {
	if len(writes) == 0 {
		return nil
	}

	items := make([]types.TransactWriteItem, 0, len(writes))
	for _, w := range writes {
		expr, err := buildUpdateExpression(w.Patch, w.ExpectedVersion)
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:                 aws.String(s.table),
				Key:                       primaryKey(w.Key),
				UpdateExpression:          expr.Update(),
				ConditionExpression:       expr.Condition(),
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
			},
		})
	}

	_, err := s.client.TransactWriteItems(ctx, &awsdynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		var conflict *types.TransactionConflictException
		if errors.As(err, &canceled) || errors.As(err, &conflict) {
			return repository.ErrTransactionConflict
		}
		return s.classify("TransactWriteItems", err)
	}
	return nil
}

// buildUpdateExpression translates a typed patch into a DynamoDB update
// expression with a version-equality condition. The version bump is part of
// the same expression, so it cannot be forgotten by a caller.
func buildUpdateExpression(patch *repository.Patch, expectedVersion int) (expression.Expression, error) {
	update := expression.Set(expression.Name(attrVersion), expression.Value(expectedVersion+1))
	for field, value := range patch.Fields() {
		update = update.Set(expression.Name(field), expression.Value(normalizeValue(value)))
	}

	cond := expression.Name(attrVersion).Equal(expression.Value(expectedVersion))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("build update expression: %w", err)
	}
	return expr, nil
}

func primaryKey(key repository.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: stringAttr(key.PartitionKey()),
		attrSK: stringAttr(key.SortKey()),
	}
}

// classify maps AWS failures onto the store's sentinel errors. Transient
// throughput and availability problems become ErrStoreUnavailable so the
// retry executor treats them as retryable.
func (s *Store) classify(op string, err error) error {
	if isTransient(err) {
		s.logger.Warn("transient store failure", zap.String("operation", op), zap.Error(err))
		return fmt.Errorf("%w: %s: %v", repository.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("dynamodb %s: %w", op, err)
}

func isTransient(err error) bool {
	var throughput *types.ProvisionedThroughputExceededException
	var requestLimit *types.RequestLimitExceeded
	var internal *types.InternalServerError
	var limit *types.LimitExceededException
	if errors.As(err, &throughput) || errors.As(err, &requestLimit) ||
		errors.As(err, &internal) || errors.As(err, &limit) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "ServiceUnavailable", "RequestTimeout":
			return true
		}
	}
	return false
}
