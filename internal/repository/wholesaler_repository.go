package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
)

// WholesalerRepository stores wholesaler records keyed by (store_id,
// wholesaler_id) with GSIs on user_id and email.
type WholesalerRepository struct {
	client    DynamoAPI
	tableName string
}

func NewWholesalerRepository(client DynamoAPI, tableName string) *WholesalerRepository {
	return &WholesalerRepository{client: client, tableName: tableName}
}

func (r *WholesalerRepository) CreateWholesaler(ctx context.Context, scope domain.StoreScope, w *domain.Wholesaler) error {
	return r.put(ctx, scope, w, expression.AttributeNotExists(expression.Name("wholesaler_id")),
		apperr.Conflict("wholesaler %s already exists", w.WholesalerID))
}

func (r *WholesalerRepository) UpdateWholesaler(ctx context.Context, scope domain.StoreScope, w *domain.Wholesaler) error {
	return r.put(ctx, scope, w, expression.AttributeExists(expression.Name("wholesaler_id")),
		apperr.NotFound("wholesaler %s not found", w.WholesalerID))
}

func (r *WholesalerRepository) put(ctx context.Context, scope domain.StoreScope, w *domain.Wholesaler, cond expression.ConditionBuilder, onFail error) error {
	record := *w
	record.StoreID = scope.StoreID

	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal wholesaler: %w", err)
	}

	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if _, ok := isConditionFailed(err); ok {
			return onFail
		}
		return fmt.Errorf("failed to put wholesaler: %w", err)
	}
	return nil
}

func (r *WholesalerRepository) GetWholesaler(ctx context.Context, scope domain.StoreScope, wholesalerID string) (*domain.Wholesaler, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       storeKey(scope.StoreID, "wholesaler_id", wholesalerID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get wholesaler: %w", err)
	}
	if result.Item == nil {
		return nil, apperr.NotFound("wholesaler %s not found", wholesalerID)
	}

	var w domain.Wholesaler
	if err := attributevalue.UnmarshalMap(result.Item, &w); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wholesaler: %w", err)
	}
	return &w, nil
}

func (r *WholesalerRepository) FindWholesalerByUser(ctx context.Context, scope domain.StoreScope, userID string) (*domain.Wholesaler, error) {
	return r.findOne(ctx, scope, storeUserIndex, "user_id", userID)
}

func (r *WholesalerRepository) FindWholesalerByEmail(ctx context.Context, scope domain.StoreScope, email string) (*domain.Wholesaler, error) {
	return r.findOne(ctx, scope, storeEmailIndex, "email", domain.NormalizeEmail(email))
}

// findOne returns the first match on the index, or NotFound.
func (r *WholesalerRepository) findOne(ctx context.Context, scope domain.StoreScope, index, attr, value string) (*domain.Wholesaler, error) {
	keyCond := expression.Key("store_id").Equal(expression.Value(scope.StoreID)).
		And(expression.Key(attr).Equal(expression.Value(value)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, err
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", index, err)
	}
	if len(result.Items) == 0 {
		return nil, apperr.NotFound("wholesaler with %s %s not found", attr, value)
	}

	var w domain.Wholesaler
	if err := attributevalue.UnmarshalMap(result.Items[0], &w); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wholesaler: %w", err)
	}
	return &w, nil
}
