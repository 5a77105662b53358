package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/internal/inventory"
)

// ProductRepository stores products keyed by (store_id, product_id).
type ProductRepository struct {
	client    DynamoAPI
	tableName string
	now       func() time.Time
}

func NewProductRepository(client DynamoAPI, tableName string) *ProductRepository {
	return &ProductRepository{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

func (r *ProductRepository) CreateProduct(ctx context.Context, scope domain.StoreScope, product *domain.Product) error {
	p := product.Clone()
	p.StoreID = scope.StoreID

	av, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	cond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("product_id"))).
		Build()
	if err != nil {
		return err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      cond.Condition(),
		ExpressionAttributeNames: cond.Names(),
	})
	if err != nil {
		if _, ok := isConditionFailed(err); ok {
			return apperr.Conflict("product %s already exists", product.ProductID)
		}
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

func (r *ProductRepository) GetProduct(ctx context.Context, scope domain.StoreScope, productID string) (*domain.Product, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            storeKey(scope.StoreID, "product_id", productID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if result.Item == nil {
		return nil, apperr.NotFound("product %s not found", productID)
	}

	var product domain.Product
	if err := attributevalue.UnmarshalMap(result.Item, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &product, nil
}

func (r *ProductRepository) Restock(ctx context.Context, scope domain.StoreScope, credit inventory.Debit) (*domain.Product, error) {
	expr, err := creditExpression(credit, r.now().UTC())
	if err != nil {
		return nil, err
	}

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       storeKey(scope.StoreID, "product_id", credit.ProductID),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if _, ok := isConditionFailed(err); ok {
			return nil, apperr.NotFound("product %s or one of its specifications not found", credit.ProductID)
		}
		return nil, fmt.Errorf("failed to restock product: %w", err)
	}

	// 업데이트된 상품 반환
	var updated domain.Product
	if err := attributevalue.UnmarshalMap(result.Attributes, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &updated, nil
}
