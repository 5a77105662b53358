package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
)

// CounterRepository hands out order sequence numbers from an atomic ADD on
// one item per store.
type CounterRepository struct {
	client    DynamoAPI
	tableName string
}

func NewCounterRepository(client DynamoAPI, tableName string) *CounterRepository {
	return &CounterRepository{client: client, tableName: tableName}
}

func (r *CounterRepository) NextOrderSequence(ctx context.Context, scope domain.StoreScope) (int64, error) {
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Add(expression.Name("seq"), expression.Value(1))).
		Build()
	if err != nil {
		return 0, err
	}

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"counter_id": &types.AttributeValueMemberS{Value: "order#" + scope.StoreID},
		},
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment order counter: %w", err)
	}

	var out struct {
		Seq int64 `dynamodbav:"seq"`
	}
	if err := attributevalue.UnmarshalMap(result.Attributes, &out); err != nil {
		return 0, fmt.Errorf("failed to unmarshal counter: %w", err)
	}
	return out.Seq, nil
}
