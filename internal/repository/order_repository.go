package repository

import (
	"context"
	"fmt"
	"sort"
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

// OrderRepository writes orders and the stock they consume in one
// TransactWriteItems call, so a rejected order leaves every product untouched.
type OrderRepository struct {
	client       DynamoAPI
	tableName    string
	productTable string
	now          func() time.Time
}

func NewOrderRepository(client DynamoAPI, tableName, productTable string) *OrderRepository {
	return &OrderRepository{
		client:       client,
		tableName:    tableName,
		productTable: productTable,
		now:          time.Now,
	}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, scope domain.StoreScope, order *domain.Order, debits []inventory.Debit) error {
	now := r.now().UTC()
	items := make([]types.TransactWriteItem, 0, len(debits)+1)

	for _, d := range debits {
		update, err := r.stockUpdate(scope, d, now, debitExpression)
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{Update: update})
	}

	record := *order
	record.StoreID = scope.StoreID
	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	cond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("order_id"))).
		Build()
	if err != nil {
		return err
	}
	items = append(items, types.TransactWriteItem{Put: &types.Put{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      cond.Condition(),
		ExpressionAttributeNames: cond.Names(),
	}})

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems:      items,
		ClientRequestToken: aws.String(order.OrderID),
	})
	if err == nil {
		return nil
	}

	// 취소 사유의 인덱스로 실패한 상품을 찾는다
	if i, ok := cancellationIndex(err); ok {
		if i < len(debits) {
			return apperr.StockChanged(debits[i].ProductID, debits[i].Quantity)
		}
		return apperr.Conflict("order %s already exists", order.OrderID)
	}
	return fmt.Errorf("failed to write order transaction: %w", err)
}

func (r *OrderRepository) GetOrder(ctx context.Context, scope domain.StoreScope, orderID string) (*domain.Order, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            storeKey(scope.StoreID, "order_id", orderID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if result.Item == nil {
		return nil, apperr.NotFound("order %s not found", orderID)
	}

	var order domain.Order
	if err := attributevalue.UnmarshalMap(result.Item, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return &order, nil
}

func (r *OrderRepository) ListOrdersByUser(ctx context.Context, scope domain.StoreScope, userID string) ([]domain.Order, error) {
	return r.query(ctx, scope, storeUserIndex, "user_id", userID)
}

func (r *OrderRepository) ListOrdersByGuest(ctx context.Context, scope domain.StoreScope, guestID string) ([]domain.Order, error) {
	return r.query(ctx, scope, storeGuestIndex, "guest_id", guestID)
}

// query reads every page of the index and returns orders newest first.
func (r *OrderRepository) query(ctx context.Context, scope domain.StoreScope, index, attr, value string) ([]domain.Order, error) {
	keyCond := expression.Key("store_id").Equal(expression.Value(scope.StoreID)).
		And(expression.Key(attr).Equal(expression.Value(value)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, err
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	orders := []domain.Order{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", index, err)
		}
		var batch []domain.Order
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal orders: %w", err)
		}
		orders = append(orders, batch...)
	}

	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, scope domain.StoreScope, orderID string, from, to domain.OrderStatus) error {
	expr, err := statusExpression(from, to, "", r.now().UTC())
	if err != nil {
		return err
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(r.tableName),
		Key:                                 storeKey(scope.StoreID, "order_id", orderID),
		ExpressionAttributeNames:            expr.Names(),
		ExpressionAttributeValues:           expr.Values(),
		UpdateExpression:                    expr.Update(),
		ConditionExpression:                 expr.Condition(),
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		if ccf, ok := isConditionFailed(err); ok {
			if len(ccf.Item) == 0 {
				return apperr.NotFound("order %s not found", orderID)
			}
			return apperr.Conflict("order %s changed status concurrently", orderID)
		}
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

func (r *OrderRepository) CancelOrder(ctx context.Context, scope domain.StoreScope, orderID string, from domain.OrderStatus, reason string, credits []inventory.Debit) error {
	now := r.now().UTC()
	expr, err := statusExpression(from, domain.OrderCancelled, reason, now)
	if err != nil {
		return err
	}

	items := make([]types.TransactWriteItem, 0, len(credits)+1)
	items = append(items, types.TransactWriteItem{Update: &types.Update{
		TableName:                 aws.String(r.tableName),
		Key:                       storeKey(scope.StoreID, "order_id", orderID),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
	}})
	for _, c := range credits {
		update, err := r.stockUpdate(scope, c, now, creditExpression)
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{Update: update})
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err == nil {
		return nil
	}
	if i, ok := cancellationIndex(err); ok {
		if i == 0 {
			return apperr.Conflict("order %s changed status concurrently", orderID)
		}
		return apperr.Conflict("product %s changed while restoring stock", credits[i-1].ProductID)
	}
	return fmt.Errorf("failed to write cancel transaction: %w", err)
}

// ReassignGuestOrders moves each guest order to the user. Orders merged by a
// concurrent request are skipped.
func (r *OrderRepository) ReassignGuestOrders(ctx context.Context, scope domain.StoreScope, guestID, userID string) (int, error) {
	orders, err := r.ListOrdersByGuest(ctx, scope, guestID)
	if err != nil {
		return 0, err
	}

	update := expression.Set(expression.Name("user_id"), expression.Value(userID)).
		Set(expression.Name("updated_at"), expression.Value(r.now().UTC())).
		Remove(expression.Name("guest_id"))
	cond := expression.Equal(expression.Name("guest_id"), expression.Value(guestID))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return 0, err
	}

	merged := 0
	for _, o := range orders {
		_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(r.tableName),
			Key:                       storeKey(scope.StoreID, "order_id", o.OrderID),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
		})
		if err != nil {
			if _, ok := isConditionFailed(err); ok {
				continue
			}
			return merged, fmt.Errorf("failed to reassign order %s: %w", o.OrderID, err)
		}
		merged++
	}
	return merged, nil
}

type stockExpressionFunc func(inventory.Debit, time.Time) (expression.Expression, error)

func (r *OrderRepository) stockUpdate(scope domain.StoreScope, d inventory.Debit, now time.Time, build stockExpressionFunc) (*types.Update, error) {
	expr, err := build(d, now)
	if err != nil {
		return nil, fmt.Errorf("failed to build stock expression for %s: %w", d.ProductID, err)
	}
	return &types.Update{
		TableName:                 aws.String(r.productTable),
		Key:                       storeKey(scope.StoreID, "product_id", d.ProductID),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
	}, nil
}

func statusExpression(from, to domain.OrderStatus, reason string, now time.Time) (expression.Expression, error) {
	update := expression.Set(expression.Name("status"), expression.Value(to)).
		Set(expression.Name("updated_at"), expression.Value(now))
	if reason != "" {
		update = update.Set(expression.Name("cancel_reason"), expression.Value(reason))
	}
	cond := expression.AttributeExists(expression.Name("order_id")).
		And(expression.Equal(expression.Name("status"), expression.Value(from)))

	return expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
}
