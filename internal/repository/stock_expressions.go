package repository

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"

	"github.com/cloud-wave-best-zizon/order-service/internal/inventory"
)

// specQuantity addresses specification_values.<key>.quantity. Keys contain
// ':' and are placed through a single name placeholder.
func specQuantity(key string) expression.NameBuilder {
	return expression.Name("specification_values").
		AppendName(expression.NameNoDotSplit(key)).
		AppendName(expression.Name("quantity"))
}

// debitExpression subtracts the movement only if the general stock and every
// touched specification pool still cover it.
func debitExpression(d inventory.Debit, now time.Time) (expression.Expression, error) {
	update := expression.Set(
		expression.Name("stock"),
		expression.Minus(expression.Name("stock"), expression.Value(d.Quantity)),
	).Set(
		expression.Name("updated_at"),
		expression.Value(now),
	)

	// 재고가 충분한 경우에만 업데이트
	condition := expression.GreaterThanEqual(expression.Name("stock"), expression.Value(d.Quantity))
	for _, key := range d.SortedSpecKeys() {
		qty := specQuantity(key)
		update = update.Set(qty, expression.Minus(qty, expression.Value(d.Specs[key])))
		condition = condition.And(expression.GreaterThanEqual(qty, expression.Value(d.Specs[key])))
	}

	return expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()
}

// creditExpression adds the movement back. The product and every touched
// pool must exist.
func creditExpression(d inventory.Debit, now time.Time) (expression.Expression, error) {
	update := expression.Set(
		expression.Name("stock"),
		expression.Plus(expression.Name("stock"), expression.Value(d.Quantity)),
	).Set(
		expression.Name("updated_at"),
		expression.Value(now),
	)

	condition := expression.AttributeExists(expression.Name("product_id"))
	for _, key := range d.SortedSpecKeys() {
		qty := specQuantity(key)
		update = update.Set(qty, expression.Plus(qty, expression.Value(d.Specs[key])))
		condition = condition.And(expression.AttributeExists(qty))
	}

	return expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()
}
