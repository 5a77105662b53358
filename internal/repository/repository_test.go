package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloud-wave-best-zizon/order-service/internal/apperr"
	"github.com/cloud-wave-best-zizon/order-service/internal/domain"
	"github.com/cloud-wave-best-zizon/order-service/internal/inventory"
)

var testScope = domain.StoreScope{StoreID: "store-1"}

type fakeDynamo struct {
	getOut      *dynamodb.GetItemOutput
	updateOut   *dynamodb.UpdateItemOutput
	queryOut    *dynamodb.QueryOutput
	err         error
	puts        []*dynamodb.PutItemInput
	updates     []*dynamodb.UpdateItemInput
	transaction *dynamodb.TransactWriteItemsInput
}

func (f *fakeDynamo) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.getOut == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return f.getOut, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, f.err
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.err != nil {
		return nil, f.err
	}
	if f.updateOut == nil {
		return &dynamodb.UpdateItemOutput{}, nil
	}
	return f.updateOut, nil
}

func (f *fakeDynamo) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.queryOut == nil {
		return &dynamodb.QueryOutput{}, nil
	}
	return f.queryOut, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.transaction = in
	return &dynamodb.TransactWriteItemsOutput{}, f.err
}

func canceled(codes ...string) error {
	reasons := make([]types.CancellationReason, len(codes))
	for i, c := range codes {
		reasons[i] = types.CancellationReason{Code: aws.String(c)}
	}
	return &types.TransactionCanceledException{Message: aws.String("canceled"), CancellationReasons: reasons}
}

func TestDebitExpression_GuardsEveryPool(t *testing.T) {
	d := inventory.Debit{ProductID: "p1", Quantity: 3, Specs: map[string]int{
		domain.SpecKey("size", "large"): 2,
		domain.SpecKey("color", "red"):  1,
	}}

	expr, err := debitExpression(d, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, n := range expr.Names() {
		names[n] = true
	}
	assert.True(t, names["stock"])
	assert.True(t, names["specification_values"])
	assert.True(t, names["size:large"], "spec keys must stay a single path element")
	assert.True(t, names["color:red"])
	assert.Contains(t, *expr.Condition(), ">=")
	assert.Contains(t, *expr.Update(), "-")
}

func TestCreditExpression_RequiresExistingPools(t *testing.T) {
	d := inventory.Debit{ProductID: "p1", Quantity: 1, Specs: map[string]int{domain.SpecKey("size", "large"): 1}}

	expr, err := creditExpression(d, time.Now())
	require.NoError(t, err)
	assert.Contains(t, *expr.Condition(), "attribute_exists")
	assert.Contains(t, *expr.Update(), "+")
}

func TestOrderRepository_CreateOrder_WritesOneTransaction(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewOrderRepository(fake, "orders", "products")

	debits := []inventory.Debit{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1, Specs: map[string]int{domain.SpecKey("size", "m"): 1}},
	}
	err := repo.CreateOrder(context.Background(), testScope, &domain.Order{OrderID: "o1", Status: domain.OrderPending}, debits)
	require.NoError(t, err)

	require.NotNil(t, fake.transaction)
	items := fake.transaction.TransactItems
	require.Len(t, items, 3)
	assert.Equal(t, "products", aws.ToString(items[0].Update.TableName))
	assert.Equal(t, "products", aws.ToString(items[1].Update.TableName))
	assert.Equal(t, "orders", aws.ToString(items[2].Put.TableName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "store-1"}, items[2].Put.Item["store_id"])
}

func TestOrderRepository_CreateOrder_MapsCancellationReasons(t *testing.T) {
	debits := []inventory.Debit{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 5}}

	tests := []struct {
		name    string
		err     error
		kind    apperr.Kind
		product string
	}{
		{"second product ran out", canceled("None", "ConditionalCheckFailed", "None"), apperr.KindInsufficientGeneralStock, "p2"},
		{"lost race", canceled("TransactionConflict", "None", "None"), apperr.KindInsufficientGeneralStock, "p1"},
		{"order exists", canceled("None", "None", "ConditionalCheckFailed"), apperr.KindConflict, ""},
		{"throttled", errors.New("throttling"), apperr.KindInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewOrderRepository(&fakeDynamo{err: tt.err}, "orders", "products")

			err := repo.CreateOrder(context.Background(), testScope, &domain.Order{OrderID: "o1"}, debits)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			if tt.product != "" {
				e, ok := apperr.As(err)
				require.True(t, ok)
				assert.Equal(t, tt.product, e.ProductID)
			}
		})
	}
}

func TestOrderRepository_UpdateStatus_ConditionFailures(t *testing.T) {
	missing := &types.ConditionalCheckFailedException{Message: aws.String("failed")}
	moved := &types.ConditionalCheckFailedException{
		Message: aws.String("failed"),
		Item:    map[string]types.AttributeValue{"status": &types.AttributeValueMemberS{Value: "shipped"}},
	}

	repo := NewOrderRepository(&fakeDynamo{err: missing}, "orders", "products")
	err := repo.UpdateStatus(context.Background(), testScope, "o1", domain.OrderPending, domain.OrderConfirmed)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	repo = NewOrderRepository(&fakeDynamo{err: moved}, "orders", "products")
	err = repo.UpdateStatus(context.Background(), testScope, "o1", domain.OrderPending, domain.OrderConfirmed)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestOrderRepository_CancelOrder_CreditsStock(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewOrderRepository(fake, "orders", "products")

	err := repo.CancelOrder(context.Background(), testScope, "o1", domain.OrderConfirmed, "changed mind",
		[]inventory.Debit{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)

	items := fake.transaction.TransactItems
	require.Len(t, items, 2)
	assert.Equal(t, "orders", aws.ToString(items[0].Update.TableName))
	assert.Contains(t, *items[1].Update.UpdateExpression, "+")
}

func TestProductRepository_CreateAndGet(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewProductRepository(fake, "products")

	err := repo.CreateProduct(context.Background(), testScope, &domain.Product{ProductID: "p1", Name: "Shirt", Stock: 3})
	require.NoError(t, err)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "store-1"}, fake.puts[0].Item["store_id"])

	_, err = repo.GetProduct(context.Background(), testScope, "p1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	dup := NewProductRepository(&fakeDynamo{err: &types.ConditionalCheckFailedException{}}, "products")
	err = dup.CreateProduct(context.Background(), testScope, &domain.Product{ProductID: "p1"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestWholesalerRepository_FindByEmailMiss(t *testing.T) {
	repo := NewWholesalerRepository(&fakeDynamo{}, "wholesalers")

	_, err := repo.FindWholesalerByEmail(context.Background(), testScope, "x@example.com")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCounterRepository_NextOrderSequence(t *testing.T) {
	fake := &fakeDynamo{updateOut: &dynamodb.UpdateItemOutput{
		Attributes: map[string]types.AttributeValue{"seq": &types.AttributeValueMemberN{Value: "42"}},
	}}
	repo := NewCounterRepository(fake, "counters")

	seq, err := repo.NextOrderSequence(context.Background(), testScope)
	require.NoError(t, err)
	assert.Equal(t, int64(42), seq)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "order#store-1"}, fake.updates[0].Key["counter_id"])
}

func TestOrderRepository_ReassignGuestOrders(t *testing.T) {
	fake := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		{"order_id": &types.AttributeValueMemberS{Value: "o1"}, "guest_id": &types.AttributeValueMemberS{Value: "g1"}},
		{"order_id": &types.AttributeValueMemberS{Value: "o2"}, "guest_id": &types.AttributeValueMemberS{Value: "g1"}},
	}}}
	repo := NewOrderRepository(fake, "orders", "products")

	n, err := repo.ReassignGuestOrders(context.Background(), testScope, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, fake.updates, 2)
	assert.Contains(t, *fake.updates[0].UpdateExpression, "REMOVE")
}
