package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
)

const (
	collectionOrders      = "payment_orders"
	collectionTransitions = "checkout_transitions"

	queryTimeout = 5 * time.Second
	indexTimeout = 30 * time.Second
)

// CheckoutRepository keeps the payment order audit trail in MongoDB. Orders
// are upserted by order id; every state change is appended to a separate
// collection.
type CheckoutRepository struct {
	orders      *mongo.Collection
	transitions *mongo.Collection
}

func NewCheckoutRepository(db *mongo.Database) *CheckoutRepository {
	return &CheckoutRepository{
		orders:      db.Collection(collectionOrders),
		transitions: db.Collection(collectionTransitions),
	}
}

// Save inserts or replaces the order document.
func (r *CheckoutRepository) Save(ctx context.Context, order *domain.PaymentOrder) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.orders.ReplaceOne(ctx,
		bson.M{"order_id": order.OrderID},
		order,
		options.Replace().SetUpsert(true),
	)
	return err
}

// AppendTransition records one coordinator state change.
func (r *CheckoutRepository) AppendTransition(ctx context.Context, orderID string, from, to domain.CheckoutState, note string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	doc := bson.M{
		"order_id":    orderID,
		"from":        string(from),
		"to":          string(to),
		"note":        note,
		"recorded_at": time.Now().UTC(),
	}
	_, err := r.transitions.InsertOne(ctx, doc)
	return err
}

func (r *CheckoutRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	return r.findOne(ctx, bson.M{"order_id": orderID})
}

// FindByCaptureID looks up the order behind a provider transaction id, which
// is what customers quote to support.
func (r *CheckoutRepository) FindByCaptureID(ctx context.Context, captureID string) (*domain.PaymentOrder, error) {
	return r.findOne(ctx, bson.M{"capture_id": captureID})
}

func (r *CheckoutRepository) findOne(ctx context.Context, filter bson.M) (*domain.PaymentOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var o domain.PaymentOrder
	err := r.orders.FindOne(ctx, filter).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCheckoutNotFound
		}
		return nil, err
	}
	return &o, nil
}

// EnsureIndexes creates the lookup indexes of both collections.
func (r *CheckoutRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "capture_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return err
	}
	_, err = r.transitions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "recorded_at", Value: 1}},
	})
	return err
}
