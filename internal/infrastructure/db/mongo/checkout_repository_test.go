package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
)

func TestCheckoutRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("save upserts order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		repo := NewCheckoutRepository(mt.DB)

		if err := repo.Save(ctx, &domain.PaymentOrder{OrderID: "ORDER1", Status: domain.OrderCreated}); err != nil {
			mt.Fatalf("Save: %v", err)
		}
	})

	mt.Run("append transition", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewCheckoutRepository(mt.DB)

		err := repo.AppendTransition(ctx, "ORDER1", domain.CheckoutCapturing, domain.CheckoutConfirmed, "capture completed")
		if err != nil {
			mt.Fatalf("AppendTransition: %v", err)
		}
	})

	mt.Run("append transition write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		repo := NewCheckoutRepository(mt.DB)

		if err := repo.AppendTransition(ctx, "ORDER1", domain.CheckoutNone, domain.CheckoutOrderCreated, ""); err == nil {
			mt.Fatal("expected write error")
		}
	})

	mt.Run("find by capture id", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionOrders
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "order_id", Value: "ORDER1"},
			{Key: "capture_id", Value: "CAP1"},
			{Key: "seat_number", Value: 12},
			{Key: "status", Value: string(domain.OrderCaptured)},
		}))
		repo := NewCheckoutRepository(mt.DB)

		o, err := repo.FindByCaptureID(ctx, "CAP1")
		if err != nil {
			mt.Fatalf("FindByCaptureID: %v", err)
		}
		if o.OrderID != "ORDER1" || o.SeatNumber != 12 || o.Status != domain.OrderCaptured {
			mt.Fatalf("unexpected order: %+v", o)
		}
	})

	mt.Run("find missing order", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionOrders
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := NewCheckoutRepository(mt.DB)

		if _, err := repo.FindByOrderID(ctx, "NOPE"); !errors.Is(err, domain.ErrCheckoutNotFound) {
			mt.Fatalf("expected ErrCheckoutNotFound, got %v", err)
		}
	})
}
