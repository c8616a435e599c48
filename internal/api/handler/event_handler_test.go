package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/infrastructure/queue"
)

func newEventFixture() (*EventHandler, *stubDispatcher) {
	d := &stubDispatcher{}
	orders := &stubCheckoutService{snapshots: map[string]*domain.CheckoutSnapshot{"ORDER1": awaitingSnapshot("ORDER1")}}
	return NewEventHandler(d, orders), d
}

func TestEventHandler_Navigation(t *testing.T) {
	e := newEcho()
	handler, d := newEventFixture()

	c, rec := newJSONContext(e, http.MethodPost, "/v1/checkouts/ORDER1/navigation",
		`{"url":"https://omnibus.test/payment/success?token=ORDER1&PayerID=P1"}`, "order_id", "ORDER1")

	if err := handler.Navigation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(d.events) != 1 {
		t.Fatalf("expected 1 enqueued event, got %d", len(d.events))
	}
	ev := d.events[0]
	if ev.OrderID != "ORDER1" || ev.Type != domain.SurfaceNavigation || ev.ReceivedAt.IsZero() {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestEventHandler_LoadError(t *testing.T) {
	e := newEcho()
	handler, d := newEventFixture()

	c, _ := newJSONContext(e, http.MethodPost, "/v1/checkouts/ORDER1/load-error",
		`{"status_code":404,"url":"https://omnibus.test/payment/success?PayerID=P1","description":"Not Found"}`, "order_id", "ORDER1")

	if err := handler.LoadError(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(d.events) != 1 || d.events[0].StatusCode != 404 || d.events[0].Type != domain.SurfaceLoadError {
		t.Fatalf("unexpected events: %+v", d.events)
	}
}

func TestEventHandler_Message(t *testing.T) {
	e := newEcho()
	handler, d := newEventFixture()

	c, _ := newJSONContext(e, http.MethodPost, "/v1/checkouts/ORDER1/message",
		`{"data":"{\"type\":\"URL_CHANGE_LOG\",\"url\":\"https://www.paypal.com/checkoutnow\"}"}`, "order_id", "ORDER1")

	if err := handler.Message(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(d.events) != 1 || string(d.events[0].Payload) != `{"type":"URL_CHANGE_LOG","url":"https://www.paypal.com/checkoutnow"}` {
		t.Fatalf("unexpected events: %+v", d.events)
	}
}

func TestEventHandler_UnknownOrder(t *testing.T) {
	e := newEcho()
	handler, d := newEventFixture()

	c, _ := newJSONContext(e, http.MethodPost, "/v1/checkouts/NOPE/navigation", `{"url":"https://x"}`, "order_id", "NOPE")

	if err := handler.Navigation(c); !errors.Is(err, domain.ErrCheckoutNotFound) {
		t.Fatalf("expected ErrCheckoutNotFound, got %v", err)
	}
	if len(d.events) != 0 {
		t.Fatal("nothing may be enqueued for an unknown order")
	}
}

func TestEventHandler_MissingURL(t *testing.T) {
	e := newEcho()
	handler, _ := newEventFixture()

	c, _ := newJSONContext(e, http.MethodPost, "/v1/checkouts/ORDER1/navigation", `{}`, "order_id", "ORDER1")

	var he *echo.HTTPError
	if err := handler.Navigation(c); !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestEventHandler_QueueFull(t *testing.T) {
	e := newEcho()
	handler, d := newEventFixture()
	d.err = queue.ErrQueueFull

	c, _ := newJSONContext(e, http.MethodPost, "/v1/checkouts/ORDER1/navigation", `{"url":"https://x"}`, "order_id", "ORDER1")

	var he *echo.HTTPError
	if err := handler.Navigation(c); !errors.As(err, &he) || he.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v", err)
	}
}
