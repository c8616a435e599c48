package handler

import (
	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
)

// --- Service result → HTTP response ---

func linksFor(orderID string) checkoutLinks {
	return checkoutLinks{
		Self:    "/v1/checkouts/" + orderID,
		Surface: "/v1/checkouts/" + orderID + "/surface",
		Events:  "/v1/checkouts/" + orderID + "/navigation",
	}
}

func toPriceResponse(p domain.PriceBreakdown) priceResponse {
	return priceResponse{
		BasePrice:   p.BasePrice,
		Discount:    p.Discount,
		FinalPrice:  p.FinalPrice,
		HasDiscount: p.HasDiscount,
	}
}

func toStartResponse(r *ports.StartCheckoutResult) startCheckoutResponse {
	return startCheckoutResponse{
		OrderID:        r.OrderID,
		ApprovalURL:    r.ApprovalURL,
		Price:          toPriceResponse(r.Price),
		InjectedScript: r.InjectedScript,
		Links:          linksFor(r.OrderID),
	}
}

func toCheckoutResponse(s *domain.CheckoutSnapshot) checkoutResponse {
	return checkoutResponse{
		OrderID:         s.Order.OrderID,
		State:           string(s.State),
		OrderStatus:     string(s.Order.Status),
		TripID:          s.Order.TripID,
		SeatNumber:      s.Order.SeatNumber,
		Price:           toPriceResponse(s.Order.Price),
		CaptureID:       s.Order.CaptureID,
		ProcessedEvents: s.ProcessedEvents,
		CaptureAttempts: s.CaptureAttempts,
		CancelRequested: s.CancelRequested,
		LastError:       s.LastError,
		CreatedAt:       s.Order.CreatedAt.UTC(),
		UpdatedAt:       s.Order.UpdatedAt.UTC(),
		Links:           linksFor(s.Order.OrderID),
	}
}

func toLeaveResponse(o *ports.LeaveOptions) leaveOptionsResponse {
	choices := make([]string, len(o.Choices))
	for i, ch := range o.Choices {
		choices[i] = string(ch)
	}
	return leaveOptionsResponse{
		OrderID: o.OrderID,
		State:   string(o.State),
		Choices: choices,
	}
}
