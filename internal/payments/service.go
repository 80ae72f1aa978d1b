package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ticketly/internal/orders"
	"ticketly/internal/shared/apperr"
	"ticketly/internal/shared/config"
	"ticketly/pkg/logger"
)

// OrderFinalizer is the slice of the checkout engine the gateway boundary
// needs: settle pending orders and read them back.
type OrderFinalizer interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*orders.Order, error)
	FinalizeAccepted(ctx context.Context, orderID uuid.UUID, gatewayTxID string) (*orders.Order, error)
	FinalizeDeclined(ctx context.Context, orderID uuid.UUID, gatewayTxID string) (*orders.Order, error)
}

// Service is the payment gateway trust boundary. Every callback is verified
// against the shared secret before any order state is touched.
type Service interface {
	// BuildRedirect prepares the signed payload the frontend posts to the
	// gateway's hosted payment page for a pending order.
	BuildRedirect(ctx context.Context, orderID uuid.UUID) (*RedirectPayload, error)
	// HandleCallback verifies and applies one gateway answer. Replays of an
	// already-settled order return the order with KindAlreadyProcessed.
	HandleCallback(ctx context.Context, cb *NotifyCallback) (*orders.Order, error)
}

type service struct {
	orders OrderFinalizer
	cfg    *config.Config
}

// NewService creates the payments service.
func NewService(finalizer OrderFinalizer, cfg *config.Config) Service {
	return &service{orders: finalizer, cfg: cfg}
}

func (s *service) BuildRedirect(ctx context.Context, orderID uuid.UUID) (*RedirectPayload, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != orders.OrderPending || order.GatewayTxID == "" {
		return nil, apperr.New(apperr.KindInvalidState, "order %s is not awaiting payment", orderID)
	}

	payload := &RedirectPayload{
		MerchantID:    s.cfg.Gateway.MerchantID,
		TransactionID: order.GatewayTxID,
		OrderID:       order.ID.String(),
		Amount:        fmt.Sprintf("%.2f", order.Total),
		Currency:      s.cfg.Gateway.Currency,
		ReturnURL:     s.cfg.Gateway.RedirectURL,
		SignedFields:  redirectSignedFields,
	}
	payload.Signature = Sign(s.cfg.Gateway.Secret, map[string]string{
		"merchant_id":    payload.MerchantID,
		"transaction_id": payload.TransactionID,
		"order_id":       payload.OrderID,
		"amount":         payload.Amount,
		"currency":       payload.Currency,
	}, redirectSignedFields)

	return payload, nil
}

func (s *service) HandleCallback(ctx context.Context, cb *NotifyCallback) (*orders.Order, error) {
	// Verification comes first, unconditionally. An unsigned or tampered
	// callback must not even reveal whether the order exists.
	if cb.MerchantID != s.cfg.Gateway.MerchantID {
		logger.GetDefault().LogGatewayRejected(ctx, cb.TransactionID, "merchant id mismatch")
		return nil, apperr.New(apperr.KindSignatureMismatch, "callback rejected")
	}
	if !Verify(s.cfg.Gateway.Secret, cb.signedFields(), callbackSignedFields, cb.Signature) {
		logger.GetDefault().LogGatewayRejected(ctx, cb.TransactionID, "signature mismatch")
		return nil, apperr.New(apperr.KindSignatureMismatch, "callback rejected")
	}

	orderID, err := uuid.Parse(cb.OrderID)
	if err != nil {
		logger.GetDefault().LogGatewayRejected(ctx, cb.TransactionID, "malformed order id")
		return nil, apperr.New(apperr.KindInvalidInput, "invalid order id")
	}

	switch cb.Status {
	case StatusAccepted:
		return s.orders.FinalizeAccepted(ctx, orderID, cb.TransactionID)
	case StatusDeclined:
		return s.orders.FinalizeDeclined(ctx, orderID, cb.TransactionID)
	default:
		logger.GetDefault().LogGatewayRejected(ctx, cb.TransactionID, fmt.Sprintf("unknown status %q", cb.Status))
		return nil, apperr.New(apperr.KindInvalidInput, "unknown gateway status")
	}
}
