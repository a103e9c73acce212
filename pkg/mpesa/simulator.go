package mpesa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// STKPusher initiates a mobile-money payment prompt on a customer's phone.
type STKPusher interface {
	STKPush(ctx context.Context, req STKPushRequest) (*STKPushResponse, error)
}

// Simulator is an STKPusher that accepts every well-formed request without
// contacting a payment processor.
type Simulator struct {
	newID func() string
}

// NewSimulator constructs a Simulator with uuid-based request ids.
func NewSimulator() *Simulator {
	return &Simulator{newID: func() string {
		return strings.ReplaceAll(uuid.New().String(), "-", "")[:20]
	}}
}

// STKPush returns a synthesized acceptance acknowledgement.
func (s *Simulator) STKPush(ctx context.Context, req STKPushRequest) (*STKPushResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.PhoneNumber == "" {
		return nil, errors.New("phone number is required")
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", req.Amount)
	}

	resp := &STKPushResponse{
		MerchantRequestID:   "MR" + s.newID(),
		CheckoutRequestID:   "ws_CO_" + s.newID(),
		ResponseCode:        ResponseCodeAccepted,
		ResponseDescription: "Success. Request accepted for processing",
		CustomerMessage:     "Success. Request accepted for processing",
	}

	log.Debug().
		Str("account_reference", req.AccountReference).
		Str("checkout_request_id", resp.CheckoutRequestID).
		Str("amount", req.Amount.String()).
		Msg("Simulated STK push accepted")

	return resp, nil
}
