// Package payment reserves the interface for paid featured listings.
// No provider is wired yet, so every operation logs its input and returns
// ErrNotImplemented without touching the network.
package payment

import (
	"context"
	"errors"

	"github.com/hadirot/functions/internal/logger"
)

// ErrNotImplemented is the only outcome of every payment operation.
var ErrNotImplemented = errors.New("Stripe integration not yet implemented")

// NotImplementedError names the operation that was attempted.
// errors.Is(err, ErrNotImplemented) holds for every instance.
type NotImplementedError struct {
	Operation string
}

func (e *NotImplementedError) Error() string {
	return e.Operation + ": " + ErrNotImplemented.Error()
}

func (e *NotImplementedError) Unwrap() error {
	return ErrNotImplemented
}

// FeaturedListingPayment is the intent to feature a listing for a number of days.
type FeaturedListingPayment struct {
	ListingID    string `json:"listingId"`
	DurationDays int    `json:"durationDays"`
	// AmountCents is in minor currency units
	AmountCents int64 `json:"amountCents"`
}

// CheckoutSessionRequest describes a hosted checkout for a featured listing.
type CheckoutSessionRequest struct {
	ListingID    string `json:"listingId"`
	DurationDays int    `json:"durationDays"`
	SuccessURL   string `json:"successUrl"`
	CancelURL    string `json:"cancelUrl"`
}

// PaymentIntent is what a provider would return for a created payment.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"status"`
}

// CheckoutSession is what a provider would return for a checkout session.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Service is the payment surface.
type Service struct {
	log *logger.Logger
}

// NewService creates a new payment Service
func NewService(log *logger.Logger) *Service {
	return &Service{log: log.WithComponent("payment")}
}

// CreatePayment would create a payment intent for a featured listing.
func (s *Service) CreatePayment(ctx context.Context, p FeaturedListingPayment) (*PaymentIntent, error) {
	s.log.Info().
		Str("listing_id", p.ListingID).
		Int("duration_days", p.DurationDays).
		Int64("amount_cents", p.AmountCents).
		Msg("create payment requested")
	return nil, &NotImplementedError{Operation: "create payment"}
}

// ConfirmPayment would confirm a previously created payment intent.
func (s *Service) ConfirmPayment(ctx context.Context, paymentIntentID string) (*PaymentIntent, error) {
	s.log.Info().
		Str("payment_intent_id", paymentIntentID).
		Msg("confirm payment requested")
	return nil, &NotImplementedError{Operation: "confirm payment"}
}

// CreateCheckoutSession would create a hosted checkout session.
func (s *Service) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error) {
	s.log.Info().
		Str("listing_id", req.ListingID).
		Int("duration_days", req.DurationDays).
		Str("success_url", req.SuccessURL).
		Str("cancel_url", req.CancelURL).
		Msg("create checkout session requested")
	return nil, &NotImplementedError{Operation: "create checkout session"}
}
