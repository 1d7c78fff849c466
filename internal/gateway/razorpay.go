// Package gateway adapts the Razorpay client to the narrow order
// create/fetch surface the settlement engine needs.
package gateway

import (
	"context"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// ErrOrderNotFound is returned when the gateway has no order for the
// given id.
var ErrOrderNotFound = errors.New("gateway order not found")

// Order is a payment-provider object representing an amount to be
// collected. Amount is in minor currency units (paise).
type Order struct {
	ID       string
	Amount   int64
	Currency string
}

// Razorpay wraps the Razorpay REST client.
type Razorpay struct {
	client *razorpay.Client
}

// NewRazorpay constructs a Razorpay gateway from API credentials.
func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{client: razorpay.NewClient(keyID, keySecret)}
}

// CreateOrder creates a gateway order for the given minor-unit amount.
func (g *Razorpay) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}
	return orderFromBody(body)
}

// FetchOrder retrieves the authoritative order state by id. The amount
// it reports is what settlement trusts; client-supplied amounts never
// reach the booking.
func (g *Razorpay) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	body, err := g.client.Order.Fetch(orderID, nil, nil)
	if err != nil {
		// The Razorpay client surfaces a missing order as a generic
		// request error; settlement treats any fetch failure for the
		// given id as order-not-found.
		return nil, ErrOrderNotFound
	}
	return orderFromBody(body)
}

func orderFromBody(body map[string]interface{}) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("gateway response missing order id")
	}
	amount, ok := body["amount"].(float64)
	if !ok {
		return nil, fmt.Errorf("gateway response missing order amount")
	}
	currency, _ := body["currency"].(string)
	return &Order{ID: id, Amount: int64(amount), Currency: currency}, nil
}
