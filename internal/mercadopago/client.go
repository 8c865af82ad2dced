// Package mercadopago reads payments back from the provider so webhook
// notifications are applied from provider data, not from the request body.
package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

var ErrInvalidID = errors.New("mercadopago: invalid payment id")

const StatusApproved = "approved"

type Payment struct {
	ID                string
	Status            string
	StatusDetail      string
	ExternalReference string
}

func (p *Payment) Approved() bool {
	return p != nil && p.Status == StatusApproved
}

type Client struct {
	payments payment.Client
}

func New(accessToken string) (*Client, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, errors.New("mercadopago: empty access token")
	}
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &Client{payments: payment.NewClient(cfg)}, nil
}

func parseID(id string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return n, nil
}

func fromResponse(res *payment.Response) *Payment {
	return &Payment{
		ID:                strconv.Itoa(res.ID),
		Status:            res.Status,
		StatusDetail:      res.StatusDetail,
		ExternalReference: res.ExternalReference,
	}
}

// Payment fetches the payment with the given id.
func (c *Client) Payment(ctx context.Context, id string) (*Payment, error) {
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}
	res, err := c.payments.Get(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("mercadopago get payment %d: %w", n, err)
	}
	return fromResponse(res), nil
}
