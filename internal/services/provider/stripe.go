package provider

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// Stripe opens Checkout Sessions and pays sellers with Connect transfers.
type Stripe struct {
	api *client.API
}

func NewStripe(secretKey string, timeout time.Duration) *Stripe {
	httpClient := &http.Client{Timeout: timeout}
	noRetries := stripe.Int64(0)

	backends := &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			HTTPClient:        httpClient,
			MaxNetworkRetries: noRetries,
		}),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, &stripe.BackendConfig{
			HTTPClient:        httpClient,
			MaxNetworkRetries: noRetries,
		}),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, &stripe.BackendConfig{
			HTTPClient:        httpClient,
			MaxNetworkRetries: noRetries,
		}),
	}

	api := &client.API{}
	api.Init(secretKey, backends)
	return &Stripe{api: api}
}

func (s *Stripe) Name() string {
	return "stripe"
}

func (s *Stripe) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.ReturnURL),
		CancelURL:          stripe.String(req.ReturnURL),
		ClientReferenceID:  stripe.String(req.Reference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
					UnitAmount: stripe.Int64(req.Amount.Minor()),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.BuyerContact != "" {
		params.CustomerEmail = stripe.String(req.BuyerContact)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.Reference)
	params.AddMetadata("product_id", strconv.FormatUint(uint64(req.ProductID), 10))
	params.AddMetadata("reference", req.Reference)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, s.wrap("create session", err)
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

func (s *Stripe) CreatePayout(ctx context.Context, req PayoutRequest) (*Payout, error) {
	params := &stripe.TransferParams{
		Amount:        stripe.Int64(req.Amount.Minor()),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		Destination:   stripe.String(req.Recipient),
		TransferGroup: stripe.String(req.Reference),
	}
	params.Context = ctx
	params.SetIdempotencyKey("payout-" + req.Reference)

	tr, err := s.api.Transfers.New(params)
	if err != nil {
		return nil, s.wrap("create payout", err)
	}
	return &Payout{ID: tr.ID, Status: "created"}, nil
}

func (s *Stripe) wrap(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return &Error{Provider: s.Name(), Op: op, StatusCode: se.HTTPStatusCode, Body: se.Msg, Err: err}
	}
	return &Error{Provider: s.Name(), Op: op, Err: err}
}
