// Package psp is the HTTP client for the external payment service
// provider. The provider's internals (QR issuing, card acquiring) are
// opaque; only the consumed wire shapes are modelled here.
package psp

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/theerakarnm/ekoe-checkout/internal/payment"
)

// ErrPaymentNotFound is returned when the provider does not know the
// payment ID.
var ErrPaymentNotFound = errors.New("payment not found")

const maxResponseBody = 1 << 20

// Transfer is a created QR bank-transfer payment.
type Transfer struct {
	PaymentID string
	QRImage   string // data URL of the QR code rendered by the provider
	ExpiresAt time.Time
}

// Client talks to the payment provider. Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Client for the given provider base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

var _ payment.StatusClient = (*Client)(nil)

// GetPaymentStatus fetches the lifecycle status of a payment.
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (payment.Status, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil)
	if err != nil {
		return "", err
	}

	var status string
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == "status" {
			s, err := d.Str()
			status = s
			return err
		}
		return d.Skip()
	}); err != nil {
		return "", errors.Wrap(err, "decode status response")
	}

	switch s := payment.Status(status); s {
	case payment.StatusPending, payment.StatusCompleted, payment.StatusFailed:
		return s, nil
	default:
		return "", errors.Errorf("unknown payment status %q", status)
	}
}

// CreateTransfer opens a QR bank-transfer payment for the given order.
func (c *Client) CreateTransfer(ctx context.Context, orderID string, amount int64) (*Transfer, error) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("orderId", func(e *jx.Encoder) { e.Str(orderID) })
		e.Field("amount", func(e *jx.Encoder) { e.Int64(amount) })
		e.Field("currency", func(e *jx.Encoder) { e.Str("THB") })
	})

	body, err := c.do(ctx, http.MethodPost, "/v1/transfers", e.Bytes())
	if err != nil {
		return nil, err
	}

	var (
		t         Transfer
		expiresAt string
	)
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "paymentId":
			t.PaymentID, err = d.Str()
		case "qrImage":
			t.QRImage, err = d.Str()
		case "expiresAt":
			expiresAt, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return nil, errors.Wrap(err, "decode transfer response")
	}

	if t.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return nil, errors.Wrapf(err, "parse expiresAt %q", expiresAt)
	}
	return &t, nil
}

// InitiateCardPayment opens a card payment and returns the redirect URL
// the browser is sent to.
func (c *Client) InitiateCardPayment(ctx context.Context, orderID string, amount int64, returnURL string) (string, error) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("orderId", func(e *jx.Encoder) { e.Str(orderID) })
		e.Field("amount", func(e *jx.Encoder) { e.Int64(amount) })
		e.Field("currency", func(e *jx.Encoder) { e.Str("THB") })
		e.Field("returnUrl", func(e *jx.Encoder) { e.Str(returnURL) })
	})

	body, err := c.do(ctx, http.MethodPost, "/v1/card-payments", e.Bytes())
	if err != nil {
		return "", err
	}

	var paymentURL string
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == "paymentUrl" {
			s, err := d.Str()
			paymentURL = s
			return err
		}
		return d.Skip()
	}); err != nil {
		return "", errors.Wrap(err, "decode card payment response")
	}

	if paymentURL == "" {
		return "", errors.New("provider returned no paymentUrl")
	}
	return paymentURL, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrPaymentNotFound
	case resp.StatusCode >= 400:
		return nil, errors.Errorf("%s %s: provider returned %d", method, path, resp.StatusCode)
	}
	return data, nil
}
