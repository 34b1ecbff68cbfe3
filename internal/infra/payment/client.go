package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"drively/internal/app/policies"
	"drively/internal/domain/cars"
	"drively/internal/domain/checkout"
)

// Client talks to the hosted payment provider over HTTP. It implements both
// the session-creation port and the provider-client port: the provider
// initializes asynchronously, so Ready stays false until the first
// successful handshake.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	APIKey  string
	Logger  *slog.Logger

	ready atomic.Bool
}

type createSessionRequest struct {
	CarID           string `json:"car_id"`
	CarLabel        string `json:"car_label"`
	CarImageURL     string `json:"car_image_url,omitempty"`
	PickupDate      string `json:"pickup_date"`
	ReturnDate      string `json:"return_date"`
	TotalDays       int    `json:"total_days"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	PickupLocation  string `json:"pickup_location,omitempty"`
	DropoffLocation string `json:"dropoff_location,omitempty"`
}

type createSessionResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

type redirectResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// Handshake pings the provider once and flips the client ready. Call it at
// startup (and from a retry loop if the provider boots slowly).
func (c *Client) Handshake(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/health", nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("payment: provider health returned status %d", resp.StatusCode)
	}
	c.ready.Store(true)
	if c.Logger != nil {
		c.Logger.Info("payment provider ready", "base_url", c.BaseURL)
	}
	return nil
}

func (c *Client) Ready() bool {
	return c.ready.Load()
}

// CreateSession asks the provider for a hosted checkout session covering the
// draft. Failures are classified so the user-facing message can distinguish
// connectivity problems from provider rejections.
func (c *Client) CreateSession(ctx context.Context, draft checkout.Draft, car cars.Summary) (policies.PaymentSession, error) {
	var zero policies.PaymentSession
	if c == nil || c.HTTP == nil {
		return zero, &checkout.HandoffError{Kind: checkout.FailureUnknown, Err: errors.New("payment: http client not configured")}
	}
	payload := createSessionRequest{
		CarID:           string(draft.CarID),
		CarLabel:        fmt.Sprintf("%s %s %d", car.Brand, car.Model, car.Year),
		CarImageURL:     car.ImageURL,
		PickupDate:      draft.Pickup.Format(time.DateOnly),
		ReturnDate:      draft.Return.Format(time.DateOnly),
		TotalDays:       draft.TotalDays,
		Amount:          draft.Total.Amount,
		Currency:        draft.Total.Currency,
		PickupLocation:  draft.PickupLocation,
		DropoffLocation: draft.DropoffLocation,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return zero, &checkout.HandoffError{Kind: checkout.FailureUnknown, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return zero, &checkout.HandoffError{Kind: checkout.FailureUnknown, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.logError("payment session request failed", draft.CarID, err)
		return zero, &checkout.HandoffError{Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("payment: provider returned status %d: %s", resp.StatusCode, string(snippet))
		c.logError("payment session rejected", draft.CarID, err)
		return zero, &checkout.HandoffError{Kind: checkout.FailureProvider, Err: err}
	}

	var decoded createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.logError("payment session decode failed", draft.CarID, err)
		return zero, &checkout.HandoffError{Kind: checkout.FailureProvider, Err: err}
	}
	return policies.PaymentSession{ID: decoded.SessionID, RedirectURL: decoded.RedirectURL}, nil
}

// RedirectToCheckout resolves the hosted page URL for a session that was
// created without one.
func (c *Client) RedirectToCheckout(ctx context.Context, sessionID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/checkout/sessions/"+sessionID+"/redirect", nil)
	if err != nil {
		return "", &checkout.HandoffError{Kind: checkout.FailureUnknown, Err: err}
	}
	c.authorize(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", &checkout.HandoffError{Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("payment: redirect returned status %d: %s", resp.StatusCode, string(snippet))
		return "", &checkout.HandoffError{Kind: checkout.FailureProvider, Err: err}
	}
	var decoded redirectResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &checkout.HandoffError{Kind: checkout.FailureProvider, Err: err}
	}
	if decoded.RedirectURL == "" {
		return "", checkout.ErrNoRedirectTarget
	}
	return decoded.RedirectURL, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
}

func (c *Client) logError(msg string, carID cars.CarID, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "car_id", carID, "error", err)
}

// classifyTransport decides whether a round-trip error was a connectivity
// problem. Timeouts, DNS and connection errors count as network.
func classifyTransport(err error) checkout.FailureKind {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return checkout.FailureNetwork
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return checkout.FailureNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return checkout.FailureNetwork
	}
	return checkout.FailureUnknown
}

var (
	_ policies.PaymentSessionPort  = (*Client)(nil)
	_ policies.PaymentProviderPort = (*Client)(nil)
)
