package sms

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rental-service/pkg/config"
)

// Provider error classifications. The Twilio error codes 21211 and 21614 are
// the two the service distinguishes; everything else is a generic failure.
var (
	// ErrInvalidNumber indicates the destination number is malformed.
	ErrInvalidNumber = errors.New("invalid mobile number")

	// ErrNotSMSCapable indicates the destination cannot receive SMS
	// (for example a landline).
	ErrNotSMSCapable = errors.New("this number cannot receive SMS")
)

const (
	codeInvalidNumber = 21211
	codeNotSMSCapable = 21614

	// maxErrorBodyBytes caps how much of a provider error response is read.
	maxErrorBodyBytes = 64 << 10
)

// Sender delivers a text message to a formatted phone number. Delivery is
// best-effort and single-attempt; only the provider's synchronous
// acknowledgment is observed.
type Sender interface {
	Send(to, body string) error
}

// Client is a Twilio-compatible REST client for sending SMS messages.
type Client struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string
	HTTPClient *http.Client
}

// errorResponse represents the provider's error payload
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewClient creates a new SMS client from the loaded configuration
func NewClient(cfg *config.SMSConfig) *Client {
	return &Client{
		BaseURL:    cfg.BaseURL,
		AccountSID: cfg.AccountSID,
		AuthToken:  cfg.AuthToken,
		From:       cfg.FromNumber,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts a message to the provider's Messages endpoint. Provider error
// codes 21211 and 21614 are mapped to their sentinel errors; any other
// failure is returned as a generic delivery error.
func (c *Client) Send(to, body string) error {
	data := url.Values{}
	data.Set("To", to)
	data.Set("From", c.From)
	data.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.BaseURL, c.AccountSID)
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.AccountSID, c.AuthToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// The error payload is small; cap the read so a misbehaving provider
	// cannot stream an arbitrarily large body.
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to send SMS: status %d", resp.StatusCode)
	}

	var errResp errorResponse
	if err := json.Unmarshal(respBody, &errResp); err == nil {
		switch errResp.Code {
		case codeInvalidNumber:
			return ErrInvalidNumber
		case codeNotSMSCapable:
			return ErrNotSMSCapable
		}
	}

	return fmt.Errorf("failed to send SMS: status %d: %s", resp.StatusCode, string(respBody))
}
