package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Webhook event names the gateway delivers. Settlement reacts to the
// order and subscription lifecycle; the rest are acknowledged and
// ignored.
const (
	EventOrderCreated        = "order_created"
	EventOrderRefunded       = "order_refunded"
	EventSubscriptionCreated = "subscription_created"
	EventSubscriptionUpdated = "subscription_updated"
	EventSubscriptionExpired = "subscription_expired"
	EventSubscriptionPaused  = "subscription_paused"
	EventSubscriptionResumed = "subscription_resumed"
)

// Event is a parsed webhook delivery.
type Event struct {
	Name       string            `json:"name"`
	OrderID    string            `json:"order_id,omitempty"`
	Status     string            `json:"status,omitempty"`
	CustomData map[string]string `json:"custom_data,omitempty"`
}

// UserID returns the user identifier embedded in the checkout's custom
// data, or "".
func (e *Event) UserID() string { return e.CustomData["user_id"] }

// BillID returns the bill identifier embedded in the checkout's custom
// data, or "".
func (e *Event) BillID() string { return e.CustomData["bill_id"] }

// webhookEnvelope is the raw wire shape of a delivery.
type webhookEnvelope struct {
	Meta struct {
		EventName  string            `json:"event_name"`
		CustomData map[string]string `json:"custom_data"`
	} `json:"meta"`
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Status string `json:"status"`
		} `json:"attributes"`
	} `json:"data"`
}

// ParseEvent decodes a webhook body into an Event.
func ParseEvent(body []byte) (*Event, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("payment: parse webhook: %w", err)
	}
	if env.Meta.EventName == "" {
		return nil, fmt.Errorf("payment: parse webhook: missing event name")
	}
	return &Event{
		Name:       env.Meta.EventName,
		OrderID:    env.Data.ID,
		Status:     env.Data.Attributes.Status,
		CustomData: env.Meta.CustomData,
	}, nil
}

// Sign computes the hex HMAC-SHA256 signature of a webhook body. The
// gateway signs the raw body with the shared webhook secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches the body under the
// shared secret. Comparison is constant-time.
func VerifySignature(secret string, body []byte, signature string) bool {
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
