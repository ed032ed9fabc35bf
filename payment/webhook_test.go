package payment

import "testing"

func TestParseEvent(t *testing.T) {
	body := []byte(`{
		"meta": {
			"event_name": "order_created",
			"custom_data": {"user_id": "user_1", "bill_id": "bill_1"}
		},
		"data": {
			"id": "order_99",
			"attributes": {"status": "paid"}
		}
	}`)

	event, err := ParseEvent(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if event.Name != EventOrderCreated {
		t.Errorf("expected name %q, got %q", EventOrderCreated, event.Name)
	}
	if event.OrderID != "order_99" {
		t.Errorf("expected order id %q, got %q", "order_99", event.OrderID)
	}
	if event.Status != "paid" {
		t.Errorf("expected status %q, got %q", "paid", event.Status)
	}
	if event.UserID() != "user_1" || event.BillID() != "bill_1" {
		t.Errorf("custom data not surfaced: %+v", event.CustomData)
	}
}

func TestParseEventErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing event name", `{"meta": {}, "data": {"id": "order_1"}}`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseEvent([]byte(tt.body)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestEventCustomDataMissing(t *testing.T) {
	event := &Event{Name: EventOrderCreated}
	if event.UserID() != "" || event.BillID() != "" {
		t.Error("expected empty identifiers when custom data is absent")
	}
}

func TestSignVerify(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"meta":{"event_name":"order_created"}}`)

	sig := Sign(secret, body)
	if !VerifySignature(secret, body, sig) {
		t.Error("expected signature to verify")
	}
	if VerifySignature("other-secret", body, sig) {
		t.Error("expected verification to fail under a different secret")
	}
	if VerifySignature(secret, []byte(`tampered`), sig) {
		t.Error("expected verification to fail for a tampered body")
	}
	if VerifySignature(secret, body, "") {
		t.Error("expected verification to fail for an empty signature")
	}
}
