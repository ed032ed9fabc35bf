package storefront

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/storefront/account"
	"github.com/xraph/storefront/billing"
	"github.com/xraph/storefront/catalog"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/payment"
	"github.com/xraph/storefront/types"
)

// HandleWebhook verifies, parses, and dispatches one gateway webhook
// delivery. Order and subscription creation settle the referenced bill;
// refunds flip it back; other lifecycle events are acknowledged without
// side effects. Replayed deliveries are no-ops.
func (sf *Storefront) HandleWebhook(ctx context.Context, body []byte, signature string) (*payment.Event, error) {
	if sf.webhookSecret != "" && !payment.VerifySignature(sf.webhookSecret, body, signature) {
		return nil, fmt.Errorf("handle webhook: %w", ErrInvalidSignature)
	}

	event, err := payment.ParseEvent(body)
	if err != nil {
		return nil, fmt.Errorf("handle webhook: %w", err)
	}

	sf.plugins.EmitWebhookReceived(ctx, event.Name, body)

	switch event.Name {
	case payment.EventOrderCreated, payment.EventSubscriptionCreated:
		if err := sf.settleBill(ctx, event); err != nil {
			return nil, fmt.Errorf("handle webhook: %w", err)
		}
	case payment.EventOrderRefunded:
		if err := sf.refundBill(ctx, event); err != nil {
			return nil, fmt.Errorf("handle webhook: %w", err)
		}
	case payment.EventSubscriptionUpdated, payment.EventSubscriptionExpired,
		payment.EventSubscriptionPaused, payment.EventSubscriptionResumed:
		sf.logger.Debug("webhook acknowledged",
			"event", event.Name,
			"order_id", event.OrderID,
		)
	default:
		sf.logger.Warn("unhandled webhook event",
			"event", event.Name,
		)
	}

	return event, nil
}

// settleBill marks the referenced bill paid and fulfills its paid
// products. A bill that is no longer pending has already been settled;
// the delivery is handed to resettleBill, which retries any lines whose
// entitlements did not apply the first time.
func (sf *Storefront) settleBill(ctx context.Context, event *payment.Event) error {
	billID, err := id.ParseBillID(event.BillID())
	if err != nil {
		return ValidationError{Field: "custom_data.bill_id", Message: "missing or malformed"}
	}

	bill, err := sf.store.MarkBillPaid(ctx, billID, time.Now().UTC(), event.OrderID)
	if err != nil {
		if errors.Is(err, ErrBillNotPending) {
			return sf.resettleBill(ctx, billID, event.OrderID)
		}
		return err
	}

	sf.plugins.EmitBillPaid(ctx, bill)

	if err := sf.fulfillBill(ctx, bill); err != nil {
		return err
	}

	sf.logger.Info("bill settled",
		"bill_id", bill.ID.String(),
		"order_id", event.OrderID,
		"products", len(bill.PaidProducts),
	)

	return nil
}

// resettleBill handles a settlement delivery for a bill that is already
// past pending. When every line is fulfilled the replay is a no-op;
// otherwise the unfulfilled lines are retried, so a delivery that
// partially failed (a missing role, a transient store error) can be
// completed by the gateway's redelivery instead of being lost.
func (sf *Storefront) resettleBill(ctx context.Context, billID id.BillID, orderID string) error {
	bill, err := sf.store.GetBill(ctx, billID)
	if err != nil {
		return err
	}
	if bill.Status != billing.StatusPaid {
		sf.logger.Info("webhook replay ignored, bill not paid",
			"bill_id", billID.String(),
			"order_id", orderID,
			"status", string(bill.Status),
		)
		return nil
	}

	pending := 0
	for _, pp := range bill.PaidProducts {
		if !pp.Fulfilled() {
			pending++
		}
	}
	if pending == 0 {
		sf.logger.Info("webhook replay ignored, bill already settled",
			"bill_id", billID.String(),
			"order_id", orderID,
		)
		return nil
	}

	sf.logger.Info("retrying unfulfilled bill lines",
		"bill_id", billID.String(),
		"order_id", orderID,
		"unfulfilled", pending,
	)

	return sf.fulfillBill(ctx, bill)
}

// fulfillBill applies entitlements for every unfulfilled line of a paid
// bill and records each success, so a retried delivery applies each line
// at most once. Per-line failures are collected rather than aborting the
// remaining lines.
func (sf *Storefront) fulfillBill(ctx context.Context, bill *billing.Bill) error {
	var errs MultiError
	for _, pp := range bill.PaidProducts {
		if pp.Fulfilled() {
			continue
		}
		if err := sf.fulfillPaidProduct(ctx, pp); err != nil {
			errs.Add(fmt.Errorf("fulfill product %s: %w", pp.ProductID.String(), err))
			continue
		}
		if err := sf.store.MarkPaidProductFulfilled(ctx, pp.ID, time.Now().UTC()); err != nil {
			errs.Add(fmt.Errorf("record fulfillment %s: %w", pp.ProductID.String(), err))
		}
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

func (sf *Storefront) refundBill(ctx context.Context, event *payment.Event) error {
	billID, err := id.ParseBillID(event.BillID())
	if err != nil {
		return ValidationError{Field: "custom_data.bill_id", Message: "missing or malformed"}
	}

	bill, err := sf.store.MarkBillRefunded(ctx, billID, time.Now().UTC())
	if err != nil {
		return err
	}

	sf.plugins.EmitBillRefunded(ctx, bill)

	sf.logger.Info("bill refunded",
		"bill_id", bill.ID.String(),
		"order_id", event.OrderID,
	)

	return nil
}

// fulfillPaidProduct applies one paid product's entitlements to its
// owner: membership tags grant a role window, cash tags credit the
// CREDITS balance.
func (sf *Storefront) fulfillPaidProduct(ctx context.Context, pp *billing.PaidProduct) error {
	tags, err := sf.store.ProductTagNames(ctx, pp.ProductID)
	if err != nil {
		return err
	}

	if _, isMembership := catalog.MembershipDuration(tags); isMembership {
		if _, err := sf.ProcessMembership(ctx, pp.OwnerID, pp.ProductID); err != nil {
			return err
		}
	}

	for _, tag := range tags {
		if tag != catalog.TagCash {
			continue
		}
		product, err := sf.store.GetProduct(ctx, pp.ProductID)
		if err != nil {
			return err
		}
		if product.CreditAmount > 0 {
			if _, err := sf.RecordCashTransaction(ctx, pp.OwnerID, account.CashCredits, product.CreditAmount); err != nil {
				return err
			}
		}
		break
	}

	return nil
}

// ProcessMembership grants or renews the pro role for a purchased
// product. Products without a membership tag are a no-op and return nil.
// The grant window is reset to now + duration (365 days with an annual
// tag, 30 days otherwise); renewals do not stack. The upsert is a single
// atomic store operation keyed by (user, role).
func (sf *Storefront) ProcessMembership(ctx context.Context, userID id.UserID, productID id.ProductID) (*account.UserRole, error) {
	tags, err := sf.store.ProductTagNames(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("process membership: %w", err)
	}

	duration, ok := catalog.MembershipDuration(tags)
	if !ok {
		return nil, nil
	}

	pro, err := sf.store.GetRoleByName(ctx, account.RolePro)
	if err != nil {
		if IsNotFound(err) {
			err = fmt.Errorf("%w: role %q", ErrMissingConfig, account.RolePro)
		}
		return nil, fmt.Errorf("process membership: %w", err)
	}

	now := time.Now().UTC()
	grant, err := sf.store.UpsertUserRole(ctx, &account.UserRole{
		Entity:    types.NewEntity(),
		ID:        id.NewUserRoleID(),
		UserID:    userID,
		RoleID:    pro.ID,
		StartDate: now,
		EndDate:   now.Add(duration),
	})
	if err != nil {
		return nil, fmt.Errorf("process membership: %w", err)
	}

	sf.plugins.EmitMembershipGranted(ctx, grant)

	sf.logger.Info("membership granted",
		"user_id", userID.String(),
		"product_id", productID.String(),
		"end_date", grant.EndDate,
	)

	return grant, nil
}
