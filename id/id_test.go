package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/storefront/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"UserID", id.NewUserID, "user_"},
		{"RoleID", id.NewRoleID, "role_"},
		{"UserRoleID", id.NewUserRoleID, "urole_"},
		{"CashTransactionID", id.NewCashTransactionID, "ctxn_"},
		{"ProductID", id.NewProductID, "prod_"},
		{"TagID", id.NewTagID, "tag_"},
		{"CartItemID", id.NewCartItemID, "cart_"},
		{"BillID", id.NewBillID, "bill_"},
		{"PaidProductID", id.NewPaidProductID, "pprod_"},
		{"WorkspaceID", id.NewWorkspaceID, "ws_"},
		{"PermissionID", id.NewPermissionID, "wsperm_"},
		{"MetaFileID", id.NewMetaFileID, "file_"},
		{"GatewayVariantID", id.NewGatewayVariantID, "gwv_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixBill)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixBill {
		t.Errorf("expected prefix %q, got %q", id.PrefixBill, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"UserID", id.NewUserID, id.ParseUserID},
		{"RoleID", id.NewRoleID, id.ParseRoleID},
		{"UserRoleID", id.NewUserRoleID, id.ParseUserRoleID},
		{"CashTransactionID", id.NewCashTransactionID, id.ParseCashTransactionID},
		{"ProductID", id.NewProductID, id.ParseProductID},
		{"TagID", id.NewTagID, id.ParseTagID},
		{"CartItemID", id.NewCartItemID, id.ParseCartItemID},
		{"BillID", id.NewBillID, id.ParseBillID},
		{"WorkspaceID", id.NewWorkspaceID, id.ParseWorkspaceID},
		{"MembershipID", id.NewMembershipID, id.ParseMembershipID},
		{"MetaFileID", id.NewMetaFileID, id.ParseMetaFileID},
		{"GatewayProductID", id.NewGatewayProductID, id.ParseGatewayProductID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		parseFn func(string) (id.ID, error)
	}{
		{"ParseUserID rejects role_", id.NewRoleID().String(), id.ParseUserID},
		{"ParseRoleID rejects urole_", id.NewUserRoleID().String(), id.ParseRoleID},
		{"ParseProductID rejects tag_", id.NewTagID().String(), id.ParseProductID},
		{"ParseCartItemID rejects bill_", id.NewBillID().String(), id.ParseCartItemID},
		{"ParseBillID rejects pprod_", id.NewPaidProductID().String(), id.ParseBillID},
		{"ParseWorkspaceID rejects wsperm_", id.NewPermissionID().String(), id.ParseWorkspaceID},
		{"ParseMetaFileID rejects user_", id.NewUserID().String(), id.ParseMetaFileID},
		{"ParseGatewayProductID rejects gwv_", id.NewGatewayVariantID().String(), id.ParseGatewayProductID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parseFn(tt.input)
			if err == nil {
				t.Errorf("expected error for cross-type parse of %q, got nil", tt.input)
			}
		})
	}
}

func TestParseAny(t *testing.T) {
	ids := []id.ID{
		id.NewUserID(),
		id.NewRoleID(),
		id.NewCashTransactionID(),
		id.NewProductID(),
		id.NewCartItemID(),
		id.NewBillID(),
		id.NewWorkspaceID(),
		id.NewMembershipID(),
		id.NewMetaFileID(),
		id.NewGatewayVariantID(),
	}

	for _, i := range ids {
		t.Run(i.String(), func(t *testing.T) {
			parsed, err := id.ParseAny(i.String())
			if err != nil {
				t.Fatalf("ParseAny(%q) failed: %v", i.String(), err)
			}
			if parsed.String() != i.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), i.String())
			}
		})
	}
}

func TestParseWithPrefix(t *testing.T) {
	i := id.NewBillID()
	parsed, err := id.ParseWithPrefix(i.String(), id.PrefixBill)
	if err != nil {
		t.Fatalf("ParseWithPrefix failed: %v", err)
	}
	if parsed.String() != i.String() {
		t.Errorf("mismatch: %q != %q", parsed.String(), i.String())
	}

	_, err = id.ParseWithPrefix(i.String(), id.PrefixProduct)
	if err == nil {
		t.Error("expected error for wrong prefix")
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := id.Parse("")
	if err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("expected empty string, got %q", i.String())
	}
	if i.Prefix() != "" {
		t.Errorf("expected empty prefix, got %q", i.Prefix())
	}
}

func TestMarshalUnmarshalText(t *testing.T) {
	original := id.NewUserID()
	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var restored id.ID
	if unmarshalErr := restored.UnmarshalText(data); unmarshalErr != nil {
		t.Fatalf("UnmarshalText failed: %v", unmarshalErr)
	}
	if restored.String() != original.String() {
		t.Errorf("mismatch: %q != %q", restored.String(), original.String())
	}

	// Nil round-trip.
	var nilID id.ID
	data, err = nilID.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText(nil) failed: %v", err)
	}
	var restored2 id.ID
	if err := restored2.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText(nil) failed: %v", err)
	}
	if !restored2.IsNil() {
		t.Error("expected nil after round-trip of nil ID")
	}
}

func TestValueScan(t *testing.T) {
	original := id.NewBillID()
	val, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned id.ID
	if scanErr := scanned.Scan(val); scanErr != nil {
		t.Fatalf("Scan failed: %v", scanErr)
	}
	if scanned.String() != original.String() {
		t.Errorf("mismatch: %q != %q", scanned.String(), original.String())
	}

	// Nil round-trip.
	var nilID id.ID
	val, err = nilID.Value()
	if err != nil {
		t.Fatalf("Value(nil) failed: %v", err)
	}
	if val != nil {
		t.Errorf("expected nil value for nil ID, got %v", val)
	}

	var scanned2 id.ID
	if err := scanned2.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if !scanned2.IsNil() {
		t.Error("expected nil after scan of nil")
	}
}

func TestUniqueness(t *testing.T) {
	a := id.NewBillID()
	b := id.NewBillID()
	if a.String() == b.String() {
		t.Errorf("two consecutive NewBillID() calls returned the same ID: %q", a.String())
	}
}
