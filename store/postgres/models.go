package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/storefront/account"
	"github.com/xraph/storefront/billing"
	"github.com/xraph/storefront/cart"
	"github.com/xraph/storefront/catalog"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/metafile"
	"github.com/xraph/storefront/types"
	"github.com/xraph/storefront/workspace"
)

// ==================== Account models ====================

type userModel struct {
	grove.BaseModel `grove:"table:storefront_users"`

	ID        string    `grove:"id,pk"`
	Name      string    `grove:"name"`
	Email     string    `grove:"email"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toUserModel(u *account.User) *userModel {
	return &userModel{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func fromUserModel(m *userModel) (*account.User, error) {
	userID, err := id.ParseUserID(m.ID)
	if err != nil {
		return nil, err
	}
	return &account.User{
		Entity: types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:     userID,
		Name:   m.Name,
		Email:  m.Email,
	}, nil
}

type roleModel struct {
	grove.BaseModel `grove:"table:storefront_roles"`

	ID        string    `grove:"id,pk"`
	Name      string    `grove:"name"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toRoleModel(r *account.Role) *roleModel {
	return &roleModel{
		ID:        r.ID.String(),
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func fromRoleModel(m *roleModel) (*account.Role, error) {
	roleID, err := id.ParseRoleID(m.ID)
	if err != nil {
		return nil, err
	}
	return &account.Role{
		Entity: types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:     roleID,
		Name:   m.Name,
	}, nil
}

type userRoleModel struct {
	grove.BaseModel `grove:"table:storefront_user_roles"`

	ID        string    `grove:"id,pk"`
	UserID    string    `grove:"user_id"`
	RoleID    string    `grove:"role_id"`
	StartDate time.Time `grove:"start_date"`
	EndDate   time.Time `grove:"end_date"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toUserRoleModel(ur *account.UserRole) *userRoleModel {
	return &userRoleModel{
		ID:        ur.ID.String(),
		UserID:    ur.UserID.String(),
		RoleID:    ur.RoleID.String(),
		StartDate: ur.StartDate,
		EndDate:   ur.EndDate,
		CreatedAt: ur.CreatedAt,
		UpdatedAt: ur.UpdatedAt,
	}
}

func fromUserRoleModel(m *userRoleModel) (*account.UserRole, error) {
	grantID, err := id.ParseUserRoleID(m.ID)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(m.UserID)
	if err != nil {
		return nil, err
	}
	roleID, err := id.ParseRoleID(m.RoleID)
	if err != nil {
		return nil, err
	}
	return &account.UserRole{
		Entity:    types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:        grantID,
		UserID:    userID,
		RoleID:    roleID,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
	}, nil
}

type cashTransactionModel struct {
	grove.BaseModel `grove:"table:storefront_cash_transactions"`

	ID        string    `grove:"id,pk"`
	UserID    string    `grove:"user_id"`
	Type      string    `grove:"type"`
	CashType  string    `grove:"cash_type"`
	Amount    int64     `grove:"amount"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toCashTransactionModel(t *account.CashTransaction) *cashTransactionModel {
	return &cashTransactionModel{
		ID:        t.ID.String(),
		UserID:    t.UserID.String(),
		Type:      string(t.Type),
		CashType:  string(t.Cash),
		Amount:    t.Amount,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func fromCashTransactionModel(m *cashTransactionModel) (*account.CashTransaction, error) {
	txnID, err := id.ParseCashTransactionID(m.ID)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(m.UserID)
	if err != nil {
		return nil, err
	}
	return &account.CashTransaction{
		Entity: types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:     txnID,
		UserID: userID,
		Type:   account.TransactionType(m.Type),
		Cash:   account.CashType(m.CashType),
		Amount: m.Amount,
	}, nil
}

// userBalanceModel keys rows by "user_id:cash_type" so the aggregate has
// a single-column primary key for upserts.
type userBalanceModel struct {
	grove.BaseModel `grove:"table:storefront_user_balances"`

	BalanceKey string    `grove:"balance_key,pk"`
	UserID     string    `grove:"user_id"`
	CashType   string    `grove:"cash_type"`
	Balance    int64     `grove:"balance"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func balanceKey(userID, cashType string) string {
	return userID + ":" + cashType
}

func fromUserBalanceModel(m *userBalanceModel) (*account.UserBalance, error) {
	userID, err := id.ParseUserID(m.UserID)
	if err != nil {
		return nil, err
	}
	return &account.UserBalance{
		Entity:  types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		UserID:  userID,
		Cash:    account.CashType(m.CashType),
		Balance: m.Balance,
	}, nil
}

// ==================== Catalog models ====================

type productModel struct {
	grove.BaseModel `grove:"table:storefront_products"`

	ID               string    `grove:"id,pk"`
	Name             string    `grove:"name"`
	Description      string    `grove:"description"`
	PriceAmountCents int64     `grove:"price_amount_cents"`
	PriceCurrency    string    `grove:"price_currency"`
	Active           bool      `grove:"active"`
	CreditAmount     int64     `grove:"credit_amount"`
	CreatedAt        time.Time `grove:"created_at"`
	UpdatedAt        time.Time `grove:"updated_at"`
}

func toProductModel(p *catalog.Product) *productModel {
	return &productModel{
		ID:               p.ID.String(),
		Name:             p.Name,
		Description:      p.Description,
		PriceAmountCents: p.Price.Amount,
		PriceCurrency:    p.Price.Currency,
		Active:           p.Active,
		CreditAmount:     p.CreditAmount,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func fromProductModel(m *productModel) (*catalog.Product, error) {
	productID, err := id.ParseProductID(m.ID)
	if err != nil {
		return nil, err
	}
	return &catalog.Product{
		Entity:       types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:           productID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        types.Money{Amount: m.PriceAmountCents, Currency: m.PriceCurrency},
		Active:       m.Active,
		CreditAmount: m.CreditAmount,
	}, nil
}

type tagModel struct {
	grove.BaseModel `grove:"table:storefront_tags"`

	ID        string    `grove:"id,pk"`
	Name      string    `grove:"name"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toTagModel(t *catalog.Tag) *tagModel {
	return &tagModel{
		ID:        t.ID.String(),
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func fromTagModel(m *tagModel) (*catalog.Tag, error) {
	tagID, err := id.ParseTagID(m.ID)
	if err != nil {
		return nil, err
	}
	return &catalog.Tag{
		Entity: types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:     tagID,
		Name:   m.Name,
	}, nil
}

type productTagModel struct {
	grove.BaseModel `grove:"table:storefront_product_tags"`

	ID        string    `grove:"id,pk"`
	ProductID string    `grove:"product_id"`
	TagID     string    `grove:"tag_id"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toProductTagModel(pt *catalog.ProductTag) *productTagModel {
	return &productTagModel{
		ID:        pt.ID.String(),
		ProductID: pt.ProductID.String(),
		TagID:     pt.TagID.String(),
		CreatedAt: pt.CreatedAt,
		UpdatedAt: pt.UpdatedAt,
	}
}

type gatewayProductModel struct {
	grove.BaseModel `grove:"table:storefront_gateway_products"`

	ID         string    `grove:"id,pk"`
	ExternalID string    `grove:"external_id"`
	Name       string    `grove:"name"`
	Slug       string    `grove:"slug"`
	Status     string    `grove:"status"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toGatewayProductModel(gp *catalog.GatewayProduct) *gatewayProductModel {
	return &gatewayProductModel{
		ID:         gp.ID.String(),
		ExternalID: gp.ExternalID,
		Name:       gp.Name,
		Slug:       gp.Slug,
		Status:     gp.Status,
		CreatedAt:  gp.CreatedAt,
		UpdatedAt:  gp.UpdatedAt,
	}
}

type gatewayVariantModel struct {
	grove.BaseModel `grove:"table:storefront_gateway_variants"`

	ID                string    `grove:"id,pk"`
	ExternalID        string    `grove:"external_id"`
	ExternalProductID string    `grove:"external_product_id"`
	Name              string    `grove:"name"`
	PriceAmountCents  int64     `grove:"price_amount_cents"`
	PriceCurrency     string    `grove:"price_currency"`
	Interval          string    `grove:"interval"`
	CreatedAt         time.Time `grove:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"`
}

func toGatewayVariantModel(gv *catalog.GatewayVariant) *gatewayVariantModel {
	return &gatewayVariantModel{
		ID:                gv.ID.String(),
		ExternalID:        gv.ExternalID,
		ExternalProductID: gv.ExternalProductID,
		Name:              gv.Name,
		PriceAmountCents:  gv.Price.Amount,
		PriceCurrency:     gv.Price.Currency,
		Interval:          gv.Interval,
		CreatedAt:         gv.CreatedAt,
		UpdatedAt:         gv.UpdatedAt,
	}
}

func fromGatewayVariantModel(m *gatewayVariantModel) (*catalog.GatewayVariant, error) {
	variantID, err := id.ParseGatewayVariantID(m.ID)
	if err != nil {
		return nil, err
	}
	return &catalog.GatewayVariant{
		Entity:            types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:                variantID,
		ExternalID:        m.ExternalID,
		ExternalProductID: m.ExternalProductID,
		Name:              m.Name,
		Price:             types.Money{Amount: m.PriceAmountCents, Currency: m.PriceCurrency},
		Interval:          m.Interval,
	}, nil
}

// ==================== Cart models ====================

type cartItemModel struct {
	grove.BaseModel `grove:"table:storefront_cart_items"`

	ID          string    `grove:"id,pk"`
	UserID      string    `grove:"user_id"`
	ProductID   string    `grove:"product_id"`
	WorkspaceID string    `grove:"workspace_id"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toCartItemModel(item *cart.Item) *cartItemModel {
	workspaceID := ""
	if !item.WorkspaceID.IsNil() {
		workspaceID = item.WorkspaceID.String()
	}
	return &cartItemModel{
		ID:          item.ID.String(),
		UserID:      item.UserID.String(),
		ProductID:   item.ProductID.String(),
		WorkspaceID: workspaceID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func fromCartItemModel(m *cartItemModel) (*cart.Item, error) {
	itemID, err := id.ParseCartItemID(m.ID)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(m.UserID)
	if err != nil {
		return nil, err
	}
	productID, err := id.ParseProductID(m.ProductID)
	if err != nil {
		return nil, err
	}
	var workspaceID id.WorkspaceID
	if m.WorkspaceID != "" {
		workspaceID, err = id.ParseWorkspaceID(m.WorkspaceID)
		if err != nil {
			return nil, err
		}
	}
	return &cart.Item{
		Entity:      types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:          itemID,
		UserID:      userID,
		ProductID:   productID,
		WorkspaceID: workspaceID,
	}, nil
}

// ==================== Billing models ====================

type billModel struct {
	grove.BaseModel `grove:"table:storefront_bills"`

	ID               string     `grove:"id,pk"`
	UserID           string     `grove:"user_id"`
	TotalAmountCents int64      `grove:"total_amount_cents"`
	TotalCurrency    string     `grove:"total_currency"`
	Status           string     `grove:"status"`
	ExpiresAt        time.Time  `grove:"expires_at"`
	PaidAt           *time.Time `grove:"paid_at"`
	RefundedAt       *time.Time `grove:"refunded_at"`
	PaymentRef       string     `grove:"payment_ref"`
	CreatedAt        time.Time  `grove:"created_at"`
	UpdatedAt        time.Time  `grove:"updated_at"`
}

func toBillModel(b *billing.Bill) *billModel {
	return &billModel{
		ID:               b.ID.String(),
		UserID:           b.UserID.String(),
		TotalAmountCents: b.Total.Amount,
		TotalCurrency:    b.Total.Currency,
		Status:           string(b.Status),
		ExpiresAt:        b.ExpiresAt,
		PaidAt:           b.PaidAt,
		RefundedAt:       b.RefundedAt,
		PaymentRef:       b.PaymentRef,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func fromBillModel(m *billModel) (*billing.Bill, error) {
	billID, err := id.ParseBillID(m.ID)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(m.UserID)
	if err != nil {
		return nil, err
	}
	return &billing.Bill{
		Entity:     types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:         billID,
		UserID:     userID,
		Total:      types.Money{Amount: m.TotalAmountCents, Currency: m.TotalCurrency},
		Status:     billing.Status(m.Status),
		ExpiresAt:  m.ExpiresAt,
		PaidAt:     m.PaidAt,
		RefundedAt: m.RefundedAt,
		PaymentRef: m.PaymentRef,
	}, nil
}

type paidProductModel struct {
	grove.BaseModel `grove:"table:storefront_paid_products"`

	ID          string     `grove:"id,pk"`
	BillID      string     `grove:"bill_id"`
	ProductID   string     `grove:"product_id"`
	OwnerID     string     `grove:"owner_id"`
	WorkspaceID string     `grove:"workspace_id"`
	FulfilledAt *time.Time `grove:"fulfilled_at"`
	CreatedAt   time.Time  `grove:"created_at"`
	UpdatedAt   time.Time  `grove:"updated_at"`
}

func toPaidProductModel(pp *billing.PaidProduct) *paidProductModel {
	workspaceID := ""
	if !pp.WorkspaceID.IsNil() {
		workspaceID = pp.WorkspaceID.String()
	}
	return &paidProductModel{
		ID:          pp.ID.String(),
		BillID:      pp.BillID.String(),
		ProductID:   pp.ProductID.String(),
		OwnerID:     pp.OwnerID.String(),
		WorkspaceID: workspaceID,
		FulfilledAt: pp.FulfilledAt,
		CreatedAt:   pp.CreatedAt,
		UpdatedAt:   pp.UpdatedAt,
	}
}

func fromPaidProductModel(m *paidProductModel) (*billing.PaidProduct, error) {
	lineID, err := id.ParsePaidProductID(m.ID)
	if err != nil {
		return nil, err
	}
	billID, err := id.ParseBillID(m.BillID)
	if err != nil {
		return nil, err
	}
	productID, err := id.ParseProductID(m.ProductID)
	if err != nil {
		return nil, err
	}
	ownerID, err := id.ParseUserID(m.OwnerID)
	if err != nil {
		return nil, err
	}
	var workspaceID id.WorkspaceID
	if m.WorkspaceID != "" {
		workspaceID, err = id.ParseWorkspaceID(m.WorkspaceID)
		if err != nil {
			return nil, err
		}
	}
	return &billing.PaidProduct{
		Entity:      types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:          lineID,
		BillID:      billID,
		ProductID:   productID,
		OwnerID:     ownerID,
		WorkspaceID: workspaceID,
		FulfilledAt: m.FulfilledAt,
	}, nil
}

// ==================== Workspace models ====================

type workspaceModel struct {
	grove.BaseModel `grove:"table:storefront_workspaces"`

	ID        string    `grove:"id,pk"`
	Name      string    `grove:"name"`
	Slug      string    `grove:"slug"`
	OwnerID   string    `grove:"owner_id"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toWorkspaceModel(ws *workspace.Workspace) *workspaceModel {
	return &workspaceModel{
		ID:        ws.ID.String(),
		Name:      ws.Name,
		Slug:      ws.Slug,
		OwnerID:   ws.OwnerID.String(),
		CreatedAt: ws.CreatedAt,
		UpdatedAt: ws.UpdatedAt,
	}
}

func fromWorkspaceModel(m *workspaceModel) (*workspace.Workspace, error) {
	workspaceID, err := id.ParseWorkspaceID(m.ID)
	if err != nil {
		return nil, err
	}
	ownerID, err := id.ParseUserID(m.OwnerID)
	if err != nil {
		return nil, err
	}
	return &workspace.Workspace{
		Entity:  types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:      workspaceID,
		Name:    m.Name,
		Slug:    m.Slug,
		OwnerID: ownerID,
	}, nil
}

type workspaceRoleModel struct {
	grove.BaseModel `grove:"table:storefront_workspace_roles"`

	ID          string    `grove:"id,pk"`
	WorkspaceID string    `grove:"workspace_id"`
	Name        string    `grove:"name"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toWorkspaceRoleModel(r *workspace.Role) *workspaceRoleModel {
	return &workspaceRoleModel{
		ID:          r.ID.String(),
		WorkspaceID: r.WorkspaceID.String(),
		Name:        r.Name,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromWorkspaceRoleModel(m *workspaceRoleModel) (*workspace.Role, error) {
	roleID, err := id.ParseWorkspaceRoleID(m.ID)
	if err != nil {
		return nil, err
	}
	workspaceID, err := id.ParseWorkspaceID(m.WorkspaceID)
	if err != nil {
		return nil, err
	}
	return &workspace.Role{
		Entity:      types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:          roleID,
		WorkspaceID: workspaceID,
		Name:        m.Name,
	}, nil
}

type permissionModel struct {
	grove.BaseModel `grove:"table:storefront_workspace_permissions"`

	ID        string    `grove:"id,pk"`
	Name      string    `grove:"name"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toPermissionModel(p *workspace.Permission) *permissionModel {
	return &permissionModel{
		ID:        p.ID.String(),
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromPermissionModel(m *permissionModel) (*workspace.Permission, error) {
	permID, err := id.ParsePermissionID(m.ID)
	if err != nil {
		return nil, err
	}
	return &workspace.Permission{
		Entity: types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:     permID,
		Name:   m.Name,
	}, nil
}

type rolePermissionModel struct {
	grove.BaseModel `grove:"table:storefront_workspace_role_permissions"`

	ID           string    `grove:"id,pk"`
	RoleID       string    `grove:"role_id"`
	PermissionID string    `grove:"permission_id"`
	CreatedAt    time.Time `grove:"created_at"`
	UpdatedAt    time.Time `grove:"updated_at"`
}

func toRolePermissionModel(rp *workspace.RolePermission) *rolePermissionModel {
	return &rolePermissionModel{
		ID:           rp.ID.String(),
		RoleID:       rp.RoleID.String(),
		PermissionID: rp.PermissionID.String(),
		CreatedAt:    rp.CreatedAt,
		UpdatedAt:    rp.UpdatedAt,
	}
}

func fromRolePermissionModel(m *rolePermissionModel) (*workspace.RolePermission, error) {
	rpID, err := id.ParseRolePermissionID(m.ID)
	if err != nil {
		return nil, err
	}
	roleID, err := id.ParseWorkspaceRoleID(m.RoleID)
	if err != nil {
		return nil, err
	}
	permID, err := id.ParsePermissionID(m.PermissionID)
	if err != nil {
		return nil, err
	}
	return &workspace.RolePermission{
		Entity:       types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:           rpID,
		RoleID:       roleID,
		PermissionID: permID,
	}, nil
}

type workspaceUserRoleModel struct {
	grove.BaseModel `grove:"table:storefront_workspace_user_roles"`

	ID          string    `grove:"id,pk"`
	WorkspaceID string    `grove:"workspace_id"`
	UserID      string    `grove:"user_id"`
	RoleID      string    `grove:"role_id"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toWorkspaceUserRoleModel(ur *workspace.UserRole) *workspaceUserRoleModel {
	return &workspaceUserRoleModel{
		ID:          ur.ID.String(),
		WorkspaceID: ur.WorkspaceID.String(),
		UserID:      ur.UserID.String(),
		RoleID:      ur.RoleID.String(),
		CreatedAt:   ur.CreatedAt,
		UpdatedAt:   ur.UpdatedAt,
	}
}

func fromWorkspaceUserRoleModel(m *workspaceUserRoleModel) (*workspace.UserRole, error) {
	bindingID, err := id.ParseMembershipID(m.ID)
	if err != nil {
		return nil, err
	}
	workspaceID, err := id.ParseWorkspaceID(m.WorkspaceID)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(m.UserID)
	if err != nil {
		return nil, err
	}
	roleID, err := id.ParseWorkspaceRoleID(m.RoleID)
	if err != nil {
		return nil, err
	}
	return &workspace.UserRole{
		Entity:      types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:          bindingID,
		WorkspaceID: workspaceID,
		UserID:      userID,
		RoleID:      roleID,
	}, nil
}

// ==================== Metafile models ====================

type metaFileModel struct {
	grove.BaseModel `grove:"table:storefront_meta_files"`

	ID          string    `grove:"id,pk"`
	OwnerID     string    `grove:"owner_id"`
	Name        string    `grove:"name"`
	Key         string    `grove:"key"`
	URL         string    `grove:"url"`
	Size        int64     `grove:"size"`
	ContentType string    `grove:"content_type"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toMetaFileModel(f *metafile.File) *metaFileModel {
	return &metaFileModel{
		ID:          f.ID.String(),
		OwnerID:     f.OwnerID.String(),
		Name:        f.Name,
		Key:         f.Key,
		URL:         f.URL,
		Size:        f.Size,
		ContentType: f.ContentType,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func fromMetaFileModel(m *metaFileModel) (*metafile.File, error) {
	fileID, err := id.ParseMetaFileID(m.ID)
	if err != nil {
		return nil, err
	}
	ownerID, err := id.ParseUserID(m.OwnerID)
	if err != nil {
		return nil, err
	}
	return &metafile.File{
		Entity:      types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:          fileID,
		OwnerID:     ownerID,
		Name:        m.Name,
		Key:         m.Key,
		URL:         m.URL,
		Size:        m.Size,
		ContentType: m.ContentType,
	}, nil
}
