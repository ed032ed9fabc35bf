package store

import (
	"context"
	"time"

	"github.com/xraph/storefront/account"
	"github.com/xraph/storefront/billing"
	"github.com/xraph/storefront/cart"
	"github.com/xraph/storefront/catalog"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/metafile"
	"github.com/xraph/storefront/workspace"
)

// Store is the unified storage interface for all Storefront entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Account methods
	CreateUser(ctx context.Context, u *account.User) error
	GetUser(ctx context.Context, userID id.UserID) (*account.User, error)
	GetUserByEmail(ctx context.Context, email string) (*account.User, error)
	CreateRole(ctx context.Context, r *account.Role) error
	GetRoleByName(ctx context.Context, name string) (*account.Role, error)
	ListRoles(ctx context.Context) ([]*account.Role, error)
	UpsertUserRole(ctx context.Context, ur *account.UserRole) (*account.UserRole, error)
	GetUserRole(ctx context.Context, userID id.UserID, roleID id.RoleID) (*account.UserRole, error)
	ListUserRoles(ctx context.Context, userID id.UserID) ([]*account.UserRole, error)
	RecordCashTransaction(ctx context.Context, txn *account.CashTransaction) (*account.UserBalance, error)
	GetUserBalance(ctx context.Context, userID id.UserID, cash account.CashType) (*account.UserBalance, error)
	ListCashTransactions(ctx context.Context, userID id.UserID, opts account.ListOpts) ([]*account.CashTransaction, error)

	// Catalog methods
	CreateProduct(ctx context.Context, p *catalog.Product) error
	GetProduct(ctx context.Context, productID id.ProductID) (*catalog.Product, error)
	GetProducts(ctx context.Context, productIDs []id.ProductID) ([]*catalog.Product, error)
	ListProducts(ctx context.Context, opts catalog.ListOpts) ([]*catalog.Product, error)
	UpdateProduct(ctx context.Context, p *catalog.Product) error
	ArchiveProduct(ctx context.Context, productID id.ProductID) error
	CreateTag(ctx context.Context, t *catalog.Tag) error
	GetTagByName(ctx context.Context, name string) (*catalog.Tag, error)
	ListTags(ctx context.Context) ([]*catalog.Tag, error)
	TagProduct(ctx context.Context, pt *catalog.ProductTag) error
	UntagProduct(ctx context.Context, productID id.ProductID, tagID id.TagID) error
	ProductTagNames(ctx context.Context, productID id.ProductID) ([]string, error)
	UpsertGatewayProduct(ctx context.Context, gp *catalog.GatewayProduct) error
	UpsertGatewayVariant(ctx context.Context, gv *catalog.GatewayVariant) error
	GetGatewayVariant(ctx context.Context, externalID string) (*catalog.GatewayVariant, error)
	ListGatewayVariants(ctx context.Context, opts catalog.ListOpts) ([]*catalog.GatewayVariant, error)

	// Cart methods
	AddCartItem(ctx context.Context, item *cart.Item) error
	GetCartItems(ctx context.Context, itemIDs []id.CartItemID) ([]*cart.Item, error)
	ListCartItems(ctx context.Context, userID id.UserID, opts cart.ListOpts) ([]*cart.Item, int, error)
	RemoveCartItem(ctx context.Context, userID id.UserID, itemID id.CartItemID) error

	// Billing methods
	CreateBill(ctx context.Context, b *billing.Bill, consumedCartItems []id.CartItemID) error
	GetBill(ctx context.Context, billID id.BillID) (*billing.Bill, error)
	ListBills(ctx context.Context, userID id.UserID, opts billing.ListOpts) ([]*billing.Bill, int, error)
	ListPaidProducts(ctx context.Context, billID id.BillID) ([]*billing.PaidProduct, error)
	MarkPaidProductFulfilled(ctx context.Context, lineID id.PaidProductID, fulfilledAt time.Time) error
	MarkBillPaid(ctx context.Context, billID id.BillID, paidAt time.Time, paymentRef string) (*billing.Bill, error)
	MarkBillRefunded(ctx context.Context, billID id.BillID, refundedAt time.Time) (*billing.Bill, error)
	ExpireBills(ctx context.Context, cutoff time.Time) (int, error)

	// Workspace methods
	CreateWorkspace(ctx context.Context, ws *workspace.Workspace, roles []*workspace.Role) error
	GetWorkspace(ctx context.Context, workspaceID id.WorkspaceID) (*workspace.Workspace, error)
	ListWorkspacesByOwner(ctx context.Context, ownerID id.UserID) ([]*workspace.Workspace, error)
	ListWorkspaceRoles(ctx context.Context, workspaceID id.WorkspaceID) ([]*workspace.Role, error)
	CreatePermission(ctx context.Context, p *workspace.Permission) error
	GetPermissionByName(ctx context.Context, name string) (*workspace.Permission, error)
	ListPermissions(ctx context.Context) ([]*workspace.Permission, error)
	CreateRolePermission(ctx context.Context, rp *workspace.RolePermission) error
	ListRolePermissions(ctx context.Context, roleID id.WorkspaceRoleID) ([]*workspace.RolePermission, error)
	CreateWorkspaceUserRole(ctx context.Context, ur *workspace.UserRole) error
	ListWorkspaceUserRoles(ctx context.Context, workspaceID id.WorkspaceID) ([]*workspace.UserRole, error)

	// Metafile methods
	CreateMetaFile(ctx context.Context, f *metafile.File) error
	GetMetaFile(ctx context.Context, fileID id.MetaFileID) (*metafile.File, error)
	ListMetaFiles(ctx context.Context, ownerID id.UserID, opts metafile.ListOpts) ([]*metafile.File, int, error)
	DeleteMetaFile(ctx context.Context, ownerID id.UserID, fileID id.MetaFileID) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
