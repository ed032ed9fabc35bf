package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	storefront "github.com/xraph/storefront"
	"github.com/xraph/storefront/account"
	"github.com/xraph/storefront/billing"
	"github.com/xraph/storefront/cart"
	"github.com/xraph/storefront/catalog"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/metafile"
	storefrontstore "github.com/xraph/storefront/store"
	"github.com/xraph/storefront/workspace"
)

// Collection name constants.
const (
	colUsers              = "storefront_users"
	colRoles              = "storefront_roles"
	colUserRoles          = "storefront_user_roles"
	colCashTransactions   = "storefront_cash_transactions"
	colUserBalances       = "storefront_user_balances"
	colProducts           = "storefront_products"
	colTags               = "storefront_tags"
	colProductTags        = "storefront_product_tags"
	colGatewayProducts    = "storefront_gateway_products"
	colGatewayVariants    = "storefront_gateway_variants"
	colCartItems          = "storefront_cart_items"
	colBills              = "storefront_bills"
	colPaidProducts       = "storefront_paid_products"
	colWorkspaces         = "storefront_workspaces"
	colWorkspaceRoles     = "storefront_workspace_roles"
	colPermissions        = "storefront_workspace_permissions"
	colRolePermissions    = "storefront_workspace_role_permissions"
	colWorkspaceUserRoles = "storefront_workspace_user_roles"
	colMetaFiles          = "storefront_meta_files"
)

// compile-time interface check
var _ storefrontstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM. Multi-document
// writes are issued sequentially; single-document upserts carry the
// invariants that matter (role grants, balances, gateway records).
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all storefront collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("storefront/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Account Store ====================

func (s *Store) CreateUser(ctx context.Context, u *account.User) error {
	var existing userModel
	err := s.mdb.NewFind(&existing).
		Filter(bson.M{"email": u.Email}).
		Scan(ctx)
	if err == nil {
		return storefront.ErrUserExists
	}
	if !isNoDocuments(err) {
		return fmt.Errorf("storefront/mongo: create user: %w", err)
	}

	m := toUserModel(u)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storefront.ErrUserExists
		}
		return fmt.Errorf("storefront/mongo: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID id.UserID) (*account.User, error) {
	var m userModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": userID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrUserNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get user: %w", err)
	}
	return fromUserModel(&m)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*account.User, error) {
	var m userModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"email": email}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrUserNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get user by email: %w", err)
	}
	return fromUserModel(&m)
}

func (s *Store) CreateRole(ctx context.Context, r *account.Role) error {
	m := toRoleModel(r)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("storefront/mongo: create role: %w", err)
	}
	return nil
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (*account.Role, error) {
	var m roleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrRoleNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get role by name: %w", err)
	}
	return fromRoleModel(&m)
}

func (s *Store) ListRoles(ctx context.Context) ([]*account.Role, error) {
	var models []roleModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list roles: %w", err)
	}

	result := make([]*account.Role, len(models))
	for i := range models {
		r, err := fromRoleModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

// UpsertUserRole replaces the validity window of an existing (user, role)
// grant or inserts a fresh one. The immutable fields ride on $setOnInsert
// so a renewal never rewrites the grant's identity.
func (s *Store) UpsertUserRole(ctx context.Context, ur *account.UserRole) (*account.UserRole, error) {
	t := now()
	_, err := s.mdb.NewUpdate((*userRoleModel)(nil)).
		Filter(bson.M{"user_id": ur.UserID.String(), "role_id": ur.RoleID.String()}).
		SetUpdate(bson.M{
			"$set": bson.M{
				"start_date": ur.StartDate,
				"end_date":   ur.EndDate,
				"updated_at": t,
			},
			"$setOnInsert": bson.M{
				"_id":        ur.ID.String(),
				"created_at": t,
			},
		}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: upsert user role: %w", err)
	}
	return s.GetUserRole(ctx, ur.UserID, ur.RoleID)
}

func (s *Store) GetUserRole(ctx context.Context, userID id.UserID, roleID id.RoleID) (*account.UserRole, error) {
	var m userRoleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"user_id": userID.String(), "role_id": roleID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrRoleNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get user role: %w", err)
	}
	return fromUserRoleModel(&m)
}

func (s *Store) ListUserRoles(ctx context.Context, userID id.UserID) ([]*account.UserRole, error) {
	var models []userRoleModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"user_id": userID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list user roles: %w", err)
	}

	result := make([]*account.UserRole, len(models))
	for i := range models {
		ur, err := fromUserRoleModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = ur
	}
	return result, nil
}

// RecordCashTransaction appends the ledger entry and applies a $inc
// upsert to the balance document, which is atomic per document.
func (s *Store) RecordCashTransaction(ctx context.Context, txn *account.CashTransaction) (*account.UserBalance, error) {
	if _, err := s.GetUser(ctx, txn.UserID); err != nil {
		return nil, err
	}

	t := now()
	m := toCashTransactionModel(txn)
	m.CreatedAt = t
	m.UpdatedAt = t
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", storefront.ErrTransactionFailed, err)
	}

	key := balanceKey(txn.UserID.String(), string(txn.Cash))
	_, err := s.mdb.NewUpdate((*userBalanceModel)(nil)).
		Filter(bson.M{"_id": key}).
		SetUpdate(bson.M{
			"$inc": bson.M{"balance": txn.Amount},
			"$set": bson.M{"updated_at": t},
			"$setOnInsert": bson.M{
				"user_id":    txn.UserID.String(),
				"cash_type":  string(txn.Cash),
				"created_at": t,
			},
		}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storefront.ErrTransactionFailed, err)
	}

	return s.GetUserBalance(ctx, txn.UserID, txn.Cash)
}

func (s *Store) GetUserBalance(ctx context.Context, userID id.UserID, cash account.CashType) (*account.UserBalance, error) {
	var m userBalanceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": balanceKey(userID.String(), string(cash))}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrBalanceNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get user balance: %w", err)
	}
	return fromUserBalanceModel(&m)
}

func (s *Store) ListCashTransactions(ctx context.Context, userID id.UserID, opts account.ListOpts) ([]*account.CashTransaction, error) {
	var models []cashTransactionModel

	filter := bson.M{"user_id": userID.String()}
	if opts.Cash != "" {
		filter["cash_type"] = string(opts.Cash)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("storefront/mongo: list cash transactions: %w", err)
	}

	result := make([]*account.CashTransaction, len(models))
	for i := range models {
		txn, err := fromCashTransactionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = txn
	}
	return result, nil
}

// ==================== Catalog Store ====================

func (s *Store) CreateProduct(ctx context.Context, p *catalog.Product) error {
	m := toProductModel(p)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("storefront/mongo: create product: %w", err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, productID id.ProductID) (*catalog.Product, error) {
	var m productModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": productID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrProductNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get product: %w", err)
	}
	return fromProductModel(&m)
}

// GetProducts returns one product per requested ID, in request order.
func (s *Store) GetProducts(ctx context.Context, productIDs []id.ProductID) ([]*catalog.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(productIDs))
	for i, pid := range productIDs {
		ids[i] = pid.String()
	}

	var models []productModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"_id": bson.M{"$in": ids}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: get products: %w", err)
	}

	byID := make(map[string]*catalog.Product, len(models))
	for i := range models {
		p, err := fromProductModel(&models[i])
		if err != nil {
			return nil, err
		}
		byID[p.ID.String()] = p
	}

	result := make([]*catalog.Product, len(productIDs))
	for i, pid := range productIDs {
		p, ok := byID[pid.String()]
		if !ok {
			return nil, storefront.ErrProductNotFound
		}
		result[i] = p
	}
	return result, nil
}

func (s *Store) ListProducts(ctx context.Context, opts catalog.ListOpts) ([]*catalog.Product, error) {
	var models []productModel

	filter := bson.M{}
	if opts.ActiveOnly {
		filter["active"] = true
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("storefront/mongo: list products: %w", err)
	}

	result := make([]*catalog.Product, len(models))
	for i := range models {
		p, err := fromProductModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	m := toProductModel(p)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: update product: %w", err)
	}
	if res.MatchedCount() == 0 {
		return storefront.ErrProductNotFound
	}
	return nil
}

func (s *Store) ArchiveProduct(ctx context.Context, productID id.ProductID) error {
	t := now()
	res, err := s.mdb.NewUpdate((*productModel)(nil)).
		Filter(bson.M{"_id": productID.String()}).
		Set("active", false).
		Set("updated_at", t).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: archive product: %w", err)
	}
	if res.MatchedCount() == 0 {
		return storefront.ErrProductNotFound
	}
	return nil
}

func (s *Store) CreateTag(ctx context.Context, t *catalog.Tag) error {
	if _, err := s.GetTagByName(ctx, t.Name); err == nil {
		return storefront.ErrDuplicateTag
	} else if !errors.Is(err, storefront.ErrTagNotFound) {
		return err
	}

	m := toTagModel(t)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storefront.ErrDuplicateTag
		}
		return fmt.Errorf("storefront/mongo: create tag: %w", err)
	}
	return nil
}

func (s *Store) GetTagByName(ctx context.Context, name string) (*catalog.Tag, error) {
	var m tagModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrTagNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get tag by name: %w", err)
	}
	return fromTagModel(&m)
}

func (s *Store) ListTags(ctx context.Context) ([]*catalog.Tag, error) {
	var models []tagModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "name", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list tags: %w", err)
	}

	result := make([]*catalog.Tag, len(models))
	for i := range models {
		t, err := fromTagModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}

func (s *Store) TagProduct(ctx context.Context, pt *catalog.ProductTag) error {
	m := toProductTagModel(pt)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		// Already tagged, nothing to do
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("storefront/mongo: tag product: %w", err)
	}
	return nil
}

func (s *Store) UntagProduct(ctx context.Context, productID id.ProductID, tagID id.TagID) error {
	res, err := s.mdb.NewDelete((*productTagModel)(nil)).
		Filter(bson.M{"product_id": productID.String(), "tag_id": tagID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: untag product: %w", err)
	}
	if res.DeletedCount() == 0 {
		return storefront.ErrProductNotTagged
	}
	return nil
}

func (s *Store) ProductTagNames(ctx context.Context, productID id.ProductID) ([]string, error) {
	var links []productTagModel
	err := s.mdb.NewFind(&links).
		Filter(bson.M{"product_id": productID.String()}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: product tag names: %w", err)
	}
	if len(links) == 0 {
		return nil, nil
	}

	tagIDs := make([]string, len(links))
	for i, link := range links {
		tagIDs[i] = link.TagID
	}

	var tags []tagModel
	err = s.mdb.NewFind(&tags).
		Filter(bson.M{"_id": bson.M{"$in": tagIDs}}).
		Sort(bson.D{{Key: "name", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: product tag names: %w", err)
	}

	names := make([]string, len(tags))
	for i := range tags {
		names[i] = tags[i].Name
	}
	return names, nil
}

func (s *Store) UpsertGatewayProduct(ctx context.Context, gp *catalog.GatewayProduct) error {
	t := now()
	_, err := s.mdb.NewUpdate((*gatewayProductModel)(nil)).
		Filter(bson.M{"external_id": gp.ExternalID}).
		SetUpdate(bson.M{
			"$set": bson.M{
				"name":       gp.Name,
				"slug":       gp.Slug,
				"status":     gp.Status,
				"updated_at": t,
			},
			"$setOnInsert": bson.M{
				"_id":        gp.ID.String(),
				"created_at": t,
			},
		}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: upsert gateway product: %w", err)
	}
	return nil
}

func (s *Store) UpsertGatewayVariant(ctx context.Context, gv *catalog.GatewayVariant) error {
	t := now()
	_, err := s.mdb.NewUpdate((*gatewayVariantModel)(nil)).
		Filter(bson.M{"external_id": gv.ExternalID}).
		SetUpdate(bson.M{
			"$set": bson.M{
				"external_product_id": gv.ExternalProductID,
				"name":                gv.Name,
				"price_amount_cents":  gv.Price.Amount,
				"price_currency":      gv.Price.Currency,
				"interval":            gv.Interval,
				"updated_at":          t,
			},
			"$setOnInsert": bson.M{
				"_id":        gv.ID.String(),
				"created_at": t,
			},
		}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: upsert gateway variant: %w", err)
	}
	return nil
}

func (s *Store) GetGatewayVariant(ctx context.Context, externalID string) (*catalog.GatewayVariant, error) {
	var m gatewayVariantModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"external_id": externalID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrVariantNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get gateway variant: %w", err)
	}
	return fromGatewayVariantModel(&m)
}

func (s *Store) ListGatewayVariants(ctx context.Context, opts catalog.ListOpts) ([]*catalog.GatewayVariant, error) {
	var models []gatewayVariantModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("storefront/mongo: list gateway variants: %w", err)
	}

	result := make([]*catalog.GatewayVariant, len(models))
	for i := range models {
		gv, err := fromGatewayVariantModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = gv
	}
	return result, nil
}

// ==================== Cart Store ====================

func (s *Store) AddCartItem(ctx context.Context, item *cart.Item) error {
	m := toCartItemModel(item)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("storefront/mongo: add cart item: %w", err)
	}
	return nil
}

func (s *Store) GetCartItems(ctx context.Context, itemIDs []id.CartItemID) ([]*cart.Item, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(itemIDs))
	for i, itemID := range itemIDs {
		ids[i] = itemID.String()
	}

	var models []cartItemModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"_id": bson.M{"$in": ids}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: get cart items: %w", err)
	}

	byID := make(map[string]*cart.Item, len(models))
	for i := range models {
		item, err := fromCartItemModel(&models[i])
		if err != nil {
			return nil, err
		}
		byID[item.ID.String()] = item
	}

	result := make([]*cart.Item, len(itemIDs))
	for i, itemID := range itemIDs {
		item, ok := byID[itemID.String()]
		if !ok {
			return nil, storefront.ErrCartItemNotFound
		}
		result[i] = item
	}
	return result, nil
}

func (s *Store) ListCartItems(ctx context.Context, userID id.UserID, opts cart.ListOpts) ([]*cart.Item, int, error) {
	filter := bson.M{"user_id": userID.String()}

	total, err := s.mdb.Collection(colCartItems).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("storefront/mongo: count cart items: %w", err)
	}

	var models []cartItemModel
	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, 0, fmt.Errorf("storefront/mongo: list cart items: %w", err)
	}

	result := make([]*cart.Item, len(models))
	for i := range models {
		item, err := fromCartItemModel(&models[i])
		if err != nil {
			return nil, 0, err
		}
		result[i] = item
	}
	return result, int(total), nil
}

func (s *Store) RemoveCartItem(ctx context.Context, userID id.UserID, itemID id.CartItemID) error {
	res, err := s.mdb.NewDelete((*cartItemModel)(nil)).
		Filter(bson.M{"_id": itemID.String(), "user_id": userID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: remove cart item: %w", err)
	}
	if res.DeletedCount() == 0 {
		return storefront.ErrCartItemNotFound
	}
	return nil
}

// ==================== Billing Store ====================

// CreateBill verifies the cart items still exist, writes the bill and its
// lines, then deletes the consumed items. Multi-document writes are not
// transactional here, so a short deletion count (a cart mutated
// mid-checkout) rolls the bill and its lines back by hand before the
// failure is reported; no phantom bill survives the error.
func (s *Store) CreateBill(ctx context.Context, b *billing.Bill, consumedCartItems []id.CartItemID) error {
	if len(b.PaidProducts) == 0 || len(consumedCartItems) == 0 {
		return storefront.ErrEmptyCart
	}

	if _, err := s.GetCartItems(ctx, consumedCartItems); err != nil {
		return err
	}

	m := toBillModel(b)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("%w: %w", storefront.ErrTransactionFailed, err)
	}

	for _, pp := range b.PaidProducts {
		lm := toPaidProductModel(pp)
		if _, err := s.mdb.NewInsert(lm).Exec(ctx); err != nil {
			s.unwindBill(ctx, b.ID)
			return fmt.Errorf("%w: %w", storefront.ErrTransactionFailed, err)
		}
	}

	ids := make([]string, len(consumedCartItems))
	for i, itemID := range consumedCartItems {
		ids[i] = itemID.String()
	}
	res, err := s.mdb.NewDelete((*cartItemModel)(nil)).
		Filter(bson.M{"_id": bson.M{"$in": ids}}).
		Exec(ctx)
	if err != nil {
		s.unwindBill(ctx, b.ID)
		return fmt.Errorf("%w: %w", storefront.ErrTransactionFailed, err)
	}
	if int(res.DeletedCount()) != len(consumedCartItems) {
		s.unwindBill(ctx, b.ID)
		return fmt.Errorf("%w: cart changed during checkout", storefront.ErrTransactionFailed)
	}
	return nil
}

// unwindBill removes a bill and its lines after a torn checkout. Errors
// are swallowed; the caller is already reporting the original failure.
func (s *Store) unwindBill(ctx context.Context, billID id.BillID) {
	_, _ = s.mdb.NewDelete((*paidProductModel)(nil)).
		Filter(bson.M{"bill_id": billID.String()}).
		Exec(ctx)
	_, _ = s.mdb.NewDelete((*billModel)(nil)).
		Filter(bson.M{"_id": billID.String()}).
		Exec(ctx)
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*billing.Bill, error) {
	var m billModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": billID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrBillNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get bill: %w", err)
	}

	b, err := fromBillModel(&m)
	if err != nil {
		return nil, err
	}
	b.PaidProducts, err = s.ListPaidProducts(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) ListBills(ctx context.Context, userID id.UserID, opts billing.ListOpts) ([]*billing.Bill, int, error) {
	filter := bson.M{"user_id": userID.String()}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	total, err := s.mdb.Collection(colBills).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("storefront/mongo: count bills: %w", err)
	}

	var models []billModel
	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, 0, fmt.Errorf("storefront/mongo: list bills: %w", err)
	}

	result := make([]*billing.Bill, len(models))
	for i := range models {
		b, err := fromBillModel(&models[i])
		if err != nil {
			return nil, 0, err
		}
		b.PaidProducts, err = s.ListPaidProducts(ctx, b.ID)
		if err != nil {
			return nil, 0, err
		}
		result[i] = b
	}
	return result, int(total), nil
}

func (s *Store) ListPaidProducts(ctx context.Context, billID id.BillID) ([]*billing.PaidProduct, error) {
	var models []paidProductModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"bill_id": billID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list paid products: %w", err)
	}

	result := make([]*billing.PaidProduct, len(models))
	for i := range models {
		pp, err := fromPaidProductModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = pp
	}
	return result, nil
}

func (s *Store) MarkPaidProductFulfilled(ctx context.Context, lineID id.PaidProductID, fulfilledAt time.Time) error {
	res, err := s.mdb.NewUpdate((*paidProductModel)(nil)).
		Filter(bson.M{"_id": lineID.String()}).
		Set("fulfilled_at", fulfilledAt).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: mark paid product fulfilled: %w", err)
	}
	if res.MatchedCount() == 0 {
		return storefront.ErrBillNotFound
	}
	return nil
}

// MarkBillPaid transitions a pending bill to paid. The status is part of
// the filter, so a replayed settlement matches zero documents and comes
// back as ErrBillNotPending.
func (s *Store) MarkBillPaid(ctx context.Context, billID id.BillID, paidAt time.Time, paymentRef string) (*billing.Bill, error) {
	t := now()
	res, err := s.mdb.NewUpdate((*billModel)(nil)).
		Filter(bson.M{"_id": billID.String(), "status": string(billing.StatusPending)}).
		Set("status", string(billing.StatusPaid)).
		Set("paid_at", paidAt).
		Set("payment_ref", paymentRef).
		Set("updated_at", t).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: mark bill paid: %w", err)
	}
	if res.MatchedCount() == 0 {
		if _, err := s.GetBill(ctx, billID); err != nil {
			return nil, err
		}
		return nil, storefront.ErrBillNotPending
	}
	return s.GetBill(ctx, billID)
}

func (s *Store) MarkBillRefunded(ctx context.Context, billID id.BillID, refundedAt time.Time) (*billing.Bill, error) {
	t := now()
	res, err := s.mdb.NewUpdate((*billModel)(nil)).
		Filter(bson.M{"_id": billID.String(), "status": string(billing.StatusPaid)}).
		Set("status", string(billing.StatusRefunded)).
		Set("refunded_at", refundedAt).
		Set("updated_at", t).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: mark bill refunded: %w", err)
	}
	if res.MatchedCount() == 0 {
		if _, err := s.GetBill(ctx, billID); err != nil {
			return nil, err
		}
		return nil, storefront.ErrBillNotPending
	}
	return s.GetBill(ctx, billID)
}

func (s *Store) ExpireBills(ctx context.Context, cutoff time.Time) (int, error) {
	t := now()
	res, err := s.mdb.Collection(colBills).UpdateMany(ctx,
		bson.M{
			"status":     string(billing.StatusPending),
			"expires_at": bson.M{"$lte": cutoff},
		},
		bson.M{"$set": bson.M{
			"status":     string(billing.StatusExpired),
			"updated_at": t,
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("storefront/mongo: expire bills: %w", err)
	}
	return int(res.ModifiedCount), nil
}

// ==================== Workspace Store ====================

func (s *Store) CreateWorkspace(ctx context.Context, ws *workspace.Workspace, roles []*workspace.Role) error {
	m := toWorkspaceModel(ws)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("storefront/mongo: create workspace: %w", err)
	}

	for _, r := range roles {
		rm := toWorkspaceRoleModel(r)
		if _, err := s.mdb.NewInsert(rm).Exec(ctx); err != nil {
			return fmt.Errorf("storefront/mongo: create workspace role: %w", err)
		}
	}
	return nil
}

func (s *Store) GetWorkspace(ctx context.Context, workspaceID id.WorkspaceID) (*workspace.Workspace, error) {
	var m workspaceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": workspaceID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get workspace: %w", err)
	}
	return fromWorkspaceModel(&m)
}

func (s *Store) ListWorkspacesByOwner(ctx context.Context, ownerID id.UserID) ([]*workspace.Workspace, error) {
	var models []workspaceModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"owner_id": ownerID.String()}).
		Sort(bson.D{{Key: "created_at", Value: -1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list workspaces: %w", err)
	}

	result := make([]*workspace.Workspace, len(models))
	for i := range models {
		ws, err := fromWorkspaceModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = ws
	}
	return result, nil
}

func (s *Store) ListWorkspaceRoles(ctx context.Context, workspaceID id.WorkspaceID) ([]*workspace.Role, error) {
	var models []workspaceRoleModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"workspace_id": workspaceID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list workspace roles: %w", err)
	}

	result := make([]*workspace.Role, len(models))
	for i := range models {
		r, err := fromWorkspaceRoleModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

func (s *Store) CreatePermission(ctx context.Context, p *workspace.Permission) error {
	m := toPermissionModel(p)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("storefront/mongo: create permission: %w", err)
	}
	return nil
}

func (s *Store) GetPermissionByName(ctx context.Context, name string) (*workspace.Permission, error) {
	var m permissionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrPermissionNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get permission by name: %w", err)
	}
	return fromPermissionModel(&m)
}

func (s *Store) ListPermissions(ctx context.Context) ([]*workspace.Permission, error) {
	var models []permissionModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "name", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list permissions: %w", err)
	}

	result := make([]*workspace.Permission, len(models))
	for i := range models {
		p, err := fromPermissionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

func (s *Store) CreateRolePermission(ctx context.Context, rp *workspace.RolePermission) error {
	m := toRolePermissionModel(rp)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		// Already bound, nothing to do
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("storefront/mongo: create role permission: %w", err)
	}
	return nil
}

func (s *Store) ListRolePermissions(ctx context.Context, roleID id.WorkspaceRoleID) ([]*workspace.RolePermission, error) {
	var models []rolePermissionModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"role_id": roleID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list role permissions: %w", err)
	}

	result := make([]*workspace.RolePermission, len(models))
	for i := range models {
		rp, err := fromRolePermissionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = rp
	}
	return result, nil
}

func (s *Store) CreateWorkspaceUserRole(ctx context.Context, ur *workspace.UserRole) error {
	m := toWorkspaceUserRoleModel(ur)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("storefront/mongo: create workspace user role: %w", err)
	}
	return nil
}

func (s *Store) ListWorkspaceUserRoles(ctx context.Context, workspaceID id.WorkspaceID) ([]*workspace.UserRole, error) {
	var models []workspaceUserRoleModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"workspace_id": workspaceID.String()}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list workspace user roles: %w", err)
	}

	result := make([]*workspace.UserRole, len(models))
	for i := range models {
		ur, err := fromWorkspaceUserRoleModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = ur
	}
	return result, nil
}

// ==================== Metafile Store ====================

func (s *Store) CreateMetaFile(ctx context.Context, f *metafile.File) error {
	m := toMetaFileModel(f)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("storefront/mongo: create meta file: %w", err)
	}
	return nil
}

func (s *Store) GetMetaFile(ctx context.Context, fileID id.MetaFileID) (*metafile.File, error) {
	var m metaFileModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": fileID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrFileNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get meta file: %w", err)
	}
	return fromMetaFileModel(&m)
}

func (s *Store) ListMetaFiles(ctx context.Context, ownerID id.UserID, opts metafile.ListOpts) ([]*metafile.File, int, error) {
	filter := bson.M{"owner_id": ownerID.String()}

	total, err := s.mdb.Collection(colMetaFiles).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("storefront/mongo: count meta files: %w", err)
	}

	var models []metaFileModel
	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, 0, fmt.Errorf("storefront/mongo: list meta files: %w", err)
	}

	result := make([]*metafile.File, len(models))
	for i := range models {
		f, err := fromMetaFileModel(&models[i])
		if err != nil {
			return nil, 0, err
		}
		result[i] = f
	}
	return result, int(total), nil
}

func (s *Store) DeleteMetaFile(ctx context.Context, ownerID id.UserID, fileID id.MetaFileID) error {
	res, err := s.mdb.NewDelete((*metaFileModel)(nil)).
		Filter(bson.M{"_id": fileID.String(), "owner_id": ownerID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: delete meta file: %w", err)
	}
	if res.DeletedCount() == 0 {
		return storefront.ErrFileNotFound
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all storefront collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colRoles: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colUserRoles: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "role_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colCashTransactions: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "cash_type", Value: 1}}},
		},
		colUserBalances: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		colProducts: {
			{Keys: bson.D{{Key: "active", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colTags: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colProductTags: {
			{
				Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "tag_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colGatewayProducts: {
			{
				Keys:    bson.D{{Key: "external_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colGatewayVariants: {
			{
				Keys:    bson.D{{Key: "external_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "external_product_id", Value: 1}}},
		},
		colCartItems: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colBills: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}}},
		},
		colPaidProducts: {
			{Keys: bson.D{{Key: "bill_id", Value: 1}}},
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		},
		colWorkspaces: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colWorkspaceRoles: {
			{
				Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colPermissions: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colRolePermissions: {
			{
				Keys:    bson.D{{Key: "role_id", Value: 1}, {Key: "permission_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colWorkspaceUserRoles: {
			{Keys: bson.D{{Key: "workspace_id", Value: 1}, {Key: "user_id", Value: 1}}},
		},
		colMetaFiles: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
}
