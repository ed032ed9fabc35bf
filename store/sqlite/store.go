package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

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

// compile-time interface check
var _ storefrontstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM. SQLite
// serializes writers, so the multi-statement write paths behave
// atomically under its single-writer lock.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("storefront/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("storefront/sqlite: migration failed: %w", err)
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
	existing := new(userModel)
	err := s.sdb.NewSelect(existing).
		Where("email = ?", u.Email).
		Scan(ctx)
	if err == nil {
		return storefront.ErrUserExists
	}
	if !isNoRows(err) {
		return err
	}

	m := toUserModel(u)
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetUser(ctx context.Context, userID id.UserID) (*account.User, error) {
	m := new(userModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", userID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrUserNotFound
		}
		return nil, err
	}
	return fromUserModel(m)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*account.User, error) {
	m := new(userModel)
	err := s.sdb.NewSelect(m).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrUserNotFound
		}
		return nil, err
	}
	return fromUserModel(m)
}

func (s *Store) CreateRole(ctx context.Context, r *account.Role) error {
	m := toRoleModel(r)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (*account.Role, error) {
	m := new(roleModel)
	err := s.sdb.NewSelect(m).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrRoleNotFound
		}
		return nil, err
	}
	return fromRoleModel(m)
}

func (s *Store) ListRoles(ctx context.Context) ([]*account.Role, error) {
	var models []roleModel
	err := s.sdb.NewSelect(&models).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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

// UpsertUserRole inserts a role grant or replaces the validity window of
// the existing (user, role) grant in a single statement.
func (s *Store) UpsertUserRole(ctx context.Context, ur *account.UserRole) (*account.UserRole, error) {
	m := toUserRoleModel(ur)
	m.UpdatedAt = now()
	_, err := s.sdb.NewInsert(m).
		OnConflict("(user_id, role_id) DO UPDATE").
		Set("start_date = EXCLUDED.start_date").
		Set("end_date = EXCLUDED.end_date").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetUserRole(ctx, ur.UserID, ur.RoleID)
}

func (s *Store) GetUserRole(ctx context.Context, userID id.UserID, roleID id.RoleID) (*account.UserRole, error) {
	m := new(userRoleModel)
	err := s.sdb.NewSelect(m).
		Where("user_id = ?", userID.String()).
		Where("role_id = ?", roleID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrRoleNotFound
		}
		return nil, err
	}
	return fromUserRoleModel(m)
}

func (s *Store) ListUserRoles(ctx context.Context, userID id.UserID) ([]*account.UserRole, error) {
	var models []userRoleModel
	err := s.sdb.NewSelect(&models).
		Where("user_id = ?", userID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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

// RecordCashTransaction appends the ledger entry and bumps the matching
// balance. SQLite's single-writer lock keeps the pair from interleaving
// with concurrent ledger writes; grove exposes no transaction API, so a
// crash between the two statements can leave a ledger row without its
// balance bump.
func (s *Store) RecordCashTransaction(ctx context.Context, txn *account.CashTransaction) (*account.UserBalance, error) {
	if _, err := s.GetUser(ctx, txn.UserID); err != nil {
		return nil, err
	}

	t := now()
	m := toCashTransactionModel(txn)
	m.CreatedAt = t
	m.UpdatedAt = t
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", storefront.ErrTransactionFailed, err)
	}

	b := &userBalanceModel{
		BalanceKey: balanceKey(txn.UserID.String(), string(txn.Cash)),
		UserID:     txn.UserID.String(),
		CashType:   string(txn.Cash),
		Balance:    txn.Amount,
		CreatedAt:  t,
		UpdatedAt:  t,
	}
	_, err := s.sdb.NewInsert(b).
		OnConflict("(balance_key) DO UPDATE").
		Set("balance = balance + EXCLUDED.balance").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storefront.ErrTransactionFailed, err)
	}

	return s.GetUserBalance(ctx, txn.UserID, txn.Cash)
}

func (s *Store) GetUserBalance(ctx context.Context, userID id.UserID, cash account.CashType) (*account.UserBalance, error) {
	m := new(userBalanceModel)
	err := s.sdb.NewSelect(m).
		Where("balance_key = ?", balanceKey(userID.String(), string(cash))).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrBalanceNotFound
		}
		return nil, err
	}
	return fromUserBalanceModel(m)
}

func (s *Store) ListCashTransactions(ctx context.Context, userID id.UserID, opts account.ListOpts) ([]*account.CashTransaction, error) {
	var models []cashTransactionModel
	q := s.sdb.NewSelect(&models).Where("user_id = ?", userID.String())

	if opts.Cash != "" {
		q = q.Where("cash_type = ?", string(opts.Cash))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetProduct(ctx context.Context, productID id.ProductID) (*catalog.Product, error) {
	m := new(productModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", productID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrProductNotFound
		}
		return nil, err
	}
	return fromProductModel(m)
}

// GetProducts returns one product per requested ID, in request order.
func (s *Store) GetProducts(ctx context.Context, productIDs []id.ProductID) ([]*catalog.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(productIDs))
	args := make([]interface{}, len(productIDs))
	for i, pid := range productIDs {
		placeholders[i] = "?"
		args[i] = pid.String()
	}

	var models []productModel
	err := s.sdb.NewSelect(&models).
		Where(fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ", ")), args...).
		Scan(ctx)
	if err != nil {
		return nil, err
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
	q := s.sdb.NewSelect(&models)

	if opts.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storefront.ErrProductNotFound
	}
	return nil
}

func (s *Store) ArchiveProduct(ctx context.Context, productID id.ProductID) error {
	res, err := s.sdb.NewUpdate((*productModel)(nil)).
		Set("active = ?", false).
		Set("updated_at = ?", now()).
		Where("id = ?", productID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetTagByName(ctx context.Context, name string) (*catalog.Tag, error) {
	m := new(tagModel)
	err := s.sdb.NewSelect(m).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrTagNotFound
		}
		return nil, err
	}
	return fromTagModel(m)
}

func (s *Store) ListTags(ctx context.Context) ([]*catalog.Tag, error) {
	var models []tagModel
	err := s.sdb.NewSelect(&models).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	_, err := s.sdb.NewInsert(m).
		OnConflict("(product_id, tag_id) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *Store) UntagProduct(ctx context.Context, productID id.ProductID, tagID id.TagID) error {
	res, err := s.sdb.NewDelete((*productTagModel)(nil)).
		Where("product_id = ?", productID.String()).
		Where("tag_id = ?", tagID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storefront.ErrProductNotTagged
	}
	return nil
}

func (s *Store) ProductTagNames(ctx context.Context, productID id.ProductID) ([]string, error) {
	var names []string
	err := s.sdb.NewRaw(`
		SELECT t.name FROM storefront_tags t
		JOIN storefront_product_tags pt ON pt.tag_id = t.id
		WHERE pt.product_id = ?
		ORDER BY t.name ASC
	`, productID.String()).Scan(ctx, &names)
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (s *Store) UpsertGatewayProduct(ctx context.Context, gp *catalog.GatewayProduct) error {
	m := toGatewayProductModel(gp)
	m.UpdatedAt = now()
	_, err := s.sdb.NewInsert(m).
		OnConflict("(external_id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("slug = EXCLUDED.slug").
		Set("status = EXCLUDED.status").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) UpsertGatewayVariant(ctx context.Context, gv *catalog.GatewayVariant) error {
	m := toGatewayVariantModel(gv)
	m.UpdatedAt = now()
	_, err := s.sdb.NewInsert(m).
		OnConflict("(external_id) DO UPDATE").
		Set("external_product_id = EXCLUDED.external_product_id").
		Set("name = EXCLUDED.name").
		Set("price_amount_cents = EXCLUDED.price_amount_cents").
		Set("price_currency = EXCLUDED.price_currency").
		Set("interval = EXCLUDED.interval").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetGatewayVariant(ctx context.Context, externalID string) (*catalog.GatewayVariant, error) {
	m := new(gatewayVariantModel)
	err := s.sdb.NewSelect(m).
		Where("external_id = ?", externalID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrVariantNotFound
		}
		return nil, err
	}
	return fromGatewayVariantModel(m)
}

func (s *Store) ListGatewayVariants(ctx context.Context, opts catalog.ListOpts) ([]*catalog.GatewayVariant, error) {
	var models []gatewayVariantModel
	q := s.sdb.NewSelect(&models)

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetCartItems(ctx context.Context, itemIDs []id.CartItemID) ([]*cart.Item, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(itemIDs))
	args := make([]interface{}, len(itemIDs))
	for i, itemID := range itemIDs {
		placeholders[i] = "?"
		args[i] = itemID.String()
	}

	var models []cartItemModel
	err := s.sdb.NewSelect(&models).
		Where(fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ", ")), args...).
		Scan(ctx)
	if err != nil {
		return nil, err
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
	var total int
	err := s.sdb.NewRaw(`
		SELECT COUNT(*) FROM storefront_cart_items WHERE user_id = ?
	`, userID.String()).Scan(ctx, &total)
	if err != nil {
		return nil, 0, err
	}

	var models []cartItemModel
	q := s.sdb.NewSelect(&models).Where("user_id = ?", userID.String())

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, 0, err
	}

	result := make([]*cart.Item, len(models))
	for i := range models {
		item, err := fromCartItemModel(&models[i])
		if err != nil {
			return nil, 0, err
		}
		result[i] = item
	}
	return result, total, nil
}

func (s *Store) RemoveCartItem(ctx context.Context, userID id.UserID, itemID id.CartItemID) error {
	res, err := s.sdb.NewDelete((*cartItemModel)(nil)).
		Where("id = ?", itemID.String()).
		Where("user_id = ?", userID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storefront.ErrCartItemNotFound
	}
	return nil
}

// ==================== Billing Store ====================

// CreateBill writes the bill, its paid product lines, and the cart item
// deletions back to back under SQLite's writer lock. The cart items are
// re-checked first so a stale ID fails before anything is written.
// Grove exposes no transaction API, so a process crash between the
// statements can leave a bill without its cart clear; the writer lock
// rules out interleaving but not partial sequences.
func (s *Store) CreateBill(ctx context.Context, b *billing.Bill, consumedCartItems []id.CartItemID) error {
	if len(b.PaidProducts) == 0 || len(consumedCartItems) == 0 {
		return storefront.ErrEmptyCart
	}

	if _, err := s.GetCartItems(ctx, consumedCartItems); err != nil {
		return err
	}

	m := toBillModel(b)
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("%w: %w", storefront.ErrTransactionFailed, err)
	}

	lineModels := make([]paidProductModel, len(b.PaidProducts))
	for i, pp := range b.PaidProducts {
		lineModels[i] = *toPaidProductModel(pp)
	}
	if _, err := s.sdb.NewInsert(&lineModels).Exec(ctx); err != nil {
		return fmt.Errorf("%w: %w", storefront.ErrTransactionFailed, err)
	}

	placeholders := make([]string, len(consumedCartItems))
	args := make([]interface{}, len(consumedCartItems))
	for i, itemID := range consumedCartItems {
		placeholders[i] = "?"
		args[i] = itemID.String()
	}
	_, err := s.sdb.NewDelete((*cartItemModel)(nil)).
		Where(fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ", ")), args...).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", storefront.ErrTransactionFailed, err)
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*billing.Bill, error) {
	m := new(billModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", billID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrBillNotFound
		}
		return nil, err
	}

	b, err := fromBillModel(m)
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
	countQuery := `SELECT COUNT(*) FROM storefront_bills WHERE user_id = ?`
	countArgs := []interface{}{userID.String()}
	if opts.Status != "" {
		countQuery += ` AND status = ?`
		countArgs = append(countArgs, string(opts.Status))
	}

	var total int
	if err := s.sdb.NewRaw(countQuery, countArgs...).Scan(ctx, &total); err != nil {
		return nil, 0, err
	}

	var models []billModel
	q := s.sdb.NewSelect(&models).Where("user_id = ?", userID.String())

	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, 0, err
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
	return result, total, nil
}

func (s *Store) ListPaidProducts(ctx context.Context, billID id.BillID) ([]*billing.PaidProduct, error) {
	var models []paidProductModel
	err := s.sdb.NewSelect(&models).
		Where("bill_id = ?", billID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	res, err := s.sdb.NewUpdate((*paidProductModel)(nil)).
		Set("fulfilled_at = ?", fulfilledAt).
		Set("updated_at = ?", now()).
		Where("id = ?", lineID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storefront.ErrBillNotFound
	}
	return nil
}

// MarkBillPaid transitions a pending bill to paid. The status guard is
// part of the update, so replayed settlements affect zero rows and come
// back as ErrBillNotPending.
func (s *Store) MarkBillPaid(ctx context.Context, billID id.BillID, paidAt time.Time, paymentRef string) (*billing.Bill, error) {
	res, err := s.sdb.NewUpdate((*billModel)(nil)).
		Set("status = ?", string(billing.StatusPaid)).
		Set("paid_at = ?", paidAt).
		Set("payment_ref = ?", paymentRef).
		Set("updated_at = ?", now()).
		Where("id = ?", billID.String()).
		Where("status = ?", string(billing.StatusPending)).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if _, err := s.GetBill(ctx, billID); err != nil {
			return nil, err
		}
		return nil, storefront.ErrBillNotPending
	}
	return s.GetBill(ctx, billID)
}

func (s *Store) MarkBillRefunded(ctx context.Context, billID id.BillID, refundedAt time.Time) (*billing.Bill, error) {
	res, err := s.sdb.NewUpdate((*billModel)(nil)).
		Set("status = ?", string(billing.StatusRefunded)).
		Set("refunded_at = ?", refundedAt).
		Set("updated_at = ?", now()).
		Where("id = ?", billID.String()).
		Where("status = ?", string(billing.StatusPaid)).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if _, err := s.GetBill(ctx, billID); err != nil {
			return nil, err
		}
		return nil, storefront.ErrBillNotPending
	}
	return s.GetBill(ctx, billID)
}

func (s *Store) ExpireBills(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.sdb.NewUpdate((*billModel)(nil)).
		Set("status = ?", string(billing.StatusExpired)).
		Set("updated_at = ?", now()).
		Where("status = ?", string(billing.StatusPending)).
		Where("expires_at <= ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

// ==================== Workspace Store ====================

func (s *Store) CreateWorkspace(ctx context.Context, ws *workspace.Workspace, roles []*workspace.Role) error {
	m := toWorkspaceModel(ws)
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return err
	}

	if len(roles) == 0 {
		return nil
	}
	roleModels := make([]workspaceRoleModel, len(roles))
	for i, r := range roles {
		roleModels[i] = *toWorkspaceRoleModel(r)
	}
	_, err := s.sdb.NewInsert(&roleModels).Exec(ctx)
	return err
}

func (s *Store) GetWorkspace(ctx context.Context, workspaceID id.WorkspaceID) (*workspace.Workspace, error) {
	m := new(workspaceModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", workspaceID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return fromWorkspaceModel(m)
}

func (s *Store) ListWorkspacesByOwner(ctx context.Context, ownerID id.UserID) ([]*workspace.Workspace, error) {
	var models []workspaceModel
	err := s.sdb.NewSelect(&models).
		Where("owner_id = ?", ownerID.String()).
		OrderExpr("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	err := s.sdb.NewSelect(&models).
		Where("workspace_id = ?", workspaceID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPermissionByName(ctx context.Context, name string) (*workspace.Permission, error) {
	m := new(permissionModel)
	err := s.sdb.NewSelect(m).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrPermissionNotFound
		}
		return nil, err
	}
	return fromPermissionModel(m)
}

func (s *Store) ListPermissions(ctx context.Context) ([]*workspace.Permission, error) {
	var models []permissionModel
	err := s.sdb.NewSelect(&models).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	_, err := s.sdb.NewInsert(m).
		OnConflict("(role_id, permission_id) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *Store) ListRolePermissions(ctx context.Context, roleID id.WorkspaceRoleID) ([]*workspace.RolePermission, error) {
	var models []rolePermissionModel
	err := s.sdb.NewSelect(&models).
		Where("role_id = ?", roleID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListWorkspaceUserRoles(ctx context.Context, workspaceID id.WorkspaceID) ([]*workspace.UserRole, error) {
	var models []workspaceUserRoleModel
	err := s.sdb.NewSelect(&models).
		Where("workspace_id = ?", workspaceID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetMetaFile(ctx context.Context, fileID id.MetaFileID) (*metafile.File, error) {
	m := new(metaFileModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", fileID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrFileNotFound
		}
		return nil, err
	}
	return fromMetaFileModel(m)
}

func (s *Store) ListMetaFiles(ctx context.Context, ownerID id.UserID, opts metafile.ListOpts) ([]*metafile.File, int, error) {
	var total int
	err := s.sdb.NewRaw(`
		SELECT COUNT(*) FROM storefront_meta_files WHERE owner_id = ?
	`, ownerID.String()).Scan(ctx, &total)
	if err != nil {
		return nil, 0, err
	}

	var models []metaFileModel
	q := s.sdb.NewSelect(&models).Where("owner_id = ?", ownerID.String())

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, 0, err
	}

	result := make([]*metafile.File, len(models))
	for i := range models {
		f, err := fromMetaFileModel(&models[i])
		if err != nil {
			return nil, 0, err
		}
		result[i] = f
	}
	return result, total, nil
}

func (s *Store) DeleteMetaFile(ctx context.Context, ownerID id.UserID, fileID id.MetaFileID) error {
	res, err := s.sdb.NewDelete((*metaFileModel)(nil)).
		Where("id = ?", fileID.String()).
		Where("owner_id = ?", ownerID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storefront.ErrFileNotFound
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
