package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
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

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("storefront/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("storefront/postgres: migration failed: %w", err)
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
	err := s.pg.NewSelect(existing).
		Where("email = $1", u.Email).
		Scan(ctx)
	if err == nil {
		return storefront.ErrUserExists
	}
	if !isNoRows(err) {
		return err
	}

	m := toUserModel(u)
	_, err = s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetUser(ctx context.Context, userID id.UserID) (*account.User, error) {
	m := new(userModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", userID.String()).
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
	err := s.pg.NewSelect(m).
		Where("email = $1", email).
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
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (*account.Role, error) {
	m := new(roleModel)
	err := s.pg.NewSelect(m).
		Where("name = $1", name).
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
	err := s.pg.NewSelect(&models).
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

// UpsertUserRole inserts a role grant or, when the (user, role) pair
// already has one, replaces its validity window in place. The upsert is
// a single statement, so concurrent renewals cannot duplicate grants.
func (s *Store) UpsertUserRole(ctx context.Context, ur *account.UserRole) (*account.UserRole, error) {
	m := toUserRoleModel(ur)
	m.UpdatedAt = now()
	_, err := s.pg.NewInsert(m).
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
	err := s.pg.NewSelect(m).
		Where("user_id = $1", userID.String()).
		Where("role_id = $2", roleID.String()).
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
	err := s.pg.NewSelect(&models).
		Where("user_id = $1", userID.String()).
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
// balance in one statement, so the ledger and the aggregate cannot
// diverge. The updated balance is returned from the same statement.
func (s *Store) RecordCashTransaction(ctx context.Context, txn *account.CashTransaction) (*account.UserBalance, error) {
	if _, err := s.GetUser(ctx, txn.UserID); err != nil {
		return nil, err
	}

	t := now()
	var balance int64
	err := s.pg.NewRaw(`
		WITH txn AS (
			INSERT INTO storefront_cash_transactions (id, user_id, type, cash_type, amount, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
		)
		INSERT INTO storefront_user_balances (balance_key, user_id, cash_type, balance, created_at, updated_at)
		VALUES ($7, $2, $4, $5, $6, $6)
		ON CONFLICT (balance_key) DO UPDATE
		SET balance = storefront_user_balances.balance + EXCLUDED.balance,
		    updated_at = EXCLUDED.updated_at
		RETURNING balance
	`,
		txn.ID.String(),
		txn.UserID.String(),
		string(txn.Type),
		string(txn.Cash),
		txn.Amount,
		t,
		balanceKey(txn.UserID.String(), string(txn.Cash)),
	).Scan(ctx, &balance)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storefront.ErrTransactionFailed, err)
	}

	return s.GetUserBalance(ctx, txn.UserID, txn.Cash)
}

func (s *Store) GetUserBalance(ctx context.Context, userID id.UserID, cash account.CashType) (*account.UserBalance, error) {
	m := new(userBalanceModel)
	err := s.pg.NewSelect(m).
		Where("balance_key = $1", balanceKey(userID.String(), string(cash))).
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
	q := s.pg.NewSelect(&models).Where("user_id = $1", userID.String())

	argIdx := 1
	if opts.Cash != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("cash_type = $%d", argIdx), string(opts.Cash))
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
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetProduct(ctx context.Context, productID id.ProductID) (*catalog.Product, error) {
	m := new(productModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", productID.String()).
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
// Duplicate IDs yield duplicate entries so callers can sum prices per
// cart item.
func (s *Store) GetProducts(ctx context.Context, productIDs []id.ProductID) ([]*catalog.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(productIDs))
	args := make([]interface{}, len(productIDs))
	for i, pid := range productIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = pid.String()
	}

	var models []productModel
	err := s.pg.NewSelect(&models).
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
	q := s.pg.NewSelect(&models)

	if opts.ActiveOnly {
		q = q.Where("active = $1", true)
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
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
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
	t := now()
	res, err := s.pg.NewUpdate((*productModel)(nil)).
		Set("active = $1", false).
		Set("updated_at = $2", t).
		Where("id = $3", productID.String()).
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
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetTagByName(ctx context.Context, name string) (*catalog.Tag, error) {
	m := new(tagModel)
	err := s.pg.NewSelect(m).
		Where("name = $1", name).
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
	err := s.pg.NewSelect(&models).
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
	_, err := s.pg.NewInsert(m).
		OnConflict("(product_id, tag_id) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *Store) UntagProduct(ctx context.Context, productID id.ProductID, tagID id.TagID) error {
	res, err := s.pg.NewDelete((*productTagModel)(nil)).
		Where("product_id = $1", productID.String()).
		Where("tag_id = $2", tagID.String()).
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
	err := s.pg.NewRaw(`
		SELECT t.name FROM storefront_tags t
		JOIN storefront_product_tags pt ON pt.tag_id = t.id
		WHERE pt.product_id = $1
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
	_, err := s.pg.NewInsert(m).
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
	_, err := s.pg.NewInsert(m).
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
	err := s.pg.NewSelect(m).
		Where("external_id = $1", externalID).
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
	q := s.pg.NewSelect(&models)

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
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetCartItems(ctx context.Context, itemIDs []id.CartItemID) ([]*cart.Item, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(itemIDs))
	args := make([]interface{}, len(itemIDs))
	for i, itemID := range itemIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = itemID.String()
	}

	var models []cartItemModel
	err := s.pg.NewSelect(&models).
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
	err := s.pg.NewRaw(`
		SELECT COUNT(*) FROM storefront_cart_items WHERE user_id = $1
	`, userID.String()).Scan(ctx, &total)
	if err != nil {
		return nil, 0, err
	}

	var models []cartItemModel
	q := s.pg.NewSelect(&models).Where("user_id = $1", userID.String())

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
	res, err := s.pg.NewDelete((*cartItemModel)(nil)).
		Where("id = $1", itemID.String()).
		Where("user_id = $2", userID.String()).
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
// deletions as one statement. The cart rows are locked and counted
// first; the delete and both inserts only fire when every requested row
// is still present, so a cart item consumed by a concurrent checkout
// leaves no bill, no lines, and no partial delete behind.
func (s *Store) CreateBill(ctx context.Context, b *billing.Bill, consumedCartItems []id.CartItemID) error {
	if len(b.PaidProducts) == 0 || len(consumedCartItems) == 0 {
		return storefront.ErrEmptyCart
	}

	t := now()

	args := []interface{}{
		b.ID.String(),     // $1
		b.UserID.String(), // $2
		b.Total.Amount,    // $3
		b.Total.Currency,  // $4
		string(b.Status),  // $5
		b.ExpiresAt,       // $6
		t,                 // $7
	}
	argIdx := len(args)

	lineValues := make([]string, len(b.PaidProducts))
	for i, pp := range b.PaidProducts {
		workspaceID := ""
		if !pp.WorkspaceID.IsNil() {
			workspaceID = pp.WorkspaceID.String()
		}
		lineValues[i] = fmt.Sprintf("($%d, $%d, $%d)", argIdx+1, argIdx+2, argIdx+3)
		args = append(args, pp.ID.String(), pp.ProductID.String(), workspaceID)
		argIdx += 3
	}

	itemPlaceholders := make([]string, len(consumedCartItems))
	for i, itemID := range consumedCartItems {
		itemPlaceholders[i] = fmt.Sprintf("$%d", argIdx+1)
		args = append(args, itemID.String())
		argIdx++
	}

	args = append(args, len(consumedCartItems))
	argIdx++
	wantCount := fmt.Sprintf("$%d", argIdx)

	// FOR UPDATE serializes racing checkouts on the same rows; under
	// read committed a row deleted by the winner drops out of locked, the
	// count falls short, and every write below is skipped in the same
	// statement.
	query := fmt.Sprintf(`
		WITH locked AS (
			SELECT id FROM storefront_cart_items WHERE id IN (%[1]s) FOR UPDATE
		), removed AS (
			DELETE FROM storefront_cart_items
			WHERE id IN (SELECT id FROM locked)
			  AND (SELECT COUNT(*) FROM locked) = %[2]s
			RETURNING id
		), new_bill AS (
			INSERT INTO storefront_bills (id, user_id, total_amount_cents, total_currency, status, expires_at, payment_ref, created_at, updated_at)
			SELECT $1, $2, $3, $4, $5, $6, '', $7, $7
			WHERE (SELECT COUNT(*) FROM removed) = %[2]s
		), new_lines AS (
			INSERT INTO storefront_paid_products (id, bill_id, product_id, owner_id, workspace_id, created_at, updated_at)
			SELECT v.id, $1, v.product_id, $2, v.workspace_id, $7, $7
			FROM (VALUES %[3]s) AS v(id, product_id, workspace_id)
			WHERE (SELECT COUNT(*) FROM removed) = %[2]s
		)
		SELECT COUNT(*) FROM removed
	`, strings.Join(itemPlaceholders, ", "), wantCount, strings.Join(lineValues, ", "))

	var removed int
	if err := s.pg.NewRaw(query, args...).Scan(ctx, &removed); err != nil {
		return fmt.Errorf("%w: %w", storefront.ErrTransactionFailed, err)
	}
	if removed != len(consumedCartItems) {
		return fmt.Errorf("%w: cart changed during checkout", storefront.ErrTransactionFailed)
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*billing.Bill, error) {
	m := new(billModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", billID.String()).
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
	countQuery := `SELECT COUNT(*) FROM storefront_bills WHERE user_id = $1`
	countArgs := []interface{}{userID.String()}
	if opts.Status != "" {
		countQuery += ` AND status = $2`
		countArgs = append(countArgs, string(opts.Status))
	}

	var total int
	if err := s.pg.NewRaw(countQuery, countArgs...).Scan(ctx, &total); err != nil {
		return nil, 0, err
	}

	var models []billModel
	q := s.pg.NewSelect(&models).Where("user_id = $1", userID.String())

	if opts.Status != "" {
		q = q.Where("status = $2", string(opts.Status))
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
	err := s.pg.NewSelect(&models).
		Where("bill_id = $1", billID.String()).
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
	res, err := s.pg.NewUpdate((*paidProductModel)(nil)).
		Set("fulfilled_at = $1", fulfilledAt).
		Set("updated_at = $2", now()).
		Where("id = $3", lineID.String()).
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
	res, err := s.pg.NewUpdate((*billModel)(nil)).
		Set("status = $1", string(billing.StatusPaid)).
		Set("paid_at = $2", paidAt).
		Set("payment_ref = $3", paymentRef).
		Set("updated_at = $4", now()).
		Where("id = $5", billID.String()).
		Where("status = $6", string(billing.StatusPending)).
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
	res, err := s.pg.NewUpdate((*billModel)(nil)).
		Set("status = $1", string(billing.StatusRefunded)).
		Set("refunded_at = $2", refundedAt).
		Set("updated_at = $3", now()).
		Where("id = $4", billID.String()).
		Where("status = $5", string(billing.StatusPaid)).
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
	res, err := s.pg.NewUpdate((*billModel)(nil)).
		Set("status = $1", string(billing.StatusExpired)).
		Set("updated_at = $2", now()).
		Where("status = $3", string(billing.StatusPending)).
		Where("expires_at <= $4", cutoff).
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
	if _, err := s.pg.NewInsert(m).Exec(ctx); err != nil {
		return err
	}

	if len(roles) == 0 {
		return nil
	}
	roleModels := make([]workspaceRoleModel, len(roles))
	for i, r := range roles {
		roleModels[i] = *toWorkspaceRoleModel(r)
	}
	_, err := s.pg.NewInsert(&roleModels).Exec(ctx)
	return err
}

func (s *Store) GetWorkspace(ctx context.Context, workspaceID id.WorkspaceID) (*workspace.Workspace, error) {
	m := new(workspaceModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", workspaceID.String()).
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
	err := s.pg.NewSelect(&models).
		Where("owner_id = $1", ownerID.String()).
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
	err := s.pg.NewSelect(&models).
		Where("workspace_id = $1", workspaceID.String()).
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
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPermissionByName(ctx context.Context, name string) (*workspace.Permission, error) {
	m := new(permissionModel)
	err := s.pg.NewSelect(m).
		Where("name = $1", name).
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
	err := s.pg.NewSelect(&models).
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
	_, err := s.pg.NewInsert(m).
		OnConflict("(role_id, permission_id) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *Store) ListRolePermissions(ctx context.Context, roleID id.WorkspaceRoleID) ([]*workspace.RolePermission, error) {
	var models []rolePermissionModel
	err := s.pg.NewSelect(&models).
		Where("role_id = $1", roleID.String()).
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
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListWorkspaceUserRoles(ctx context.Context, workspaceID id.WorkspaceID) ([]*workspace.UserRole, error) {
	var models []workspaceUserRoleModel
	err := s.pg.NewSelect(&models).
		Where("workspace_id = $1", workspaceID.String()).
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
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetMetaFile(ctx context.Context, fileID id.MetaFileID) (*metafile.File, error) {
	m := new(metaFileModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", fileID.String()).
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
	err := s.pg.NewRaw(`
		SELECT COUNT(*) FROM storefront_meta_files WHERE owner_id = $1
	`, ownerID.String()).Scan(ctx, &total)
	if err != nil {
		return nil, 0, err
	}

	var models []metaFileModel
	q := s.pg.NewSelect(&models).Where("owner_id = $1", ownerID.String())

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
	res, err := s.pg.NewDelete((*metaFileModel)(nil)).
		Where("id = $1", fileID.String()).
		Where("owner_id = $2", ownerID.String()).
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
