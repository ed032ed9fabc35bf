// Package memory provides an in-process Store used in tests and local
// development. Multi-write operations are atomic under the write lock.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	storefront "github.com/xraph/storefront"
	"github.com/xraph/storefront/account"
	"github.com/xraph/storefront/billing"
	"github.com/xraph/storefront/cart"
	"github.com/xraph/storefront/catalog"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/metafile"
	"github.com/xraph/storefront/workspace"
)

type Store struct {
	mu sync.RWMutex

	// Account storage
	users        map[string]*account.User
	roles        map[string]*account.Role
	userRoles    map[string]*account.UserRole // key: userID|roleID
	transactions []*account.CashTransaction
	balances     map[string]*account.UserBalance // key: userID|cashType

	// Catalog storage
	products        map[string]*catalog.Product
	tags            map[string]*catalog.Tag
	productTags     map[string]*catalog.ProductTag
	gatewayProducts map[string]*catalog.GatewayProduct // key: external id
	gatewayVariants map[string]*catalog.GatewayVariant // key: external id

	// Cart storage
	cartItems map[string]*cart.Item

	// Billing storage
	bills        map[string]*billing.Bill
	paidProducts map[string]*billing.PaidProduct

	// Workspace storage
	workspaces         map[string]*workspace.Workspace
	workspaceRoles     map[string]*workspace.Role
	permissions        map[string]*workspace.Permission
	rolePermissions    map[string]*workspace.RolePermission
	workspaceUserRoles map[string]*workspace.UserRole

	// Metafile storage
	metaFiles map[string]*metafile.File
}

func New() *Store {
	return &Store{
		users:              make(map[string]*account.User),
		roles:              make(map[string]*account.Role),
		userRoles:          make(map[string]*account.UserRole),
		transactions:       make([]*account.CashTransaction, 0),
		balances:           make(map[string]*account.UserBalance),
		products:           make(map[string]*catalog.Product),
		tags:               make(map[string]*catalog.Tag),
		productTags:        make(map[string]*catalog.ProductTag),
		gatewayProducts:    make(map[string]*catalog.GatewayProduct),
		gatewayVariants:    make(map[string]*catalog.GatewayVariant),
		cartItems:          make(map[string]*cart.Item),
		bills:              make(map[string]*billing.Bill),
		paidProducts:       make(map[string]*billing.PaidProduct),
		workspaces:         make(map[string]*workspace.Workspace),
		workspaceRoles:     make(map[string]*workspace.Role),
		permissions:        make(map[string]*workspace.Permission),
		rolePermissions:    make(map[string]*workspace.RolePermission),
		workspaceUserRoles: make(map[string]*workspace.UserRole),
		metaFiles:          make(map[string]*metafile.File),
	}
}

func grantKey(userID id.UserID, roleID id.RoleID) string {
	return userID.String() + "|" + roleID.String()
}

func balanceKey(userID id.UserID, cash account.CashType) string {
	return userID.String() + "|" + string(cash)
}

// Account Store implementation

func (s *Store) CreateUser(_ context.Context, u *account.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return storefront.ErrUserExists
		}
	}
	s.users[u.ID.String()] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, userID id.UserID) (*account.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users[userID.String()]; ok {
		return u, nil
	}
	return nil, storefront.ErrUserNotFound
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*account.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, storefront.ErrUserNotFound
}

func (s *Store) CreateRole(_ context.Context, r *account.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roles[r.ID.String()] = r
	return nil
}

func (s *Store) GetRoleByName(_ context.Context, name string) (*account.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, storefront.ErrRoleNotFound
}

func (s *Store) ListRoles(_ context.Context) ([]*account.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*account.Role, 0, len(s.roles))
	for _, r := range s.roles {
		result = append(result, r)
	}
	return result, nil
}

func (s *Store) UpsertUserRole(_ context.Context, ur *account.UserRole) (*account.UserRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := grantKey(ur.UserID, ur.RoleID)
	if existing, ok := s.userRoles[key]; ok {
		existing.StartDate = ur.StartDate
		existing.EndDate = ur.EndDate
		existing.Touch()
		cp := *existing
		return &cp, nil
	}
	s.userRoles[key] = ur
	cp := *ur
	return &cp, nil
}

func (s *Store) GetUserRole(_ context.Context, userID id.UserID, roleID id.RoleID) (*account.UserRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ur, ok := s.userRoles[grantKey(userID, roleID)]; ok {
		return ur, nil
	}
	return nil, storefront.ErrRoleNotFound
}

func (s *Store) ListUserRoles(_ context.Context, userID id.UserID) ([]*account.UserRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*account.UserRole, 0)
	for _, ur := range s.userRoles {
		if ur.UserID == userID {
			result = append(result, ur)
		}
	}
	return result, nil
}

func (s *Store) RecordCashTransaction(_ context.Context, txn *account.CashTransaction) (*account.UserBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[txn.UserID.String()]; !ok {
		return nil, storefront.ErrUserNotFound
	}

	// Ledger entry and balance change under one lock hold.
	s.transactions = append(s.transactions, txn)

	key := balanceKey(txn.UserID, txn.Cash)
	bal, ok := s.balances[key]
	if !ok {
		bal = &account.UserBalance{
			UserID: txn.UserID,
			Cash:   txn.Cash,
		}
		bal.CreatedAt = time.Now().UTC()
		s.balances[key] = bal
	}
	bal.Balance += txn.Amount
	bal.Touch()

	cp := *bal
	return &cp, nil
}

func (s *Store) GetUserBalance(_ context.Context, userID id.UserID, cash account.CashType) (*account.UserBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if bal, ok := s.balances[balanceKey(userID, cash)]; ok {
		cp := *bal
		return &cp, nil
	}
	return nil, storefront.ErrBalanceNotFound
}

func (s *Store) ListCashTransactions(_ context.Context, userID id.UserID, opts account.ListOpts) ([]*account.CashTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*account.CashTransaction, 0)
	for _, txn := range s.transactions {
		if txn.UserID != userID {
			continue
		}
		if opts.Cash != "" && txn.Cash != opts.Cash {
			continue
		}
		result = append(result, txn)
	}
	return paginate(result, opts.Offset, opts.Limit), nil
}

// Catalog Store implementation

func (s *Store) CreateProduct(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[p.ID.String()] = p
	return nil
}

func (s *Store) GetProduct(_ context.Context, productID id.ProductID) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.products[productID.String()]; ok {
		return p, nil
	}
	return nil, storefront.ErrProductNotFound
}

func (s *Store) GetProducts(_ context.Context, productIDs []id.ProductID) ([]*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*catalog.Product, 0, len(productIDs))
	for _, pid := range productIDs {
		p, ok := s.products[pid.String()]
		if !ok {
			return nil, storefront.ErrProductNotFound
		}
		result = append(result, p)
	}
	return result, nil
}

func (s *Store) ListProducts(_ context.Context, opts catalog.ListOpts) ([]*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*catalog.Product, 0)
	for _, p := range s.products {
		if opts.ActiveOnly && !p.Active {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateProduct(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID.String()]; !ok {
		return storefront.ErrProductNotFound
	}
	s.products[p.ID.String()] = p
	return nil
}

func (s *Store) ArchiveProduct(_ context.Context, productID id.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.products[productID.String()]; ok {
		p.Active = false
		p.Touch()
		return nil
	}
	return storefront.ErrProductNotFound
}

func (s *Store) CreateTag(_ context.Context, t *catalog.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tags {
		if existing.Name == t.Name {
			return storefront.ErrDuplicateTag
		}
	}
	s.tags[t.ID.String()] = t
	return nil
}

func (s *Store) GetTagByName(_ context.Context, name string) (*catalog.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tags {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, storefront.ErrTagNotFound
}

func (s *Store) ListTags(_ context.Context) ([]*catalog.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*catalog.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		result = append(result, t)
	}
	return result, nil
}

func (s *Store) TagProduct(_ context.Context, pt *catalog.ProductTag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[pt.ProductID.String()]; !ok {
		return storefront.ErrProductNotFound
	}
	if _, ok := s.tags[pt.TagID.String()]; !ok {
		return storefront.ErrTagNotFound
	}
	s.productTags[pt.ID.String()] = pt
	return nil
}

func (s *Store) UntagProduct(_ context.Context, productID id.ProductID, tagID id.TagID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, pt := range s.productTags {
		if pt.ProductID == productID && pt.TagID == tagID {
			delete(s.productTags, key)
			return nil
		}
	}
	return storefront.ErrProductNotTagged
}

func (s *Store) ProductTagNames(_ context.Context, productID id.ProductID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0)
	for _, pt := range s.productTags {
		if pt.ProductID != productID {
			continue
		}
		if t, ok := s.tags[pt.TagID.String()]; ok {
			names = append(names, t.Name)
		}
	}
	return names, nil
}

func (s *Store) UpsertGatewayProduct(_ context.Context, gp *catalog.GatewayProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.gatewayProducts[gp.ExternalID]; ok {
		existing.Name = gp.Name
		existing.Slug = gp.Slug
		existing.Status = gp.Status
		existing.Touch()
		return nil
	}
	s.gatewayProducts[gp.ExternalID] = gp
	return nil
}

func (s *Store) UpsertGatewayVariant(_ context.Context, gv *catalog.GatewayVariant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.gatewayVariants[gv.ExternalID]; ok {
		existing.ExternalProductID = gv.ExternalProductID
		existing.Name = gv.Name
		existing.Price = gv.Price
		existing.Interval = gv.Interval
		existing.Touch()
		return nil
	}
	s.gatewayVariants[gv.ExternalID] = gv
	return nil
}

func (s *Store) GetGatewayVariant(_ context.Context, externalID string) (*catalog.GatewayVariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if gv, ok := s.gatewayVariants[externalID]; ok {
		return gv, nil
	}
	return nil, storefront.ErrVariantNotFound
}

func (s *Store) ListGatewayVariants(_ context.Context, opts catalog.ListOpts) ([]*catalog.GatewayVariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*catalog.GatewayVariant, 0, len(s.gatewayVariants))
	for _, gv := range s.gatewayVariants {
		result = append(result, gv)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ExternalID < result[j].ExternalID
	})
	return paginate(result, opts.Offset, opts.Limit), nil
}

// Cart Store implementation

func (s *Store) AddCartItem(_ context.Context, item *cart.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cartItems[item.ID.String()] = item
	return nil
}

func (s *Store) GetCartItems(_ context.Context, itemIDs []id.CartItemID) ([]*cart.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*cart.Item, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		item, ok := s.cartItems[itemID.String()]
		if !ok {
			return nil, storefront.ErrCartItemNotFound
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *Store) ListCartItems(_ context.Context, userID id.UserID, opts cart.ListOpts) ([]*cart.Item, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*cart.Item, 0)
	for _, item := range s.cartItems {
		if item.UserID == userID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := len(result)
	return paginate(result, opts.Offset, opts.Limit), total, nil
}

func (s *Store) RemoveCartItem(_ context.Context, userID id.UserID, itemID id.CartItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cartItems[itemID.String()]
	if !ok || item.UserID != userID {
		return storefront.ErrCartItemNotFound
	}
	delete(s.cartItems, itemID.String())
	return nil
}

// Billing Store implementation

func (s *Store) CreateBill(_ context.Context, b *billing.Bill, consumedCartItems []id.CartItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything before the first write so the operation is
	// all-or-nothing.
	for _, itemID := range consumedCartItems {
		if _, ok := s.cartItems[itemID.String()]; !ok {
			return storefront.ErrCartItemNotFound
		}
	}

	s.bills[b.ID.String()] = b
	for _, pp := range b.PaidProducts {
		s.paidProducts[pp.ID.String()] = pp
	}
	for _, itemID := range consumedCartItems {
		delete(s.cartItems, itemID.String())
	}
	return nil
}

func (s *Store) GetBill(_ context.Context, billID id.BillID) (*billing.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bills[billID.String()]
	if !ok {
		return nil, storefront.ErrBillNotFound
	}
	cp := *b
	cp.PaidProducts = s.paidProductsFor(billID)
	return &cp, nil
}

func (s *Store) ListBills(_ context.Context, userID id.UserID, opts billing.ListOpts) ([]*billing.Bill, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*billing.Bill, 0)
	for _, b := range s.bills {
		if b.UserID != userID {
			continue
		}
		if opts.Status != "" && b.Status != opts.Status {
			continue
		}
		cp := *b
		cp.PaidProducts = s.paidProductsFor(b.ID)
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := len(result)
	return paginate(result, opts.Offset, opts.Limit), total, nil
}

func (s *Store) ListPaidProducts(_ context.Context, billID id.BillID) ([]*billing.PaidProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.bills[billID.String()]; !ok {
		return nil, storefront.ErrBillNotFound
	}
	return s.paidProductsFor(billID), nil
}

// paidProductsFor collects a bill's lines. Callers must hold the lock.
func (s *Store) paidProductsFor(billID id.BillID) []*billing.PaidProduct {
	result := make([]*billing.PaidProduct, 0)
	for _, pp := range s.paidProducts {
		if pp.BillID == billID {
			result = append(result, pp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})
	return result
}

func (s *Store) MarkPaidProductFulfilled(_ context.Context, lineID id.PaidProductID, fulfilledAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pp, ok := s.paidProducts[lineID.String()]
	if !ok {
		return storefront.ErrBillNotFound
	}
	pp.FulfilledAt = &fulfilledAt
	pp.Touch()
	return nil
}

func (s *Store) MarkBillPaid(_ context.Context, billID id.BillID, paidAt time.Time, paymentRef string) (*billing.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[billID.String()]
	if !ok {
		return nil, storefront.ErrBillNotFound
	}
	if b.Status != billing.StatusPending {
		return nil, storefront.ErrBillNotPending
	}
	b.Status = billing.StatusPaid
	b.PaidAt = &paidAt
	b.PaymentRef = paymentRef
	b.Touch()

	cp := *b
	cp.PaidProducts = s.paidProductsFor(billID)
	return &cp, nil
}

func (s *Store) MarkBillRefunded(_ context.Context, billID id.BillID, refundedAt time.Time) (*billing.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[billID.String()]
	if !ok {
		return nil, storefront.ErrBillNotFound
	}
	if b.Status != billing.StatusPaid {
		return nil, storefront.ErrBillNotPending
	}
	b.Status = billing.StatusRefunded
	b.RefundedAt = &refundedAt
	b.Touch()

	cp := *b
	cp.PaidProducts = s.paidProductsFor(billID)
	return &cp, nil
}

func (s *Store) ExpireBills(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for _, b := range s.bills {
		if b.Status == billing.StatusPending && b.ExpiresAt.Before(cutoff) {
			b.Status = billing.StatusExpired
			b.Touch()
			expired++
		}
	}
	return expired, nil
}

// Workspace Store implementation

func (s *Store) CreateWorkspace(_ context.Context, ws *workspace.Workspace, roles []*workspace.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workspaces[ws.ID.String()] = ws
	for _, r := range roles {
		s.workspaceRoles[r.ID.String()] = r
	}
	return nil
}

func (s *Store) GetWorkspace(_ context.Context, workspaceID id.WorkspaceID) (*workspace.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ws, ok := s.workspaces[workspaceID.String()]; ok {
		return ws, nil
	}
	return nil, storefront.ErrWorkspaceNotFound
}

func (s *Store) ListWorkspacesByOwner(_ context.Context, ownerID id.UserID) ([]*workspace.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*workspace.Workspace, 0)
	for _, ws := range s.workspaces {
		if ws.OwnerID == ownerID {
			result = append(result, ws)
		}
	}
	return result, nil
}

func (s *Store) ListWorkspaceRoles(_ context.Context, workspaceID id.WorkspaceID) ([]*workspace.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*workspace.Role, 0)
	for _, r := range s.workspaceRoles {
		if r.WorkspaceID == workspaceID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (s *Store) CreatePermission(_ context.Context, p *workspace.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.permissions[p.ID.String()] = p
	return nil
}

func (s *Store) GetPermissionByName(_ context.Context, name string) (*workspace.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.permissions {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, storefront.ErrPermissionNotFound
}

func (s *Store) ListPermissions(_ context.Context) ([]*workspace.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*workspace.Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		result = append(result, p)
	}
	return result, nil
}

func (s *Store) CreateRolePermission(_ context.Context, rp *workspace.RolePermission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rolePermissions[rp.ID.String()] = rp
	return nil
}

func (s *Store) ListRolePermissions(_ context.Context, roleID id.WorkspaceRoleID) ([]*workspace.RolePermission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*workspace.RolePermission, 0)
	for _, rp := range s.rolePermissions {
		if rp.RoleID == roleID {
			result = append(result, rp)
		}
	}
	return result, nil
}

func (s *Store) CreateWorkspaceUserRole(_ context.Context, ur *workspace.UserRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workspaceUserRoles[ur.ID.String()] = ur
	return nil
}

func (s *Store) ListWorkspaceUserRoles(_ context.Context, workspaceID id.WorkspaceID) ([]*workspace.UserRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*workspace.UserRole, 0)
	for _, ur := range s.workspaceUserRoles {
		if ur.WorkspaceID == workspaceID {
			result = append(result, ur)
		}
	}
	return result, nil
}

// Metafile Store implementation

func (s *Store) CreateMetaFile(_ context.Context, f *metafile.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metaFiles[f.ID.String()] = f
	return nil
}

func (s *Store) GetMetaFile(_ context.Context, fileID id.MetaFileID) (*metafile.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f, ok := s.metaFiles[fileID.String()]; ok {
		return f, nil
	}
	return nil, storefront.ErrFileNotFound
}

func (s *Store) ListMetaFiles(_ context.Context, ownerID id.UserID, opts metafile.ListOpts) ([]*metafile.File, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*metafile.File, 0)
	for _, f := range s.metaFiles {
		if f.OwnerID == ownerID {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := len(result)
	return paginate(result, opts.Offset, opts.Limit), total, nil
}

func (s *Store) DeleteMetaFile(_ context.Context, ownerID id.UserID, fileID id.MetaFileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.metaFiles[fileID.String()]
	if !ok || f.OwnerID != ownerID {
		return storefront.ErrFileNotFound
	}
	delete(s.metaFiles, fileID.String())
	return nil
}

// Core methods

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// paginate applies offset/limit the way the SQL stores do.
func paginate[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
