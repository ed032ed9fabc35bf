package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Storefront store.
var Migrations = migrate.NewGroup("storefront")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_storefront_accounts",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS storefront_users (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    email      TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_storefront_users_email ON storefront_users (email);

CREATE TABLE IF NOT EXISTS storefront_roles (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_storefront_roles_name ON storefront_roles (name);

CREATE TABLE IF NOT EXISTS storefront_user_roles (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL DEFAULT '',
    role_id    TEXT NOT NULL DEFAULT '',
    start_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    end_date   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_storefront_user_roles_user_role ON storefront_user_roles (user_id, role_id);
CREATE INDEX IF NOT EXISTS idx_storefront_user_roles_user ON storefront_user_roles (user_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS storefront_user_roles;
DROP TABLE IF EXISTS storefront_roles;
DROP TABLE IF EXISTS storefront_users;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_storefront_ledger",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS storefront_cash_transactions (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL DEFAULT '',
    type       TEXT NOT NULL DEFAULT '',
    cash_type  TEXT NOT NULL DEFAULT '',
    amount     BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_storefront_cash_txns_user ON storefront_cash_transactions (user_id, cash_type, created_at);

CREATE TABLE IF NOT EXISTS storefront_user_balances (
    balance_key TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL DEFAULT '',
    cash_type   TEXT NOT NULL DEFAULT '',
    balance     BIGINT NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_storefront_balances_user ON storefront_user_balances (user_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS storefront_user_balances;
DROP TABLE IF EXISTS storefront_cash_transactions;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_storefront_catalog",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS storefront_products (
    id                 TEXT PRIMARY KEY,
    name               TEXT NOT NULL DEFAULT '',
    description        TEXT NOT NULL DEFAULT '',
    price_amount_cents BIGINT NOT NULL DEFAULT 0,
    price_currency     TEXT NOT NULL DEFAULT '',
    active             BOOLEAN NOT NULL DEFAULT TRUE,
    credit_amount      BIGINT NOT NULL DEFAULT 0,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_storefront_products_active ON storefront_products (active, created_at);

CREATE TABLE IF NOT EXISTS storefront_tags (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_storefront_tags_name ON storefront_tags (name);

CREATE TABLE IF NOT EXISTS storefront_product_tags (
    id         TEXT PRIMARY KEY,
    product_id TEXT NOT NULL DEFAULT '',
    tag_id     TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_storefront_product_tags_pair ON storefront_product_tags (product_id, tag_id);
CREATE INDEX IF NOT EXISTS idx_storefront_product_tags_product ON storefront_product_tags (product_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS storefront_product_tags;
DROP TABLE IF EXISTS storefront_tags;
DROP TABLE IF EXISTS storefront_products;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_storefront_gateway_catalog",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS storefront_gateway_products (
    id          TEXT PRIMARY KEY,
    external_id TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL DEFAULT '',
    slug        TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_storefront_gw_products_external ON storefront_gateway_products (external_id);

CREATE TABLE IF NOT EXISTS storefront_gateway_variants (
    id                  TEXT PRIMARY KEY,
    external_id         TEXT NOT NULL DEFAULT '',
    external_product_id TEXT NOT NULL DEFAULT '',
    name                TEXT NOT NULL DEFAULT '',
    price_amount_cents  BIGINT NOT NULL DEFAULT 0,
    price_currency      TEXT NOT NULL DEFAULT '',
    interval            TEXT NOT NULL DEFAULT '',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_storefront_gw_variants_external ON storefront_gateway_variants (external_id);
CREATE INDEX IF NOT EXISTS idx_storefront_gw_variants_product ON storefront_gateway_variants (external_product_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS storefront_gateway_variants;
DROP TABLE IF EXISTS storefront_gateway_products;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_storefront_checkout",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS storefront_cart_items (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL DEFAULT '',
    product_id   TEXT NOT NULL DEFAULT '',
    workspace_id TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_storefront_cart_items_user ON storefront_cart_items (user_id, created_at);

CREATE TABLE IF NOT EXISTS storefront_bills (
    id                 TEXT PRIMARY KEY,
    user_id            TEXT NOT NULL DEFAULT '',
    total_amount_cents BIGINT NOT NULL DEFAULT 0,
    total_currency     TEXT NOT NULL DEFAULT '',
    status             TEXT NOT NULL DEFAULT 'pending',
    expires_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    paid_at            TIMESTAMPTZ,
    refunded_at        TIMESTAMPTZ,
    payment_ref        TEXT NOT NULL DEFAULT '',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_storefront_bills_user ON storefront_bills (user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_storefront_bills_expiry ON storefront_bills (status, expires_at);

CREATE TABLE IF NOT EXISTS storefront_paid_products (
    id           TEXT PRIMARY KEY,
    bill_id      TEXT NOT NULL DEFAULT '',
    product_id   TEXT NOT NULL DEFAULT '',
    owner_id     TEXT NOT NULL DEFAULT '',
    workspace_id TEXT NOT NULL DEFAULT '',
    fulfilled_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_storefront_paid_products_bill ON storefront_paid_products (bill_id);
CREATE INDEX IF NOT EXISTS idx_storefront_paid_products_owner ON storefront_paid_products (owner_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS storefront_paid_products;
DROP TABLE IF EXISTS storefront_bills;
DROP TABLE IF EXISTS storefront_cart_items;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_storefront_workspaces",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS storefront_workspaces (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    slug       TEXT NOT NULL DEFAULT '',
    owner_id   TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_storefront_workspaces_owner ON storefront_workspaces (owner_id);

CREATE TABLE IF NOT EXISTS storefront_workspace_roles (
    id           TEXT PRIMARY KEY,
    workspace_id TEXT NOT NULL DEFAULT '',
    name         TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_storefront_ws_roles_name ON storefront_workspace_roles (workspace_id, name);

CREATE TABLE IF NOT EXISTS storefront_workspace_permissions (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_storefront_ws_perms_name ON storefront_workspace_permissions (name);

CREATE TABLE IF NOT EXISTS storefront_workspace_role_permissions (
    id            TEXT PRIMARY KEY,
    role_id       TEXT NOT NULL DEFAULT '',
    permission_id TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_storefront_ws_role_perms_pair ON storefront_workspace_role_permissions (role_id, permission_id);

CREATE TABLE IF NOT EXISTS storefront_workspace_user_roles (
    id           TEXT PRIMARY KEY,
    workspace_id TEXT NOT NULL DEFAULT '',
    user_id      TEXT NOT NULL DEFAULT '',
    role_id      TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_storefront_ws_user_roles_ws ON storefront_workspace_user_roles (workspace_id);
CREATE INDEX IF NOT EXISTS idx_storefront_ws_user_roles_user ON storefront_workspace_user_roles (user_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS storefront_workspace_user_roles;
DROP TABLE IF EXISTS storefront_workspace_role_permissions;
DROP TABLE IF EXISTS storefront_workspace_permissions;
DROP TABLE IF EXISTS storefront_workspace_roles;
DROP TABLE IF EXISTS storefront_workspaces;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_storefront_meta_files",
			Version: "20240101000007",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS storefront_meta_files (
    id           TEXT PRIMARY KEY,
    owner_id     TEXT NOT NULL DEFAULT '',
    name         TEXT NOT NULL DEFAULT '',
    key          TEXT NOT NULL DEFAULT '',
    url          TEXT NOT NULL DEFAULT '',
    size         BIGINT NOT NULL DEFAULT 0,
    content_type TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_storefront_meta_files_owner ON storefront_meta_files (owner_id, created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS storefront_meta_files`)
				return err
			},
		},
	)
}
