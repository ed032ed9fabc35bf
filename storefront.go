package storefront

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/storefront/billing"
	"github.com/xraph/storefront/payment"
	"github.com/xraph/storefront/plugin"
	"github.com/xraph/storefront/storage"
	"github.com/xraph/storefront/store"
)

// Storefront is the main commerce engine. It is constructed explicitly
// with an injected store and collaborators; there is no process-wide
// singleton.
type Storefront struct {
	store    store.Store
	plugins  *plugin.Registry
	logger   *slog.Logger
	gateway  payment.Gateway
	uploader storage.Uploader

	// Background worker
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Configuration
	billExpiry    time.Duration
	sweepInterval time.Duration
	webhookSecret string
	skipMigrate   bool
}

// New creates a new Storefront instance.
func New(s store.Store, opts ...Option) *Storefront {
	sf := &Storefront{
		store:         s,
		plugins:       plugin.NewRegistry(),
		logger:        slog.Default(),
		stopChan:      make(chan struct{}),
		billExpiry:    billing.DefaultExpiry,
		sweepInterval: time.Minute,
	}

	for _, opt := range opts {
		opt(sf)
	}

	return sf
}

// Option configures a Storefront instance.
type Option func(*Storefront)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sf *Storefront) {
		sf.logger = logger
		sf.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(sf *Storefront) {
		_ = sf.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithGateway sets the payment gateway collaborator.
func WithGateway(g payment.Gateway) Option {
	return func(sf *Storefront) {
		sf.gateway = g
	}
}

// WithUploader sets the object storage collaborator.
func WithUploader(u storage.Uploader) Option {
	return func(sf *Storefront) {
		sf.uploader = u
	}
}

// WithBillExpiry sets how long pending bills stay payable.
func WithBillExpiry(d time.Duration) Option {
	return func(sf *Storefront) {
		sf.billExpiry = d
	}
}

// WithSweepInterval sets how often overdue pending bills are expired.
// Zero disables the sweep.
func WithSweepInterval(d time.Duration) Option {
	return func(sf *Storefront) {
		sf.sweepInterval = d
	}
}

// WithWebhookSecret sets the shared secret for webhook signature
// verification. Unsigned payloads are accepted when empty.
func WithWebhookSecret(secret string) Option {
	return func(sf *Storefront) {
		sf.webhookSecret = secret
	}
}

// WithoutMigrate skips store migration on Start. Use when the schema is
// managed out of band; plugin initialization and the expiry sweep still
// run.
func WithoutMigrate() Option {
	return func(sf *Storefront) {
		sf.skipMigrate = true
	}
}

// Start migrates the store, initializes plugins, and begins the bill
// expiry sweep.
func (sf *Storefront) Start(ctx context.Context) error {
	if !sf.skipMigrate {
		if err := sf.store.Migrate(ctx); err != nil {
			return err
		}
	}

	// A gateway plugin can supply the collaborator when none was set
	// programmatically.
	if sf.gateway == nil {
		for _, gp := range sf.plugins.GetGateways() {
			if g, ok := gp.Gateway().(payment.Gateway); ok {
				sf.gateway = g
				break
			}
		}
	}

	sf.plugins.EmitInit(ctx, sf)

	if sf.sweepInterval > 0 {
		sf.wg.Add(1)
		go sf.expirySweepWorker(ctx)
	}

	sf.logger.Info("storefront started",
		"bill_expiry", sf.billExpiry,
		"sweep_interval", sf.sweepInterval,
		"gateway_configured", sf.gateway != nil,
	)

	return nil
}

// Stop shuts down the Storefront.
func (sf *Storefront) Stop() error {
	close(sf.stopChan)
	sf.wg.Wait()

	ctx := context.Background()
	sf.plugins.EmitShutdown(ctx)

	return sf.store.Close()
}

// expirySweepWorker marks overdue pending bills expired on a ticker.
func (sf *Storefront) expirySweepWorker(ctx context.Context) {
	defer sf.wg.Done()

	ticker := time.NewTicker(sf.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sf.stopChan:
			return
		case <-ticker.C:
			sf.sweepExpiredBills(ctx)
		}
	}
}

func (sf *Storefront) sweepExpiredBills(ctx context.Context) {
	start := time.Now()

	count, err := sf.store.ExpireBills(ctx, time.Now().UTC())
	if err != nil {
		sf.logger.Error("failed to expire bills",
			"error", err,
		)
		return
	}
	if count == 0 {
		return
	}

	elapsed := time.Since(start)
	sf.plugins.EmitBillsExpired(ctx, count, elapsed)

	sf.logger.Debug("expired overdue bills",
		"count", count,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}
