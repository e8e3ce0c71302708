// Package provider composes the per-entity DAOs of a metadata store into
// atomic multi-entity operations.
//
// Every mutating operation runs inside one store transaction: it either
// commits every change or rolls all of them back and returns the error of
// the step that failed. The provider is written once against
// store.MetadataStore and works unchanged on both backends.
package provider

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ban-nobuhiro/metadata-manager/internal/store"
)

// Provider orchestrates catalog operations on one store.
type Provider struct {
	store  store.MetadataStore
	logger *slog.Logger
}

// New creates a new provider on s.
func New(s store.MetadataStore, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		store:  s,
		logger: logger,
	}
}

// Store returns the underlying metadata store.
func (p *Provider) Store() store.MetadataStore {
	return p.store
}

// transact runs fn inside a transaction. A failing fn rolls the
// transaction back and its error is returned unchanged.
func (p *Provider) transact(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	txID := uuid.NewString()
	logger := p.logger.With("op", op, "tx", txID)

	if err := p.store.StartTransaction(ctx); err != nil {
		logger.Error("failed to start transaction", "error", err)
		return err
	}
	logger.Debug("transaction started")

	if err := fn(ctx); err != nil {
		p.rollback(ctx, logger)
		logger.Debug("transaction rolled back", "error", err)
		return err
	}

	if err := p.store.Commit(ctx); err != nil {
		logger.Error("failed to commit transaction", "error", err)
		return err
	}
	logger.Debug("transaction committed")
	return nil
}

func (p *Provider) rollback(ctx context.Context, logger *slog.Logger) {
	if err := p.store.Rollback(ctx); err != nil {
		logger.Warn("failed to roll back transaction", "error", err)
	}
}
