package unitofwork

import (
	"context"

	"ai-recommendation-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CatalogItemRepository() contract.CatalogItemRepository
	SessionContextRepository() contract.SessionContextRepository
	InteractionRepository() contract.InteractionRepository
}
