package unitofwork

import "context"

// RepositoryFactory hands out units of work bound to the shared gorm handle.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
