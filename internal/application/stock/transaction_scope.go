package stock

import (
	"context"

	"github.com/stockplan/backend/internal/domain/stock"
)

// TransactionScope runs a function with repositories bound to one database
// transaction. Returning an error rolls everything back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories sharing a transaction.
type TransactionalRepositories interface {
	TransferRepo() stock.TransferRepository
	LedgerRepo() stock.LedgerRepository
}

// NoOpTransactionScope calls the function directly with non-transactional
// repositories. Used in tests.
type NoOpTransactionScope struct {
	transferRepo stock.TransferRepository
	ledgerRepo   stock.LedgerRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(transferRepo stock.TransferRepository, ledgerRepo stock.LedgerRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{transferRepo: transferRepo, ledgerRepo: ledgerRepo}
}

// Execute runs fn without a transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) TransferRepo() stock.TransferRepository { return s.transferRepo }
func (s *NoOpTransactionScope) LedgerRepo() stock.LedgerRepository     { return s.ledgerRepo }
