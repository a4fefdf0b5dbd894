package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/infrastructure/postgres/generated"
	"github.com/iho/cardledger/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	queries *generated.Queries
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(db generated.DBTX) *TransferRepository {
	return &TransferRepository{queries: generated.New(db)}
}

// CreateBatch inserts ledger entries inside tx.
func (r *TransferRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, transfers []*domain.Transfer) error {
	queries := txQueries(tx)

	for _, t := range transfers {
		err := queries.CreateTransfer(ctx, generated.CreateTransferParams{
			ID:            t.ID,
			AccountID:     t.AccountID,
			TransactionID: t.TransactionID,
			Amount:        decimalToNumeric(t.Amount),
			Presented:     t.Presented,
			Kind:          string(t.Kind),
			CreatedAt:     timeToPgTimestamptz(t.CreatedAt),
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	row, err := r.queries.GetTransferByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, err
	}

	return rowToTransfer(row), nil
}

// List lists transfers, newest first.
func (r *TransferRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transfer, error) {
	rows, err := r.queries.ListTransfers(ctx, generated.ListTransfersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransfers(rows), nil
}

// ListByAccount returns every entry of an account in insertion order.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Transfer, error) {
	rows, err := r.queries.ListTransfersByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return rowsToTransfers(rows), nil
}

// GetByTransactionIDForUpdate locks the entries of a transaction.
func (r *TransferRepository) GetByTransactionIDForUpdate(ctx context.Context, tx usecase.Transaction, transactionID string) ([]*domain.Transfer, error) {
	rows, err := txQueries(tx).GetTransfersByTransactionIDForUpdate(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	return rowsToTransfers(rows), nil
}

// MarkPresented flips the unpresented entries of a transaction.
func (r *TransferRepository) MarkPresented(ctx context.Context, tx usecase.Transaction, transactionID string) (int64, error) {
	return txQueries(tx).MarkTransfersPresented(ctx, transactionID)
}

func rowsToTransfers(rows []generated.Transfer) []*domain.Transfer {
	transfers := make([]*domain.Transfer, 0, len(rows))
	for _, row := range rows {
		transfers = append(transfers, rowToTransfer(row))
	}

	return transfers
}

func rowToTransfer(row generated.Transfer) *domain.Transfer {
	return &domain.Transfer{
		ID:            row.ID,
		AccountID:     row.AccountID,
		TransactionID: row.TransactionID,
		Amount:        numericToDecimal(row.Amount),
		Presented:     row.Presented,
		Kind:          domain.TransferKind(row.Kind),
		CreatedAt:     row.CreatedAt.Time,
	}
}
