package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/infrastructure/postgres/generated"
	"github.com/iho/cardledger/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create appends a record to the transaction log. A transaction ID already
// used by an authorization or load can only be reused by one presentment;
// anything else fails with domain.ErrDuplicateTransaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
	err := txQueries(tx).CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:              transaction.ID,
		TransactionID:   transaction.TransactionID,
		SenderID:        transaction.SenderID,
		ReceiverID:      transaction.ReceiverID,
		Amount:          decimalToNumeric(transaction.Amount),
		TransactionType: string(transaction.Type),
		CreatedAt:       timeToPgTimestamptz(transaction.CreatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrDuplicateTransaction
	}

	return err
}

// GetByID retrieves a transaction log row by its row ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// FindByTransactionID looks up the record of txType for a client token.
func (r *TransactionRepository) FindByTransactionID(ctx context.Context, tx usecase.Transaction, transactionID string, txType domain.TransactionType) (*domain.Transaction, error) {
	row, err := txQueries(tx).GetTransactionByTransactionID(ctx, generated.GetTransactionByTransactionIDParams{
		TransactionID:   transactionID,
		TransactionType: string(txType),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// List lists transactions, newest first.
func (r *TransactionRepository) List(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, generated.ListTransactionsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	transactions := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, rowToTransaction(row))
	}

	return transactions, nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:            row.ID,
		TransactionID: row.TransactionID,
		SenderID:      row.SenderID,
		ReceiverID:    row.ReceiverID,
		Amount:        numericToDecimal(row.Amount),
		Type:          domain.TransactionType(row.TransactionType),
		CreatedAt:     row.CreatedAt.Time,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}
