package postgres

import (
	"context"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// UnbalancedTransactions returns double-entry transactions whose entries
// do not sum to zero. Loads are external and never reported.
func (r *LedgerRepository) UnbalancedTransactions(ctx context.Context) ([]domain.LedgerImbalance, error) {
	rows, err := r.queries.ListUnbalancedTransactions(ctx)
	if err != nil {
		return nil, err
	}

	imbalances := make([]domain.LedgerImbalance, 0, len(rows))
	for _, row := range rows {
		imbalances = append(imbalances, domain.LedgerImbalance{
			TransactionID: row.TransactionID,
			Sum:           numericToDecimal(row.Total),
		})
	}

	return imbalances, nil
}
