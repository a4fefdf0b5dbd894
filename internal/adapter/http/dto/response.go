package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID               string          `json:"accountID"`
	Name             string          `json:"accountName"`
	LedgerBalance    decimal.Decimal `json:"ledgerBalance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:               a.ID,
		Name:             a.Name,
		LedgerBalance:    a.LedgerBalance,
		AvailableBalance: a.AvailableBalance,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse is a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TransactionResponse is a transaction log record.
type TransactionResponse struct {
	ID              string          `json:"id"`
	TransactionID   string          `json:"transactionID"`
	SenderID        string          `json:"senderID"`
	ReceiverID      string          `json:"receiverID"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transactionType"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		TransactionID:   t.TransactionID,
		SenderID:        t.SenderID,
		ReceiverID:      t.ReceiverID,
		Amount:          t.Amount,
		TransactionType: string(t.Type),
		CreatedAt:       t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// TransactionResultResponse is returned by submit and load.
type TransactionResultResponse struct {
	*TransactionResponse
	Fee       decimal.Decimal     `json:"fee"`
	Transfers []*TransferResponse `json:"transfers"`
}

// TransactionResultFromUseCase converts an engine result to response.
func TransactionResultFromUseCase(r *usecase.TransactionResult) *TransactionResultResponse {
	return &TransactionResultResponse{
		TransactionResponse: TransactionFromDomain(r.Transaction),
		Fee:                 r.Fee,
		Transfers:           TransfersFromDomain(r.Transfers),
	}
}

// TransferResponse represents a ledger entry in API responses.
type TransferResponse struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"accountID"`
	TransactionID string          `json:"transactionID"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          string          `json:"kind"`
	Presented     bool            `json:"presented"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:            t.ID,
		AccountID:     t.AccountID,
		TransactionID: t.TransactionID,
		Amount:        t.Amount,
		Kind:          string(t.Kind),
		Presented:     t.Presented,
		CreatedAt:     t.CreatedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// AccountTransfersResponse is an account with all of its entries. The
// balances are the stored ones; the derived ones come from the entries.
type AccountTransfersResponse struct {
	AccountID         string              `json:"accountID"`
	AccountName       string              `json:"accountName"`
	LedgerBalance     decimal.Decimal     `json:"ledgerBalance"`
	AvailableBalance  decimal.Decimal     `json:"availableBalance"`
	DerivedLedger     decimal.Decimal     `json:"derivedLedgerBalance"`
	DerivedAvailable  decimal.Decimal     `json:"derivedAvailableBalance"`
	PendingCredits    decimal.Decimal     `json:"pendingCredits"`
	BalancesReconcile bool                `json:"balancesReconcile"`
	Transfers         []*TransferResponse `json:"transfers"`
}

// AccountTransfersFromUseCase converts the aggregated view to response.
func AccountTransfersFromUseCase(at *usecase.AccountTransfers) *AccountTransfersResponse {
	return &AccountTransfersResponse{
		AccountID:         at.Account.ID,
		AccountName:       at.Account.Name,
		LedgerBalance:     at.Account.LedgerBalance,
		AvailableBalance:  at.Account.AvailableBalance,
		DerivedLedger:     at.Balances.Ledger,
		DerivedAvailable:  at.Balances.Available,
		PendingCredits:    at.Balances.PendingCredits,
		BalancesReconcile: at.Balances.Matches(at.Account),
		Transfers:         TransfersFromDomain(at.Transfers),
	}
}

// ReconciliationResponse compares stored and derived balances of an account.
type ReconciliationResponse struct {
	AccountID           string          `json:"accountID"`
	RecordedLedger      decimal.Decimal `json:"recordedLedgerBalance"`
	RecordedAvailable   decimal.Decimal `json:"recordedAvailableBalance"`
	CalculatedLedger    decimal.Decimal `json:"calculatedLedgerBalance"`
	CalculatedAvailable decimal.Decimal `json:"calculatedAvailableBalance"`
	LedgerDifference    decimal.Decimal `json:"ledgerDifference"`
	AvailableDifference decimal.Decimal `json:"availableDifference"`
	IsReconciled        bool            `json:"isReconciled"`
	LastChecked         time.Time       `json:"lastChecked"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:           r.AccountID,
		RecordedLedger:      r.RecordedLedger,
		RecordedAvailable:   r.RecordedAvailable,
		CalculatedLedger:    r.CalculatedLedger,
		CalculatedAvailable: r.CalculatedAvailable,
		LedgerDifference:    r.LedgerDifference,
		AvailableDifference: r.AvailableDifference,
		IsReconciled:        r.IsReconciled,
		LastChecked:         r.LastChecked,
	}
}

// ImbalanceResponse is a transaction whose entries do not sum to zero.
type ImbalanceResponse struct {
	TransactionID string          `json:"transactionID"`
	Sum           decimal.Decimal `json:"sum"`
}

func imbalancesFromDomain(in []domain.LedgerImbalance) []ImbalanceResponse {
	out := make([]ImbalanceResponse, len(in))
	for i, im := range in {
		out[i] = ImbalanceResponse{TransactionID: im.TransactionID, Sum: im.Sum}
	}
	return out
}

// ConsistencyResponse is the outcome of a double-entry check.
type ConsistencyResponse struct {
	Status     string              `json:"status"`
	Consistent bool                `json:"consistent"`
	Unbalanced []ImbalanceResponse `json:"unbalanced"`
	CheckedAt  time.Time           `json:"checkedAt"`
}

// ConsistencyFromUseCase converts a consistency result to response.
func ConsistencyFromUseCase(r *usecase.ConsistencyResult) *ConsistencyResponse {
	status := "consistent"
	if !r.Consistent {
		status = "inconsistent"
	}
	return &ConsistencyResponse{
		Status:     status,
		Consistent: r.Consistent,
		Unbalanced: imbalancesFromDomain(r.Unbalanced),
		CheckedAt:  r.CheckedAt,
	}
}

// ReconciliationReportResponse is a ledger wide reconciliation report.
type ReconciliationReportResponse struct {
	TotalAccounts          int                       `json:"totalAccounts"`
	ReconciledAccounts     int                       `json:"reconciledAccounts"`
	Discrepancies          []*ReconciliationResponse `json:"discrepancies"`
	LedgerConsistent       bool                      `json:"ledgerConsistent"`
	UnbalancedTransactions []ImbalanceResponse       `json:"unbalancedTransactions"`
	CheckedAt              time.Time                 `json:"checkedAt"`
}

// ReportFromUseCase converts a reconciliation report to response.
func ReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}
	return &ReconciliationReportResponse{
		TotalAccounts:          r.TotalAccounts,
		ReconciledAccounts:     r.ReconciledAccounts,
		Discrepancies:          discrepancies,
		LedgerConsistent:       r.LedgerConsistent,
		UnbalancedTransactions: imbalancesFromDomain(r.UnbalancedTransactions),
		CheckedAt:              r.CheckedAt,
	}
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}
