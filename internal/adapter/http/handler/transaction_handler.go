package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cardledger/internal/adapter/http/dto"
	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	SubmitTransaction(ctx context.Context, input usecase.SubmitTransactionInput) (*usecase.TransactionResult, error)
	LoadFunds(ctx context.Context, input usecase.LoadFundsInput) (*usecase.TransactionResult, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, limit, offset int) ([]*domain.Transaction, error)
}

// TransactionHandler handles authorizations, presentments and loads.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// Submit applies an authorization or a presentment. A missing transactionID
// is generated for authorizations; presentments must reference one.
func (h *TransactionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, r, "invalid transaction type", err)
		return
	}

	result, err := h.transactionUC.SubmitTransaction(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "transaction not valid", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionResultFromUseCase(result))
}

// Load adds money to the account in the path.
func (h *TransactionHandler) Load(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.LoadFundsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.transactionUC.LoadFunds(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, r, "failed to load funds", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionResultFromUseCase(result))
}

// Get retrieves a transaction log record by its row ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	transaction, err := h.transactionUC.GetTransaction(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(transaction))
}

// List lists the transaction log, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	transactions, err := h.transactionUC.ListTransactions(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, r, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions))
}
