package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/adapter/http/dto"
	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/usecase"
)

type transactionServiceStub struct {
	submitFn func(ctx context.Context, input usecase.SubmitTransactionInput) (*usecase.TransactionResult, error)
	loadFn   func(ctx context.Context, input usecase.LoadFundsInput) (*usecase.TransactionResult, error)
	getFn    func(ctx context.Context, id string) (*domain.Transaction, error)
	listFn   func(ctx context.Context, limit, offset int) ([]*domain.Transaction, error)
}

func (s *transactionServiceStub) SubmitTransaction(ctx context.Context, input usecase.SubmitTransactionInput) (*usecase.TransactionResult, error) {
	return s.submitFn(ctx, input)
}

func (s *transactionServiceStub) LoadFunds(ctx context.Context, input usecase.LoadFundsInput) (*usecase.TransactionResult, error) {
	return s.loadFn(ctx, input)
}

func (s *transactionServiceStub) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.getFn(ctx, id)
}

func (s *transactionServiceStub) ListTransactions(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	return s.listFn(ctx, limit, offset)
}

func authorizationResult(input usecase.SubmitTransactionInput) *usecase.TransactionResult {
	return &usecase.TransactionResult{
		Transaction: &domain.Transaction{
			ID:            "row-1",
			TransactionID: input.TransactionID,
			SenderID:      input.SenderID,
			ReceiverID:    input.ReceiverID,
			Amount:        input.Amount,
			Type:          input.Type,
		},
		Fee: decimal.RequireFromString("0.40"),
	}
}

func TestTransactionHandler_Submit_Success(t *testing.T) {
	var captured usecase.SubmitTransactionInput
	handler := NewTransactionHandler(&transactionServiceStub{
		submitFn: func(ctx context.Context, input usecase.SubmitTransactionInput) (*usecase.TransactionResult, error) {
			captured = input
			if input.TransactionID == "" {
				input.TransactionID = "generated"
			}
			return authorizationResult(input), nil
		},
	})

	body := `{"senderID":"s","receiverID":"r","amount":40,"transactionType":"authorization"}`
	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Type != domain.TransactionTypeAuthorization || !captured.Amount.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.TransactionResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TransactionID != "generated" || !resp.Fee.Equal(decimal.RequireFromString("0.40")) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTransactionHandler_Submit_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantKind   domain.ErrorKind
	}{
		{
			name:       "malformed body",
			body:       `{"amount":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown type",
			body:       `{"senderID":"s","receiverID":"r","amount":"5","transactionType":"refund"}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   domain.KindInvalidType,
		},
		{
			name:       "insufficient funds",
			body:       `{"senderID":"s","receiverID":"r","amount":"500","transactionType":"authorization"}`,
			serviceErr: domain.ErrInsufficientFunds,
			wantStatus: http.StatusForbidden,
			wantKind:   domain.KindInsufficientFunds,
		},
		{
			name:       "presentment without authorization",
			body:       `{"transactionID":"nope","senderID":"s","receiverID":"r","amount":"5","transactionType":"presentment"}`,
			serviceErr: domain.ErrAuthorizationNotFound,
			wantStatus: http.StatusForbidden,
			wantKind:   domain.KindMismatch,
		},
		{
			name:       "duplicate id",
			body:       `{"transactionID":"tx-1","senderID":"s","receiverID":"r","amount":"5","transactionType":"authorization"}`,
			serviceErr: domain.ErrDuplicateTransaction,
			wantStatus: http.StatusConflict,
			wantKind:   domain.KindDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransactionHandler(&transactionServiceStub{
				submitFn: func(ctx context.Context, input usecase.SubmitTransactionInput) (*usecase.TransactionResult, error) {
					if tt.serviceErr == nil {
						t.Fatal("SubmitTransaction should not be called")
					}
					return nil, tt.serviceErr
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler.Submit(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			var resp dto.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if tt.wantKind != "" && resp.Kind != string(tt.wantKind) {
				t.Fatalf("expected kind %s, got %s", tt.wantKind, resp.Kind)
			}
		})
	}
}

func TestTransactionHandler_Load(t *testing.T) {
	var captured usecase.LoadFundsInput
	handler := NewTransactionHandler(&transactionServiceStub{
		loadFn: func(ctx context.Context, input usecase.LoadFundsInput) (*usecase.TransactionResult, error) {
			captured = input
			return &usecase.TransactionResult{
				Transaction: &domain.Transaction{
					TransactionID: "load-1",
					SenderID:      input.AccountID,
					ReceiverID:    input.AccountID,
					Amount:        input.Amount,
					Type:          domain.TransactionTypeLoad,
				},
				Fee: decimal.Zero,
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/accounts/acc-1/load", bytes.NewBufferString(`{"amount":"150.00"}`))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Load(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AccountID != "acc-1" || !captured.Amount.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("unexpected load input: %+v", captured)
	}
}

func TestTransactionHandler_Load_InvalidAmount(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		loadFn: func(ctx context.Context, input usecase.LoadFundsInput) (*usecase.TransactionResult, error) {
			return nil, domain.ErrInvalidAmount
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/load", bytes.NewBufferString(`{"amount":"-1"}`))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Load(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransactionHandler_GetAndList(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Transaction, error) {
			if id == "missing" {
				return nil, domain.ErrTransactionNotFound
			}
			return &domain.Transaction{ID: id, Type: domain.TransactionTypeLoad}, nil
		},
		listFn: func(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
			if limit != 3 || offset != 6 {
				t.Fatalf("expected limit=3 offset=6, got %d/%d", limit, offset)
			}
			return []*domain.Transaction{{ID: "a"}, {ID: "b"}}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Get(rec, setChiURLParam(httptest.NewRequest(http.MethodGet, "/transactions/row-1", nil), "id", "row-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Get(rec, setChiURLParam(httptest.NewRequest(http.MethodGet, "/transactions/missing", nil), "id", "missing"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/transactions?limit=3&offset=6", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || len(resp) != 2 {
		t.Fatalf("unexpected list response %s (%v)", rec.Body.String(), err)
	}
}
