package usecase

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
)

func validatorFixture() (*TransactionValidator, ValidationInput) {
	v := NewTransactionValidator(domain.LedgerConfig{
		FeePercent:      decimal.NewFromInt(1),
		MinimumTransfer: decimal.RequireFromString("1.00"),
		IssuerAccountID: "issuer",
	})

	in := ValidationInput{
		Request: SubmitTransactionInput{
			TransactionID: "tx-1",
			SenderID:      "s",
			ReceiverID:    "r",
			Amount:        decimal.RequireFromString("40.00"),
			Type:          domain.TransactionTypeAuthorization,
		},
		Sender:   &domain.Account{ID: "s", AvailableBalance: decimal.RequireFromString("100.00")},
		Receiver: &domain.Account{ID: "r"},
	}

	return v, in
}

func presentmentFixture() (*TransactionValidator, ValidationInput) {
	v, in := validatorFixture()
	in.Request.Type = domain.TransactionTypePresentment
	in.Authorization = &domain.Transaction{
		TransactionID: "tx-1",
		SenderID:      "s",
		ReceiverID:    "r",
		Amount:        decimal.RequireFromString("40.00"),
		Type:          domain.TransactionTypeAuthorization,
	}
	in.Entries = []*domain.Transfer{
		{AccountID: "s", Amount: decimal.RequireFromString("-40.00")},
		{AccountID: "r", Amount: decimal.RequireFromString("39.60")},
		{AccountID: "issuer", Amount: decimal.RequireFromString("0.40")},
	}
	return v, in
}

func TestTransactionValidator_Authorization(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ValidationInput)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(*ValidationInput) {},
		},
		{
			name:   "exactly the available balance",
			mutate: func(in *ValidationInput) { in.Request.Amount = decimal.RequireFromString("100.00") },
		},
		{
			name:    "zero amount",
			mutate:  func(in *ValidationInput) { in.Request.Amount = decimal.Zero },
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "below minimum",
			mutate:  func(in *ValidationInput) { in.Request.Amount = decimal.RequireFromString("0.99") },
			wantErr: domain.ErrAmountTooSmall,
		},
		{
			name:    "unknown type",
			mutate:  func(in *ValidationInput) { in.Request.Type = "chargeback" },
			wantErr: domain.ErrInvalidTransactionType,
		},
		{
			name:    "insufficient funds",
			mutate:  func(in *ValidationInput) { in.Request.Amount = decimal.RequireFromString("100.01") },
			wantErr: domain.ErrInsufficientFunds,
		},
		{
			name:    "sender record differs",
			mutate:  func(in *ValidationInput) { in.Sender = &domain.Account{ID: "x", AvailableBalance: decimal.NewFromInt(100)} },
			wantErr: domain.ErrAccountMismatch,
		},
		{
			name:    "missing receiver",
			mutate:  func(in *ValidationInput) { in.Receiver = nil },
			wantErr: domain.ErrAccountMismatch,
		},
		{
			name: "same account",
			mutate: func(in *ValidationInput) {
				in.Request.ReceiverID = "s"
				in.Receiver = in.Sender
			},
			wantErr: domain.ErrSameAccount,
		},
		{
			name:    "sub-cent amount is not rounded up to the minimum",
			mutate:  func(in *ValidationInput) { in.Request.Amount = decimal.RequireFromString("0.995") },
			wantErr: domain.ErrAmountPrecision,
		},
		{
			name: "amount checked before type",
			mutate: func(in *ValidationInput) {
				in.Request.Amount = decimal.RequireFromString("0.50")
				in.Request.Type = "refund"
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "type checked before funds",
			mutate: func(in *ValidationInput) {
				in.Request.Amount = decimal.NewFromInt(500)
				in.Request.Type = "refund"
			},
			wantErr: domain.ErrInvalidTransactionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, in := validatorFixture()
			tt.mutate(&in)

			err := v.Validate(in)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTransactionValidator_Presentment(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ValidationInput)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(*ValidationInput) {},
		},
		{
			name:    "no authorization",
			mutate:  func(in *ValidationInput) { in.Authorization = nil },
			wantErr: domain.ErrAuthorizationNotFound,
		},
		{
			name:    "authorization of another id",
			mutate:  func(in *ValidationInput) { in.Authorization.TransactionID = "tx-2" },
			wantErr: domain.ErrAuthorizationNotFound,
		},
		{
			name:    "receiver differs from authorization",
			mutate:  func(in *ValidationInput) { in.Authorization.ReceiverID = "other" },
			wantErr: domain.ErrAccountMismatch,
		},
		{
			name:    "amount differs from authorization",
			mutate:  func(in *ValidationInput) { in.Authorization.Amount = decimal.NewFromInt(41) },
			wantErr: domain.ErrAccountMismatch,
		},
		{
			name:    "authorization without entries",
			mutate:  func(in *ValidationInput) { in.Entries = nil },
			wantErr: domain.ErrAuthorizationNotFound,
		},
		{
			name:    "already presented",
			mutate:  func(in *ValidationInput) { in.Entries[1].Presented = true },
			wantErr: domain.ErrAlreadyPresented,
		},
		{
			name: "authorization checked before amount",
			mutate: func(in *ValidationInput) {
				in.Authorization = nil
				in.Request.Amount = decimal.Zero
			},
			wantErr: domain.ErrAuthorizationNotFound,
		},
		{
			name:    "sender must still cover the amount",
			mutate:  func(in *ValidationInput) { in.Sender.AvailableBalance = decimal.NewFromInt(10) },
			wantErr: domain.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, in := presentmentFixture()
			tt.mutate(&in)

			err := v.Validate(in)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
