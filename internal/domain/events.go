package domain

import "time"

// Event types
const (
	EventTypeAccountCreated        = "account.created"
	EventTypeTransactionAuthorized = "transaction.authorized"
	EventTypeTransactionPresented  = "transaction.presented"
	EventTypeFundsLoaded           = "funds.loaded"
)

// Aggregate types
const (
	AggregateTypeAccount     = "account"
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionEventPayload builds the payload shared by transaction events.
func TransactionEventPayload(tx *Transaction, fee string) map[string]any {
	payload := map[string]any{
		"transaction_id":   tx.TransactionID,
		"sender_id":        tx.SenderID,
		"receiver_id":      tx.ReceiverID,
		"amount":           tx.Amount.StringFixed(AmountPlaces),
		"transaction_type": string(tx.Type),
		"event_at":         tx.CreatedAt.Format(time.RFC3339Nano),
	}
	if fee != "" {
		payload["fee"] = fee
	}
	return payload
}
