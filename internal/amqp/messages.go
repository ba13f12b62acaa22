package amqp

import (
	"encoding/json"
	"time"
)

// TransactionEventMessage announces one recorded transaction. It is
// intentionally small: consumers re-read the full row from storage, so
// a stale message never overwrites newer data.
type TransactionEventMessage struct {
	OwnerID       int64     `json:"owner_id"`
	TransactionID int64     `json:"transaction_id"`
	Kind          string    `json:"kind"`
	Category      string    `json:"category"`
	AmountCents   int64     `json:"amount_cents"`
	Date          string    `json:"date"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEventMessage(ownerID, transactionID int64, kind, category string, amountCents int64, date, source string) *TransactionEventMessage {
	return &TransactionEventMessage{
		OwnerID:       ownerID,
		TransactionID: transactionID,
		Kind:          kind,
		Category:      category,
		AmountCents:   amountCents,
		Date:          date,
		Source:        source,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
