// Package events announces ledger changes to other systems.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// SettlementRecordedMessage is emitted once for every persisted settlement.
type SettlementRecordedMessage struct {
	SettlementID string          `json:"settlement_id"`
	GroupID      string          `json:"group_id"`
	FromUserID   string          `json:"from_user_id"`
	ToUserID     string          `json:"to_user_id"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedBy    string          `json:"created_by,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes.
func (m *SettlementRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SettlementRecordedMessageFromJSON decodes a message published by ToJSON.
func SettlementRecordedMessageFromJSON(data []byte) (*SettlementRecordedMessage, error) {
	var msg SettlementRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Publisher delivers ledger events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishSettlementRecorded(ctx context.Context, msg *SettlementRecordedMessage) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishSettlementRecorded(context.Context, *SettlementRecordedMessage) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
