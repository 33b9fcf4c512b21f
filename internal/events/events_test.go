package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange, key string
	published     []amqp091.Publishing
	err           error
	closed        bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange, f.key = exchange, key
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func testMessage() *SettlementRecordedMessage {
	return &SettlementRecordedMessage{
		SettlementID: "s1",
		GroupID:      "g1",
		FromUserID:   "bob",
		ToUserID:     "alice",
		Amount:       decimal.RequireFromString("12.50"),
		Timestamp:    time.Unix(1700000000, 0).UTC(),
	}
}

func TestSettlementRecordedMessage_JSON(t *testing.T) {
	body, err := testMessage().ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"amount":"12.5"`)
	assert.NotContains(t, string(body), "created_by")

	decoded, err := SettlementRecordedMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, "bob", decoded.FromUserID)
	assert.True(t, decoded.Amount.Equal(decimal.RequireFromString("12.5")))

	_, err = SettlementRecordedMessageFromJSON([]byte("{"))
	assert.Error(t, err)
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{channel: ch, exchange: "settleup", routingKey: "settlement.recorded"}

	require.NoError(t, p.PublishSettlementRecorded(context.Background(), testMessage()))
	require.Len(t, ch.published, 1)
	assert.Equal(t, "settleup", ch.exchange)
	assert.Equal(t, "settlement.recorded", ch.key)

	msg := ch.published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)
	assert.Equal(t, "s1", msg.MessageId)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &AMQPPublisher{channel: ch, exchange: "settleup", routingKey: "settlement.recorded"}

	err := p.PublishSettlementRecorded(context.Background(), testMessage())
	assert.ErrorContains(t, err, "publish message")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishSettlementRecorded(context.Background(), testMessage()))
	assert.NoError(t, p.Close())
}
