package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/events"
)

type fakeChannel struct {
	mu        sync.Mutex
	published []amqp.Publishing
	keys      []string
	err       error
	declared  []string
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, "exchange:"+name+":"+kind)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	entry := "queue:" + name
	if dlx, ok := args["x-dead-letter-exchange"]; ok {
		entry += "->" + dlx.(string)
	}
	f.declared = append(f.declared, entry)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, "bind:"+name+":"+key+":"+exchange)
	return nil
}

func TestSetupTopology(t *testing.T) {
	ch := &fakeChannel{}
	require.NoError(t, setupTopology(ch))

	assert.Equal(t, []string{
		"exchange:ex.crm.dlx:direct",
		"queue:q.sales.changed.dlq",
		"bind:q.sales.changed.dlq:k.sales.changed:ex.crm.dlx",
		"exchange:ex.crm:direct",
		"queue:q.sales.changed->ex.crm.dlx",
		"bind:q.sales.changed:k.sales.changed:ex.crm",
	}, ch.declared)
}

func TestProducer_PublishSalesChanged(t *testing.T) {
	ch := &fakeChannel{}
	producer := NewProducer(ch)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	msg := NewSalesChangedMessage(events.SalesChanged{
		Reason: events.ReasonLeadConverted,
		Sale:   &entity.Sale{ID: "sale-1", CustomerID: "cust-1", LeadID: "lead-1", Amount: entity.NewAmount(5000), Status: entity.SaleStatusPending},
	}, at)

	require.NoError(t, producer.PublishSalesChanged(context.Background(), msg))
	require.Len(t, ch.published, 1)

	pub := ch.published[0]
	assert.Equal(t, "ex.crm/k.sales.changed", ch.keys[0])
	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, amqp.Persistent, pub.DeliveryMode)

	var got SalesChangedMessage
	require.NoError(t, json.Unmarshal(pub.Body, &got))
	assert.Equal(t, msg, got)
	assert.JSONEq(t, `{"reason":"lead_converted","sale_id":"sale-1","customer_id":"cust-1","lead_id":"lead-1","status":"Pending","amount":5000.00,"occurred_at":"2026-03-01T12:00:00Z"}`, string(pub.Body))
}

func TestProducer_PublishError(t *testing.T) {
	producer := NewProducer(&fakeChannel{err: amqp.ErrClosed})
	err := producer.PublishSalesChanged(context.Background(), SalesChangedMessage{Reason: events.ReasonSaleDeleted})
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestBridgeSalesChanged(t *testing.T) {
	bus := events.NewBus()
	ch := &fakeChannel{}
	unsubscribe := BridgeSalesChanged(bus, NewProducer(ch), nil)

	bus.EmitSalesChanged(events.SalesChanged{Reason: events.ReasonSaleCreated, Sale: &entity.Sale{ID: "s1"}})
	unsubscribe()
	bus.EmitSalesChanged(events.SalesChanged{Reason: events.ReasonSaleDeleted})

	require.Len(t, ch.published, 1)
	assert.Equal(t, events.ReasonSaleCreated, ch.published[0].Type)
}

type fakeAck struct {
	acked, nacked []uint64
	requeued      []bool
}

func (f *fakeAck) Ack(tag uint64, _ bool) error {
	f.acked = append(f.acked, tag)
	return nil
}

func (f *fakeAck) Nack(tag uint64, _ bool, requeue bool) error {
	f.nacked = append(f.nacked, tag)
	f.requeued = append(f.requeued, requeue)
	return nil
}

func (f *fakeAck) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func TestWorker_Process(t *testing.T) {
	ack := &fakeAck{}
	var handled []string
	handler := HandlerFunc(func(_ context.Context, msg SalesChangedMessage) error {
		if msg.SaleID == "boom" {
			return errors.New("cache down")
		}
		handled = append(handled, msg.SaleID)
		return nil
	})
	w := NewWorker(nil, handler, nil)

	msgs := make(chan amqp.Delivery, 4)
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(`{"reason":"sale_created","sale_id":"s1"}`)}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte(`not json`)}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte(`{"sale_id":"boom"}`)}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 4, Body: []byte(`{"sale_id":"boom"}`), Redelivered: true}
	close(msgs)

	w.Process(context.Background(), msgs)

	assert.Equal(t, []string{"s1"}, handled)
	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Equal(t, []uint64{2, 3, 4}, ack.nacked)
	assert.Equal(t, []bool{false, true, false}, ack.requeued)
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	w := NewWorker(nil, HandlerFunc(func(context.Context, SalesChangedMessage) error { return nil }), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		w.Process(ctx, make(chan amqp.Delivery))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
