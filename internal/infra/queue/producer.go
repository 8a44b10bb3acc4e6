package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/events"
	"github.com/xavierca1/ligue-crm/internal/logger"
)

// SalesChangedMessage é o corpo JSON publicado em k.sales.changed.
type SalesChangedMessage struct {
	Reason     string            `json:"reason"`
	SaleID     string            `json:"sale_id,omitempty"`
	CustomerID string            `json:"customer_id,omitempty"`
	LeadID     string            `json:"lead_id,omitempty"`
	Status     entity.SaleStatus `json:"status,omitempty"`
	Amount     entity.Amount     `json:"amount"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func NewSalesChangedMessage(evt events.SalesChanged, now time.Time) SalesChangedMessage {
	msg := SalesChangedMessage{Reason: evt.Reason, OccurredAt: now}
	if s := evt.Sale; s != nil {
		msg.SaleID = s.ID
		msg.CustomerID = s.CustomerID
		msg.LeadID = s.LeadID
		msg.Status = s.Status
		msg.Amount = s.Amount
	}
	return msg
}

type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type QueueProducerInterface interface {
	PublishSalesChanged(ctx context.Context, msg SalesChangedMessage) error
}

type RabbitMQProducer struct {
	Ch amqpPublisher
}

func NewProducer(ch amqpPublisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishSalesChanged(ctx context.Context, msg SalesChangedMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    msg.OccurredAt,
			Type:         msg.Reason,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %w", err)
	}
	return nil
}

const publishTimeout = 5 * time.Second

// BridgeSalesChanged republica no RabbitMQ cada evento do bus local.
// Falha de publicação é só logada; o evento local já foi entregue.
func BridgeSalesChanged(bus *events.Bus, producer QueueProducerInterface, log logger.Logger) (unsubscribe func()) {
	if log == nil {
		log = logger.Nop()
	}
	return bus.OnSalesChanged(func(evt events.SalesChanged) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		msg := NewSalesChangedMessage(evt, time.Now().UTC())
		if err := producer.PublishSalesChanged(ctx, msg); err != nil {
			log.Warn("failed to publish sales changed", "reason", evt.Reason, "sale_id", msg.SaleID, "error", err)
		}
	})
}
