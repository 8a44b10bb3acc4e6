package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/ligue-crm/internal/logger"
)

// SalesChangedHandler reage a uma mensagem consumida (ex: invalidar cache).
type SalesChangedHandler interface {
	HandleSalesChanged(ctx context.Context, msg SalesChangedMessage) error
}

type HandlerFunc func(ctx context.Context, msg SalesChangedMessage) error

func (f HandlerFunc) HandleSalesChanged(ctx context.Context, msg SalesChangedMessage) error {
	return f(ctx, msg)
}

type Worker struct {
	Channel *amqp.Channel
	Handler SalesChangedHandler
	Log     logger.Logger
}

func NewWorker(ch *amqp.Channel, handler SalesChangedHandler, log logger.Logger) *Worker {
	if log == nil {
		log = logger.Nop()
	}
	return &Worker{Channel: ch, Handler: handler, Log: log.With("component", "sales_worker")}
}

// Start registra o consumidor e processa até ctx ser cancelado.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	w.Log.Info("worker consuming", "queue", queueName)
	w.Process(ctx, msgs)
	return nil
}

// Process consome as entregas até o canal fechar ou ctx acabar.
func (w *Worker) Process(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			w.Log.Info("worker stopped")
			return
		case d, ok := <-msgs:
			if !ok {
				w.Log.Warn("delivery channel closed")
				return
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var msg SalesChangedMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		// mensagem malformada vai direto para a DLQ
		w.Log.Error("invalid message", "error", err)
		d.Nack(false, false)
		return
	}

	if err := w.Handler.HandleSalesChanged(ctx, msg); err != nil {
		w.Log.Error("failed to handle sales changed", "reason", msg.Reason, "sale_id", msg.SaleID, "error", err)
		// redelivery só uma vez; depois DLQ
		d.Nack(false, !d.Redelivered)
		return
	}

	d.Ack(false)
}
