package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ls-leads/internal/infra/logger"
)

// AssignmentNotifier avisa o novo responsável (e-mail, por exemplo).
type AssignmentNotifier interface {
	NotifyAssignment(ctx context.Context, payload LeadAssignedPayload) error
}

// Consumer é o subconjunto de *amqp.Channel usado pelo worker.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  Consumer
	Notifier AssignmentNotifier
	Log      logger.Logger
}

func NewWorker(ch Consumer, notifier AssignmentNotifier, log logger.Logger) *Worker {
	return &Worker{Channel: ch, Notifier: notifier, Log: log}
}

// Start consome a fila até o contexto ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual é mais seguro)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Log.WithField("queue", queueName).Info("assignment worker aguardando mensagens")

	for {
		select {
		case <-ctx.Done():
			w.Log.Info("assignment worker encerrado")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

// delivery permite testar o ack/nack sem um broker.
type delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	w.process(ctx, d.Body, d)
}

func (w *Worker) process(ctx context.Context, body []byte, d delivery) {
	var payload LeadAssignedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		w.Log.WithField("error", err.Error()).Error("payload inválido, descartando")
		// Mensagem malformada: rejeita sem requeue para não travar a fila.
		d.Nack(false, false)
		return
	}

	log := w.Log.WithFields(map[string]interface{}{
		"lead_id":        payload.LeadID,
		"responsavel_id": payload.ResponsavelID,
	})

	if err := w.Notifier.NotifyAssignment(ctx, payload); err != nil {
		log.WithField("error", err.Error()).Error("falha ao notificar responsável")
		d.Nack(false, false)
		return
	}

	log.Info("responsável notificado")
	d.Ack(false)
}
