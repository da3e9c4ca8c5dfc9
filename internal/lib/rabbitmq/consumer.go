package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
)

// ErrPermanent помечает ошибку, после которой сообщение нельзя обработать
// повторно. Такое сообщение удаляется из очереди без возврата.
var ErrPermanent = errors.New("permanent message failure")

// Handler обрабатывает тело сообщения. Ошибка возвращает сообщение в очередь,
// если она не оборачивает ErrPermanent.
type Handler func(ctx context.Context, body []byte) error

// acknowledger подтверждает или отклоняет доставку.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// ConsumerMessage запускает чтение очереди queueName. Одновременно
// обрабатывается не больше 10 сообщений; чтение прекращается с отменой ctx.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler Handler) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("queue", queueName))
	sem := make(chan struct{}, 10)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					if nackErr := d.Nack(false, true); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				go func(delivery amqp.Delivery) {
					defer func() { <-sem }()
					process(ctx, log, delivery, delivery.Body, handler)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func process(ctx context.Context, log *slog.Logger, d acknowledger, body []byte, handler Handler) {
	err := handler(ctx, body)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
	case errors.Is(err, ErrPermanent):
		log.Error("handler rejected message, message dropped", sl.Err(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	default:
		log.Warn("handler failed, message requeued", sl.Err(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
	}
}
