package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rinodehi1978/resell-trap/internal/lib/sl"
	"github.com/rinodehi1978/resell-trap/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
)

var _ MessageBroker = &RabbitMQ{}

type RabbitMQ struct {
	wg             sync.WaitGroup
	conn           *amqp.Connection
	ch             *amqp.Channel
	eventsQ        amqp.Queue
	checksQ        amqp.Queue
	notificationsQ amqp.Queue
	closed         chan struct{}
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	err = ch.Qos(
		1,     // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	eventsQ, err := declareQueue(ch, "events")
	if err != nil {
		return nil, fmt.Errorf("failed to declare an events queue: %w", err)
	}

	checksQ, err := declareQueue(ch, "checks")
	if err != nil {
		return nil, fmt.Errorf("failed to declare a checks queue: %w", err)
	}

	notificationsQ, err := declareQueue(ch, "notifications")
	if err != nil {
		return nil, fmt.Errorf("failed to declare a notifications queue: %w", err)
	}

	return &RabbitMQ{
		conn:           conn,
		ch:             ch,
		eventsQ:        eventsQ,
		checksQ:        checksQ,
		notificationsQ: notificationsQ,
		closed:         make(chan struct{}),
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,  // name
		false, // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (r *RabbitMQ) ConsumeEvents(ctx context.Context) (<-chan model.WorkerEvent, error) {
	return consumeRoutine[model.WorkerEvent](r, ctx, r.eventsQ.Name)
}

func (r *RabbitMQ) ConsumeChecks(ctx context.Context) (<-chan model.HealthCheck, error) {
	return consumeRoutine[model.HealthCheck](r, ctx, r.checksQ.Name)
}

func (r *RabbitMQ) ConsumeNotifications(ctx context.Context) (<-chan model.Notification, error) {
	return consumeRoutine[model.Notification](r, ctx, r.notificationsQ.Name)
}

func consumeRoutine[T any](r *RabbitMQ, ctx context.Context, queue string) (<-chan T, error) {
	msgs, err := r.consumeMessages(ctx, queue)
	if err != nil {
		return nil, err
	}

	objects := make(chan T)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(objects)
		for msg := range msgs {
			var object T
			if err := json.Unmarshal(msg.Body, &object); err != nil {
				slog.Error("failed to parse message body", sl.Error(err))
				continue
			}
			select {
			case <-r.closed:
				return
			case objects <- object:
			}
		}
	}()

	return objects, nil
}

func (r *RabbitMQ) consumeMessages(
	ctx context.Context,
	queue string,
) (<-chan amqp.Delivery, error) {
	return r.ch.ConsumeWithContext(
		ctx,
		queue, // queue
		"",    // consumer
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
}

func (r *RabbitMQ) PublishEvent(_ context.Context, event model.WorkerEvent) error {
	return r.publish(r.eventsQ.Name, event)
}

func (r *RabbitMQ) PublishCheck(_ context.Context, check model.HealthCheck) error {
	return r.publish(r.checksQ.Name, check)
}

func (r *RabbitMQ) PublishNotification(_ context.Context, notification model.Notification) error {
	return r.publish(r.notificationsQ.Name, notification)
}

func (r *RabbitMQ) publish(queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	}
	return r.ch.Publish("", queue, false, false, msg)
}

func (r *RabbitMQ) Close() {
	defer r.conn.Close()
	defer r.ch.Close()

	close(r.closed)
	r.wg.Wait()
}
