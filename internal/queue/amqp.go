package queue

import (
	"context"

	"feed_notifier/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

func declare(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
}

// Producer публикует сообщения в durable-очередь RabbitMQ.
type Producer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewProducer(url, queueName string) (*Producer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := declare(ch, queueName); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Producer{conn: conn, ch: ch, queue: queueName}, nil
}

func (p *Producer) Publish(ctx context.Context, body []byte) error {
	return p.ch.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key (имя очереди)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
}

func (p *Producer) Close() {
	p.ch.Close()
	p.conn.Close()
}

// AMQPConsumer читает очередь RabbitMQ заданным числом воркеров.
// Для сохранения порядка доставки нужен один воркер.
type AMQPConsumer struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	queue   string
	workers int
}

func NewConsumer(url, queueName string, workers int) (*AMQPConsumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &AMQPConsumer{
		conn:    conn,
		ch:      ch,
		queue:   queueName,
		workers: workers,
	}, nil
}

func (c *AMQPConsumer) Consume(handler func([]byte) error) error {
	q, err := declare(c.ch, c.queue)
	if err != nil {
		return err
	}

	if err := c.ch.Qos(c.workers, 0, false); err != nil {
		return err
	}

	logger.Log.Infof("Consuming queue: %s (messages: %d)", q.Name, q.Messages)

	msgs, err := c.ch.Consume(
		q.Name,
		"",    // consumer
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return err
	}

	for i := 0; i < c.workers; i++ {
		go func() {
			for msg := range msgs {
				if err := handler(msg.Body); err == nil {
					msg.Ack(false)
				} else {
					// без повторной постановки: повтора доставки нет
					msg.Nack(false, false)
				}
			}
		}()
	}
	return nil
}

func (c *AMQPConsumer) Close() {
	c.ch.Close()
	c.conn.Close()
}
