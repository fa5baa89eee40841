package queue

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("queue closed")

// Publisher принимает сообщения на доставку.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// Consumer передаёт сообщения обработчику. Ошибка обработчика означает, что
// сообщение не доставлено; повторной попытки нет.
type Consumer interface {
	Consume(handler func([]byte) error) error
	Close()
}
