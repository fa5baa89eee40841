package queue

import (
	"context"
	"errors"
	"sync"
)

// Memory — очередь в памяти процесса с одним потребителем, поэтому порядок
// сообщений сохраняется.
type Memory struct {
	mu       sync.RWMutex
	ch       chan []byte
	closed   bool
	consumed bool
	done     chan struct{}
}

func NewMemory(size int) *Memory {
	return &Memory{
		ch:   make(chan []byte, size),
		done: make(chan struct{}),
	}
}

func (m *Memory) Publish(ctx context.Context, body []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}

	select {
	case m.ch <- body:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Consume(handler func([]byte) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.consumed {
		return errors.New("memory queue already has a consumer")
	}
	m.consumed = true

	go func() {
		defer close(m.done)
		for body := range m.ch {
			// Результат обработки логирует сам обработчик
			handler(body)
		}
	}()
	return nil
}

// Close перестаёт принимать сообщения и ждёт, пока потребитель обработает
// уже поставленные.
func (m *Memory) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.ch)
	consumed := m.consumed
	m.mu.Unlock()

	if consumed {
		<-m.done
	}
}
