package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"feed_notifier/internal/logger"
	"feed_notifier/internal/metrics"
	"feed_notifier/internal/models"
)

// Sender доставляет отформатированное сообщение в чат.
type Sender interface {
	Send(ctx context.Context, chatID, text string) error
}

// Journal сохраняет результат доставки. Может отсутствовать.
type Journal interface {
	RecordDelivery(ctx context.Context, d models.Delivery) error
}

// Worker отправляет сообщения из очереди и фиксирует результат каждой отправки.
type Worker struct {
	sender  Sender
	journal Journal
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewWorker(sender Sender, journal Journal, m *metrics.Metrics) *Worker {
	return &Worker{sender: sender, journal: journal, metrics: m, now: time.Now}
}

// HandleTask разбирает models.Message и отправляет его. Возвращённая ошибка
// означает, что сообщение не доставлено.
func (w *Worker) HandleTask(body []byte) error {
	ctx := context.Background()

	var msg models.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		logger.Log.Errorf("Decode task failed: %v", err)
		return fmt.Errorf("decode message: %w", err)
	}

	log := logger.Log.WithFields(map[string]interface{}{
		"cycle": msg.CycleID,
		"link":  msg.Link,
	})

	sendErr := w.sender.Send(ctx, msg.ChatID, msg.Text)

	delivery := models.Delivery{
		CycleID:     msg.CycleID,
		ChatID:      msg.ChatID,
		Title:       msg.Title,
		Link:        msg.Link,
		Status:      models.DeliverySent,
		DeliveredAt: w.now(),
	}
	if sendErr != nil {
		delivery.Status = models.DeliveryFailed
		delivery.Error = sendErr.Error()
		log.Warnf("Delivery failed: %v", sendErr)
	} else {
		log.Info("Message delivered")
	}

	if w.metrics != nil {
		w.metrics.ObserveDelivery(delivery.Status)
	}
	if w.journal != nil {
		if err := w.journal.RecordDelivery(ctx, delivery); err != nil {
			log.Warnf("Save delivery failed: %v", err)
		}
	}

	return sendErr
}
