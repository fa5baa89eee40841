package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"feed_notifier/internal/logger"
	"feed_notifier/internal/metrics"
	"feed_notifier/internal/models"
	"feed_notifier/internal/queue"
	"feed_notifier/internal/worker"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	err  error
	sent []models.Message
}

func (s *fakeSender) Send(_ context.Context, chatID, text string) error {
	s.sent = append(s.sent, models.Message{ChatID: chatID, Text: text})
	return s.err
}

type fakeJournal struct {
	deliveries []models.Delivery
}

func (j *fakeJournal) RecordDelivery(_ context.Context, d models.Delivery) error {
	j.deliveries = append(j.deliveries, d)
	return nil
}

func encode(t *testing.T, msg models.Message) []byte {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

func TestHandleTask_Sent(t *testing.T) {
	sender := &fakeSender{}
	journal := &fakeJournal{}
	m := metrics.New()
	w := worker.NewWorker(sender, journal, m)

	msg := models.Message{CycleID: "c1", ChatID: "42", Text: "<b>x</b>", Title: "x", Link: "https://example.com/x"}
	require.NoError(t, w.HandleTask(encode(t, msg)))

	require.Len(t, sender.sent, 1)
	require.Equal(t, "42", sender.sent[0].ChatID)
	require.Equal(t, "<b>x</b>", sender.sent[0].Text)

	require.Len(t, journal.deliveries, 1)
	require.Equal(t, models.DeliverySent, journal.deliveries[0].Status)
	require.Equal(t, "https://example.com/x", journal.deliveries[0].Link)
	require.Empty(t, journal.deliveries[0].Error)

	require.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("sent")))
}

func TestHandleTask_Failed(t *testing.T) {
	sender := &fakeSender{err: errors.New("chat not found")}
	journal := &fakeJournal{}
	m := metrics.New()
	w := worker.NewWorker(sender, journal, m)

	err := w.HandleTask(encode(t, models.Message{ChatID: "42", Text: "x"}))
	require.Error(t, err)

	require.Len(t, journal.deliveries, 1)
	require.Equal(t, models.DeliveryFailed, journal.deliveries[0].Status)
	require.Equal(t, "chat not found", journal.deliveries[0].Error)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("failed")))
}

func TestHandleTask_FailureLoggedOnceThroughQueue(t *testing.T) {
	hook := logtest.NewLocal(logger.Log)
	defer hook.Reset()

	sender := &fakeSender{err: errors.New("chat not found")}
	w := worker.NewWorker(sender, nil, nil)

	mem := queue.NewMemory(1)
	require.NoError(t, mem.Consume(w.HandleTask))
	require.NoError(t, mem.Publish(context.Background(), encode(t, models.Message{ChatID: "42", Text: "x"})))
	mem.Close()

	require.Len(t, sender.sent, 1)

	var failures int
	for _, e := range hook.AllEntries() {
		require.NotEqual(t, logrus.ErrorLevel, e.Level, e.Message)
		if e.Level == logrus.WarnLevel {
			failures++
		}
	}
	require.Equal(t, 1, failures)
}

func TestHandleTask_BadPayload(t *testing.T) {
	sender := &fakeSender{}
	w := worker.NewWorker(sender, nil, nil)

	require.Error(t, w.HandleTask([]byte("{not json")))
	require.Empty(t, sender.sent)
}
