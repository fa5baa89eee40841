package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"feed_notifier/internal/logger"
	"feed_notifier/internal/metrics"
	"feed_notifier/internal/models"
	"feed_notifier/internal/queue"
	"feed_notifier/internal/render"

	"github.com/google/uuid"
)

// FeedFetcher возвращает записи ленты от новых к старым.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]models.Item, error)
}

// Replier отправляет текстовое уведомление в чат, запустивший опрос.
type Replier interface {
	Reply(ctx context.Context, text string) error
}

type Options struct {
	FeedURL        string
	ChatID         string
	Period         time.Duration
	FailureMessage string

	// Now и After подменяются в тестах; по умолчанию time.Now и time.After.
	Now   func() time.Time
	After func(time.Duration) <-chan time.Time
}

// Poller раз в период загружает ленту и ставит новые записи в очередь доставки.
// Следующий цикл планируется только после завершения текущего.
type Poller struct {
	fetcher   FeedFetcher
	renderer  *render.Renderer
	publisher queue.Publisher
	metrics   *metrics.Metrics
	opts      Options

	mu      sync.Mutex
	running bool
}

func NewPoller(f FeedFetcher, r *render.Renderer, p queue.Publisher, m *metrics.Metrics, opts Options) *Poller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.After == nil {
		opts.After = time.After
	}
	return &Poller{fetcher: f, renderer: r, publisher: p, metrics: m, opts: opts}
}

// Start запускает Run в отдельной горутине. Повторный вызов, пока опрос
// идёт, ничего не делает и возвращает false.
func (p *Poller) Start(ctx context.Context, replier Replier) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return false
	}
	p.running = true

	go func() {
		defer func() {
			p.mu.Lock()
			p.running = false
			p.mu.Unlock()
		}()
		p.Run(ctx, replier)
	}()
	return true
}

// Run выполняет циклы до отмены ctx. Ошибка цикла не останавливает опрос.
func (p *Poller) Run(ctx context.Context, replier Replier) {
	log := logger.Log.WithFields(map[string]interface{}{
		"service":  "poller",
		"interval": p.opts.Period.String(),
	})
	log.Info("Poller started")

	for {
		if _, err := p.Cycle(ctx, replier); err != nil {
			log.Debugf("Cycle finished with error: %v", err)
		}

		select {
		case <-p.opts.After(p.opts.Period):

		case <-ctx.Done():
			log.Info("Stopping poller by context")
			return
		}
	}
}

// Cycle загружает ленту, выбирает записи не старше одного периода и ставит
// их в очередь. Возвращает число поставленных сообщений.
func (p *Poller) Cycle(ctx context.Context, replier Replier) (int, error) {
	cycleID := uuid.NewString()
	log := logger.Log.WithFields(map[string]interface{}{
		"cycle": cycleID,
		"url":   p.opts.FeedURL,
	})

	started := p.opts.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.Cycles.Inc()
			p.metrics.CycleDuration.Observe(p.opts.Now().Sub(started).Seconds())
		}
	}()

	log.Debug("Fetching feed")
	items, err := p.fetcher.Fetch(ctx, p.opts.FeedURL)
	if err != nil {
		log.Errorf("Failed to fetch feed: %v", err)
		if p.metrics != nil {
			p.metrics.FetchErrors.Inc()
		}
		if rerr := replier.Reply(ctx, p.opts.FailureMessage); rerr != nil {
			log.Warnf("Failed to send failure notice: %v", rerr)
		}
		return 0, err
	}

	cutoff := Cutoff(p.opts.Now(), p.opts.Period)
	fresh := SelectNew(items, cutoff)
	log = log.WithField("items_count", len(items))
	log.Infof("Selected %d new items", len(fresh))
	if p.metrics != nil {
		p.metrics.SelectedItems.Add(float64(len(fresh)))
	}

	for i, item := range fresh {
		body, err := json.Marshal(models.Message{
			CycleID: cycleID,
			ChatID:  p.opts.ChatID,
			Text:    p.renderer.Render(item),
			Title:   item.Title,
			Link:    item.Link,
		})
		if err != nil {
			return i, fmt.Errorf("encode message: %w", err)
		}
		if err := p.publisher.Publish(ctx, body); err != nil {
			log.Errorf("Failed to enqueue item %q: %v", item.Link, err)
			return i, fmt.Errorf("enqueue message: %w", err)
		}
	}
	return len(fresh), nil
}
