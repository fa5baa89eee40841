package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"feed_notifier/internal/models"

	"github.com/mmcdole/gofeed"
)

const userAgent = "feed_notifier/1.0"

// FetchError означает, что лента недоступна или не разбирается.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher загружает RSS/Atom по HTTP и разбирает его через gofeed.
type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
}

// NewFetcher создаёт загрузчик. Нулевой timeout означает отсутствие таймаута.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
	}
}

// Fetch возвращает записи ленты в том порядке, в котором они идут в документе.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]models.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	items := make([]models.Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		items = append(items, convertItem(feed.FeedType, it))
	}
	return items, nil
}

// convertItem берёт тело записи: в RSS это description, в Atom сначала
// content, потом summary.
func convertItem(feedType string, it *gofeed.Item) models.Item {
	content := it.Description
	if content == "" || (feedType == "atom" && it.Content != "") {
		content = it.Content
	}

	var pubDate time.Time
	switch {
	case it.PublishedParsed != nil:
		pubDate = *it.PublishedParsed
	case it.UpdatedParsed != nil:
		pubDate = *it.UpdatedParsed
	}

	return models.Item{
		GUID:    it.GUID,
		Title:   it.Title,
		Link:    it.Link,
		Content: content,
		PubDate: pubDate,
	}
}
