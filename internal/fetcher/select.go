package fetcher

import (
	"time"

	"feed_notifier/internal/models"
)

// Cutoff возвращает самое раннее время публикации, которое ещё считается новым.
func Cutoff(now time.Time, period time.Duration) time.Time {
	return now.Add(-period)
}

// SelectNew возвращает префикс ленты, опубликованный не раньше cutoff.
// Лента считается отсортированной от новых к старым: просмотр
// останавливается на первой записи старше cutoff, и всё, что идёт после неё,
// отбрасывается. Записи без даты старше cutoff не считаются.
func SelectNew(items []models.Item, cutoff time.Time) []models.Item {
	for i, item := range items {
		if !item.PubDate.IsZero() && item.PubDate.Before(cutoff) {
			return items[:i:i]
		}
	}
	return items[:len(items):len(items)]
}
