package fetcher_test

import (
	"testing"
	"time"

	"feed_notifier/internal/fetcher"
	"feed_notifier/internal/models"

	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// descending строит записи с убывающими датами: base, base-1h, base-2h, ...
func descending(n int) []models.Item {
	items := make([]models.Item, n)
	for i := range items {
		items[i] = models.Item{
			Link:    "https://example.com/" + string(rune('a'+i)),
			PubDate: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return items
}

func TestCutoff(t *testing.T) {
	require.Equal(t, base.Add(-5*time.Minute), fetcher.Cutoff(base, 5*time.Minute))
}

func TestSelectNew_BoundaryInclusive(t *testing.T) {
	items := descending(5)
	for k := 1; k <= len(items); k++ {
		got := fetcher.SelectNew(items, items[k-1].PubDate)
		require.Equal(t, items[:k], got, "cutoff at item %d", k)
	}
}

func TestSelectNew_Empty(t *testing.T) {
	require.Empty(t, fetcher.SelectNew(nil, base))
	require.Empty(t, fetcher.SelectNew([]models.Item{}, base))
}

func TestSelectNew_AllNewer(t *testing.T) {
	items := descending(3)
	require.Equal(t, items, fetcher.SelectNew(items, base.Add(-24*time.Hour)))
}

func TestSelectNew_AllOlder(t *testing.T) {
	items := descending(3)
	require.Empty(t, fetcher.SelectNew(items, base.Add(time.Minute)))
}

func TestSelectNew_StopsAtFirstOldItem(t *testing.T) {
	items := []models.Item{
		{Link: "new", PubDate: base},
		{Link: "old", PubDate: base.Add(-time.Hour)},
		{Link: "out-of-order", PubDate: base.Add(time.Minute)},
	}

	got := fetcher.SelectNew(items, base.Add(-time.Minute))
	require.Len(t, got, 1)
	require.Equal(t, "new", got[0].Link)
}

func TestSelectNew_UndatedItemsAreKept(t *testing.T) {
	items := []models.Item{
		{Link: "dated", PubDate: base},
		{Link: "undated"},
		{Link: "old", PubDate: base.Add(-time.Hour)},
	}

	got := fetcher.SelectNew(items, base.Add(-time.Minute))
	require.Len(t, got, 2)
	require.Equal(t, "undated", got[1].Link)
}

func TestSelectNew_DoesNotAliasAppend(t *testing.T) {
	items := descending(3)
	got := fetcher.SelectNew(items, items[0].PubDate)
	got = append(got, models.Item{Link: "extra"})
	require.Equal(t, "https://example.com/b", items[1].Link)
	require.Len(t, got, 2)
}
