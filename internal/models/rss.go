package models

import "time"

// Item представляет одну публикацию из ленты. PubDate нулевой, если в ленте
// не было ни даты публикации, ни даты обновления.
type Item struct {
	GUID    string
	Title   string
	Link    string
	Content string
	PubDate time.Time
}

// Message — единица доставки, которую опросчик кладёт в очередь.
type Message struct {
	CycleID string `json:"cycle_id"`
	ChatID  string `json:"chat_id"`
	Text    string `json:"text"`
	Title   string `json:"title"`
	Link    string `json:"link"`
}

type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// Delivery фиксирует результат отправки одного сообщения.
type Delivery struct {
	CycleID     string         `json:"cycle_id"`
	ChatID      string         `json:"chat_id"`
	Title       string         `json:"title"`
	Link        string         `json:"link"`
	Status      DeliveryStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	DeliveredAt time.Time      `json:"delivered_at"`
}
