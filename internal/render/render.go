// Package render превращает запись ленты в сообщение в HTML-подмножестве Telegram.
package render

import (
	"fmt"
	"strings"

	"feed_notifier/internal/models"

	"github.com/microcosm-cc/bluemonday"
)

// policy оставляет только теги, которые понимает Telegram в режиме HTML.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "s", "u")
	p.AllowAttrs("href").OnElements("a")
	p.RequireParseableURLs(true)
	p.AllowURLSchemes("http", "https", "mailto", "tg")
	return p
}

// Sanitize удаляет все теги, кроме b, strong, i, s, u и a[href]. Текст внутри
// удалённых тегов сохраняется, кроме содержимого script, style и подобных.
func Sanitize(html string) string {
	return policy.Sanitize(html)
}

// Renderer собирает тело сообщения с фиксированным заголовком.
type Renderer struct {
	header string
}

func NewRenderer(header string) *Renderer {
	return &Renderer{header: header}
}

// Render не экранирует заголовок и ссылку записи и не проверяет их.
func (r *Renderer) Render(item models.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", r.header)
	fmt.Fprintf(&b, "<a href='%s'>%s</a>\n\n", item.Link, item.Title)
	b.WriteString(Sanitize(strings.TrimSpace(item.Content)))
	return b.String()
}
