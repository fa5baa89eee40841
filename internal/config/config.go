package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultHeaderLabel    = "Мероприятие"
	DefaultFailureMessage = "Не удалось загрузить ленту"
	DefaultHTTPAddr       = ":8080"
	DefaultQueueName      = "feed_notifier.deliveries"

	minUpdatePeriodMilliseconds = 1000
)

// Config хранит параметры бота, ленты и вспомогательной инфраструктуры.
type Config struct {
	BotToken                 string `json:"bot_token"`
	FeedURL                  string `json:"feed_url"`
	ChatID                   ChatID `json:"chat_id"`
	UpdatePeriodMilliseconds int    `json:"update_period_milliseconds"`

	HeaderLabel         string `json:"header_label"`
	FailureMessage      string `json:"failure_message"`
	FetchTimeoutSeconds int    `json:"fetch_timeout_seconds"`

	HTTPAddr    string `json:"http_addr"`
	DatabaseURL string `json:"database_url"`

	RabbitMQ RabbitMQConfig `json:"rabbitmq"`
	Log      LogConfig      `json:"log"`
}

// ChatID — числовой идентификатор чата или @username канала. В JSON
// допускается и число, и строка.
type ChatID string

func (id *ChatID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ChatID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("chat_id must be a number or a string: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("chat_id must be an integer: %w", err)
	}
	*id = ChatID(n.String())
	return nil
}

func (id ChatID) String() string {
	return string(id)
}

// RabbitMQConfig описывает необязательную очередь доставки. Пустой URL
// означает очередь в памяти процесса.
type RabbitMQConfig struct {
	URL   string `json:"url"`
	Queue string `json:"queue"`
}

type LogConfig struct {
	File  string `json:"file"`
	Debug bool   `json:"debug"`
}

// UpdatePeriod возвращает период опроса, он же окно "новизны" записей.
func (cfg *Config) UpdatePeriod() time.Duration {
	return time.Duration(cfg.UpdatePeriodMilliseconds) * time.Millisecond
}

// FetchTimeout возвращает таймаут загрузки ленты; ноль означает без таймаута.
func (cfg *Config) FetchTimeout() time.Duration {
	return time.Duration(cfg.FetchTimeoutSeconds) * time.Second
}

// Validate проверяет обязательные поля, URL ленты и период опроса.
func (cfg *Config) Validate() error {
	if cfg.BotToken == "" {
		return errors.New("bot token is required")
	}
	if _, err := url.ParseRequestURI(cfg.FeedURL); err != nil {
		return fmt.Errorf("invalid feed URL: %q", cfg.FeedURL)
	}
	if cfg.ChatID == "" {
		return errors.New("chat id is required")
	}
	if cfg.UpdatePeriodMilliseconds < minUpdatePeriodMilliseconds {
		return fmt.Errorf("update period must be ≥ %d milliseconds", minUpdatePeriodMilliseconds)
	}
	if cfg.FetchTimeoutSeconds < 0 {
		return errors.New("fetch timeout must not be negative")
	}
	return nil
}

// LoadConfig подхватывает .env, затем читает JSON-файл по пути path (если
// путь не пустой) и поверх применяет переменные окружения.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	setDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.BotToken, "BOT_TOKEN")
	setString(&cfg.FeedURL, "FEED_URL")
	setString((*string)(&cfg.ChatID), "CHAT_ID")
	setString(&cfg.HeaderLabel, "HEADER_LABEL")
	setString(&cfg.FailureMessage, "FAILURE_MESSAGE")
	if v, ok := os.LookupEnv("HTTP_ADDR"); ok {
		cfg.HTTPAddr = strings.TrimSpace(v)
	}
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&cfg.RabbitMQ.Queue, "RABBITMQ_QUEUE")
	setString(&cfg.Log.File, "LOG_FILE")

	if err := setInt(&cfg.UpdatePeriodMilliseconds, "UPDATE_PERIOD_MILLISECONDS"); err != nil {
		return err
	}
	if err := setInt(&cfg.FetchTimeoutSeconds, "FETCH_TIMEOUT_SECONDS"); err != nil {
		return err
	}
	if v := os.Getenv("DEBUG"); v != "" {
		cfg.Log.Debug = strings.EqualFold(v, "true")
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.HeaderLabel == "" {
		cfg.HeaderLabel = DefaultHeaderLabel
	}
	if cfg.FailureMessage == "" {
		cfg.FailureMessage = DefaultFailureMessage
	}
	if _, ok := os.LookupEnv("HTTP_ADDR"); !ok && cfg.HTTPAddr == "" {
		cfg.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.RabbitMQ.Queue == "" {
		cfg.RabbitMQ.Queue = DefaultQueueName
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
