package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"feed_notifier/internal/metrics"
	"feed_notifier/internal/models"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// DeliveryStore — журнал доставок, который читает HTTP-сервер.
type DeliveryStore interface {
	Ping(ctx context.Context) error
	RecentDeliveries(ctx context.Context, limit int) ([]models.Delivery, error)
}

// Server хранит зависимости HTTP-обработчиков. store равен nil, если журнал
// не настроен.
type Server struct {
	store   DeliveryStore
	metrics *metrics.Metrics
}

// NewServer создаёт новый экземпляр Server.
func NewServer(store DeliveryStore, m *metrics.Metrics) *Server {
	return &Server{store: store, metrics: m}
}

// Routes возвращает маршрутизатор с middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.HealthCheck)
	mux.HandleFunc("GET /api/deliveries/{limit}", s.GetDeliveries)
	mux.Handle("GET /metrics", s.metrics.Handler())

	handler := RequestIDMiddleware(mux)
	return LoggingMiddleware(handler)
}

// HealthCheck отвечает 200 OK; 503, если журнал настроен, но база недоступна.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			http.Error(w, "DB unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Write([]byte("OK"))
}

// GetDeliveries возвращает JSON-массив последних limit доставок.
func (s *Server) GetDeliveries(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "delivery journal is disabled", http.StatusServiceUnavailable)
		return
	}

	limit, err := strconv.Atoi(r.PathValue("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	deliveries, err := s.store.RecentDeliveries(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if deliveries == nil {
		deliveries = []models.Delivery{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(deliveries); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
