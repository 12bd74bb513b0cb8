package handler

import (
	"net/http"

	"github.com/dskvich/trigger-telegram-bot/pkg/api/response"
	"github.com/dskvich/trigger-telegram-bot/pkg/scheduler"
)

type PendingCounter interface {
	Len() int
}

type StatsProvider interface {
	Stats() scheduler.Stats
}

type HealthResponse struct {
	Status  string `json:"status"`
	Bot     string `json:"bot"`
	Pending int    `json:"pending"`
	scheduler.Stats
}

type health struct {
	botName string
	pending PendingCounter
	stats   StatsProvider
	writer  response.JSONResponseWriter
}

func NewHealth(botName string, pending PendingCounter, stats StatsProvider) *health {
	return &health{
		botName: botName,
		pending: pending,
		stats:   stats,
		writer:  response.JSONResponseWriter{},
	}
}

func (h *health) Ping(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		h.writer.WriteSuccessResponse(w, HealthResponse{
			Status:  "active",
			Bot:     h.botName,
			Pending: h.pending.Len(),
			Stats:   h.stats.Stats(),
		})
	default:
		w.Header().Set("Allow", "GET, HEAD")
		h.writer.WriteErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// Routes mounts the health endpoints.
func (h *health) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", h.Ping)
	return mux
}
