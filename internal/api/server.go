// Package api exposes the service's HTTP surface: the chat webhook, the
// admin allow-list endpoints, job inspection, health and metrics.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-assistant/internal/bot"
	"github.com/dvloznov/finance-assistant/internal/jobs"
	"github.com/dvloznov/finance-assistant/internal/telegram"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Gate      *bot.AuthGate
	Publisher jobs.Publisher
	JobStore  jobs.JobStore
	Registry  *prometheus.Registry

	// WebhookSecret, when set, must match the transport's secret token
	// header on webhook calls.
	WebhookSecret string

	// AdminToken guards the admin endpoints. Empty disables them.
	AdminToken string

	Log zerolog.Logger
}

// NewRouter builds the service router.
func NewRouter(deps Deps) *chi.Mux {
	s := &server{deps: deps}

	r := chi.NewRouter()
	r.Use(Recovery(deps.Log))
	r.Use(RequestID)
	r.Use(RequestLogger(deps.Log))

	r.Post("/webhook", s.handleWebhook)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	if deps.AdminToken != "" {
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/allowlist/{chatID}", s.handleAllow)
			r.Delete("/allowlist/{chatID}", s.handleRevoke)
			r.Get("/jobs", s.handleListJobs)
		})
	}

	return r
}

type server struct {
	deps Deps
}

// handleWebhook acknowledges the transport immediately and queues the
// message for asynchronous handling. Updates without text are accepted
// and dropped so the transport does not redeliver them.
func (s *server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.deps.WebhookSecret != "" {
		got := r.Header.Get("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.deps.WebhookSecret)) != 1 {
			WriteError(w, http.StatusUnauthorized, "Invalid webhook secret")
			return
		}
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid update payload")
		return
	}

	if update.Message == nil || update.Message.Text == "" {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	job := &jobs.MessageJob{
		UpdateID: update.UpdateID,
		ChatID:   update.Message.Chat.ID,
		Text:     update.Message.Text,
	}
	if err := s.deps.Publisher.PublishMessage(r.Context(), job); err != nil {
		s.deps.Log.Error().Err(err).Int64("chat_id", job.ChatID).Msg("Failed to enqueue message")
		WriteError(w, http.StatusServiceUnavailable, "Queue unavailable")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "queued", "job_id": job.JobID})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"allowed": s.deps.Gate.Size(),
	})
}

// requireAdmin enforces the bearer token on admin routes.
func (s *server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("Authorization")
		want := "Bearer " + s.deps.AdminToken
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleAllow(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatIDParam(w, r)
	if !ok {
		return
	}
	s.deps.Gate.Allow(chatID)
	s.deps.Log.Info().Int64("chat_id", chatID).Msg("Chat allowed")
	WriteJSON(w, http.StatusOK, map[string]interface{}{"allowed": s.deps.Gate.Size()})
}

func (s *server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatIDParam(w, r)
	if !ok {
		return
	}
	s.deps.Gate.Revoke(chatID)
	s.deps.Log.Info().Int64("chat_id", chatID).Msg("Chat revoked")
	WriteJSON(w, http.StatusOK, map[string]interface{}{"allowed": s.deps.Gate.Size()})
}

func (s *server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filter := jobs.JobFilter{Limit: 100}
	if raw := r.URL.Query().Get("status"); raw != "" {
		filter.Status = jobs.JobStatus(raw)
	}
	if raw := r.URL.Query().Get("chat_id"); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid chat_id")
			return
		}
		filter.ChatID = chatID
	}

	list, err := s.deps.JobStore.ListJobs(r.Context(), filter)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"jobs": list, "count": len(list)})
}

func (s *server) chatIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "chatID")
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid chat id")
		return 0, false
	}
	return chatID, true
}
