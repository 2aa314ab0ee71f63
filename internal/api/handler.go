package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"feedbacktriage/internal/feedback"
	"feedbacktriage/internal/llm"
	"feedbacktriage/internal/ratelimit"
	"feedbacktriage/internal/store"
	"feedbacktriage/internal/triage"
	"feedbacktriage/internal/validate"
)

// Store is the persistence surface the handlers need.
type Store interface {
	SaveFeedback(ctx context.Context, rec store.FeedbackRecord) (string, error)
	ListFeedback(ctx context.Context, filter store.HistoryFilter) ([]store.FeedbackRecord, int, error)
	Stats(ctx context.Context) (store.DashboardStats, error)
}

type Handler struct {
	validator *validate.Validator
	triage    *triage.Service
	store     Store
	limiter   ratelimit.Limiter
	limited   ratelimit.PathPolicy
}

func NewHandler(validator *validate.Validator, svc *triage.Service, st Store, limiter ratelimit.Limiter) *Handler {
	return &Handler{
		validator: validator,
		triage:    svc,
		store:     st,
		limiter:   limiter,
		limited:   ratelimit.DefaultPathPolicy,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/triage", h.handleTriage)
	mux.HandleFunc("/api/health", h.handleHealth)
	mux.HandleFunc("/api/dashboard", h.handleDashboard)
	mux.HandleFunc("/api/feedback/history", h.handleHistory)
	mux.HandleFunc("/api/limits", h.handleLimits)
}

// RateLimit wraps next with per-client admission control on the limited
// paths. Exempt paths pass straight through.
func (h *Handler) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limited(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		decision, err := h.limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			log.Printf("rate limit check failed: %v", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if !decision.Allowed {
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":       "Rate limit exceeded",
				"message":     fmt.Sprintf("Too many requests. Limit: %d requests per %d seconds", decision.Limit, int(decision.Period.Seconds())),
				"status_code": http.StatusTooManyRequests,
				"retry_after": int(decision.RetryAfter.Seconds()),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type triageRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

func (h *Handler) handleTriage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	ip := clientIP(r)

	var req triageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	result := h.validator.ValidateFeedbackText(req.Text)
	if !result.Valid {
		log.Printf("invalid input from %s: %v", ip, result.Errors)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":       "Input validation failed",
			"message":     "The feedback text contains issues that need to be addressed",
			"errors":      result.Errors,
			"warnings":    result.Warnings,
			"status_code": http.StatusBadRequest,
		})
		return
	}
	if len(result.Warnings) > 0 {
		log.Printf("input warnings from %s: %v", ip, result.Warnings)
	}

	var forced *feedback.Category
	if trimmed := strings.TrimSpace(req.Category); trimmed != "" {
		category, err := feedback.ParseCategory(trimmed)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":       "Input validation failed",
				"message":     err.Error(),
				"status_code": http.StatusBadRequest,
			})
			return
		}
		forced = &category
	}

	outcome, err := h.triage.Classify(r.Context(), result.CleanedText, forced)
	if err != nil {
		h.writeClassifyError(w, ip, err)
		return
	}

	record := store.FeedbackRecord{
		Text:           result.CleanedText,
		Category:       outcome.Classification.Category,
		Urgency:        outcome.Classification.Urgency,
		Confidence:     outcome.Classification.Confidence,
		ProcessingTime: time.Since(start).Seconds(),
		Provider:       outcome.Provider,
		ClientID:       ip,
	}
	id, err := h.store.SaveFeedback(r.Context(), record)
	if err != nil {
		log.Printf("save feedback failed: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Printf("feedback analyzed: id=%s category=%q urgency=%d time=%.2fs",
		id, outcome.Classification.Category, outcome.Classification.Urgency, record.ProcessingTime)

	writeJSON(w, http.StatusOK, map[string]any{
		"feedback_text": result.CleanedText,
		"category":      outcome.Classification.Category,
		"urgency_score": int(outcome.Classification.Urgency),
	})
}

func (h *Handler) writeClassifyError(w http.ResponseWriter, ip string, err error) {
	log.Printf("classification failed for %s: %v", ip, err)

	var cfgErr *llm.ConfigError
	var unavailable *llm.UnavailableError
	var invalid *llm.InvalidResponseError
	switch {
	case errors.As(err, &cfgErr):
		http.Error(w, "service configuration error", http.StatusServiceUnavailable)
	case errors.As(err, &unavailable):
		http.Error(w, "LLM service is temporarily unavailable", http.StatusServiceUnavailable)
	case errors.As(err, &invalid):
		http.Error(w, "invalid response from LLM service", http.StatusBadGateway)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "feedback-triage-api",
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		log.Printf("dashboard query failed: %v", err)
		http.Error(w, "failed to fetch dashboard data", http.StatusInternalServerError)
		return
	}

	categories := make(map[string]int, len(stats.Categories))
	for category, count := range stats.Categories {
		categories[string(category)] = count
	}
	urgency := make(map[string]int, len(stats.UrgencyDistribution))
	for level, count := range stats.UrgencyDistribution {
		urgency[strconv.Itoa(int(level))] = count
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_feedback":       stats.Total,
		"categories":           categories,
		"urgency_distribution": urgency,
		"avg_processing_time":  stats.AvgProcessingTime,
		"recent_feedback":      historyPayload(stats.Recent),
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	filter := store.HistoryFilter{Limit: 20}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}
	if v := r.URL.Query().Get("category"); v != "" {
		category, err := feedback.ParseCategory(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Category = category
	}
	if v := r.URL.Query().Get("urgency"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "urgency must be an integer", http.StatusBadRequest)
			return
		}
		urgency, err := feedback.ParseUrgency(n)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Urgency = urgency
	}

	records, total, err := h.store.ListFeedback(r.Context(), filter)
	if err != nil {
		log.Printf("history query failed: %v", err)
		http.Error(w, "failed to fetch feedback history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"feedback": historyPayload(records),
		"total":    total,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
		"has_more": filter.Offset+filter.Limit < total,
	})
}

func (h *Handler) handleLimits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ip := clientIP(r)
	remaining, err := h.limiter.Remaining(r.Context(), ip)
	if err != nil {
		log.Printf("limit lookup failed: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	reset, err := h.limiter.ResetTime(r.Context(), ip)
	if err != nil {
		log.Printf("limit lookup failed: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"client_id":  ip,
		"remaining":  remaining,
		"reset_time": reset.UTC().Format(time.RFC3339),
	})
}

func historyPayload(records []store.FeedbackRecord) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, map[string]any{
			"id":               rec.ID,
			"feedback_text":    rec.Text,
			"category":         rec.Category,
			"urgency_score":    int(rec.Urgency),
			"confidence_score": rec.Confidence,
			"processing_time":  rec.ProcessingTime,
			"llm_provider":     rec.Provider,
			"created_at":       rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// clientIP resolves the caller's address, preferring proxy headers so
// limits apply to the original client rather than the reverse proxy.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	if host == "" {
		return "unknown"
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
