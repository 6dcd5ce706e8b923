package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
	"github.com/finsolve/knowledge-assistant/internal/core/ports"
	"github.com/finsolve/knowledge-assistant/internal/observability/metrics"
)

const serviceName = "api"

// Router is the thin request layer over the query core: it authenticates
// callers, produces the trusted callerRole input, and maps core outcomes to
// HTTP responses.
type Router struct {
	answer ports.AnswerService
	vector ports.VectorStore
	queue  ports.ReindexQueue
	audit  ports.AuditLog
	auth   *Authenticator
	qm     *metrics.QueryMetrics
	log    *slog.Logger

	topK       int
	adminRoles map[string]struct{}
	rateRPS    int
	rateBurst  int
}

type RouterConfig struct {
	TopK           int
	AdminRoles     []string
	RateLimitRPS   int
	RateLimitBurst int
}

func NewRouter(
	answer ports.AnswerService,
	vector ports.VectorStore,
	queue ports.ReindexQueue,
	audit ports.AuditLog,
	auth *Authenticator,
	qm *metrics.QueryMetrics,
	log *slog.Logger,
	cfg RouterConfig,
) *Router {
	admins := make(map[string]struct{}, len(cfg.AdminRoles))
	for _, role := range cfg.AdminRoles {
		if role != "" {
			admins[role] = struct{}{}
		}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		answer:     answer,
		vector:     vector,
		queue:      queue,
		audit:      audit,
		auth:       auth,
		qm:         qm,
		log:        log,
		topK:       cfg.TopK,
		adminRoles: admins,
		rateRPS:    cfg.RateLimitRPS,
		rateBurst:  cfg.RateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	protected := http.NewServeMux()
	protected.HandleFunc("/v1/chat", rt.chat)
	protected.HandleFunc("/v1/admin/reindex", rt.reindex)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/readyz", rt.readyz)
	mux.Handle("/metrics", rt.qm.Handler())
	mux.Handle("/v1/", basicAuthMiddleware(rt.auth, protected))

	var handler http.Handler = mux
	handler = rateLimitMiddleware(rt.rateRPS, rt.rateBurst, handler)
	handler = rt.qm.Middleware(serviceName, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz refuses traffic while the published index is missing or empty:
// serving over an empty index silently answers every question with "don't
// know", which is a misconfiguration, not a valid state.
func (rt *Router) readyz(w http.ResponseWriter, r *http.Request) {
	count, err := rt.vector.Count(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "index unavailable"})
		return
	}
	if count == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "index is empty"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "points": count})
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	callerRole := callerRoleFromContext(r.Context())
	start := time.Now()

	answer, err := rt.answer.Answer(r.Context(), req.Query, callerRole, rt.topK)
	rt.recordOutcome(r.Context(), callerRole, len(req.Query), answer, err, time.Since(start))
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		if status >= 500 {
			rt.qm.RecordProviderError(serviceName)
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) reindex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	callerRole := callerRoleFromContext(r.Context())
	if _, ok := rt.adminRoles[callerRole]; !ok {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "role is not allowed to trigger reindex"})
		return
	}
	if rt.queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "reindex queue is not configured"})
		return
	}

	if err := rt.queue.PublishReindexRequested(r.Context(), "api:"+callerRole); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reindex requested"})
}

func (rt *Router) recordOutcome(
	ctx context.Context,
	callerRole string,
	questionLength int,
	answer *domain.Answer,
	err error,
	duration time.Duration,
) {
	entry := ports.AuditEntry{
		CallerRole:     callerRole,
		QuestionLength: questionLength,
		DurationMillis: duration.Milliseconds(),
	}

	switch {
	case err != nil:
		entry.ErrorKind = errorKind(err)
	case answer.Denied:
		entry.Denied = true
		rt.qm.RecordDenied(serviceName, callerRole)
	default:
		entry.RetrievedCount = len(answer.Sources)
		rt.qm.RecordQuery(serviceName, callerRole, len(answer.Sources), duration)
	}

	if rt.audit == nil {
		return
	}
	// Auditing is best effort: its failure must not fail the query.
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if auditErr := rt.audit.RecordQuery(auditCtx, entry); auditErr != nil {
		rt.log.Error("audit_record_failed", "error", auditErr)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
